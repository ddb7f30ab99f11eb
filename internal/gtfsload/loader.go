package gtfsload

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/OneBusAway/go-gtfs"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"

	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/network"
)

// Feeds above this size are rejected rather than buffered.
const maxStaticSize = 200 * 1024 * 1024

// Loader fetches and parses GTFS feeds into a network.
type Loader struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewLoader creates a loader for the configured feeds.
func NewLoader(config Config) *Loader {
	perSecond := config.DownloadsPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Loader{
		config: config,
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  slog.Default().With(slog.String("component", "gtfs_loader")),
	}
}

// Load fetches every configured feed and merges them into one network.
// Feed checksums are recorded on the network so scenarios can later be
// verified against the baseline they were authored for.
func (l *Loader) Load(ctx context.Context) (*network.Network, error) {
	n := network.New()
	for _, feed := range l.config.Feeds {
		if err := l.loadFeed(ctx, feed, n); err != nil {
			return nil, fmt.Errorf("loading feed %s: %w", feed.ID, err)
		}
	}
	n.RefreshServiceFlags()
	logging.LogOperation(l.logger, "network_loaded",
		slog.Int("feeds", len(l.config.Feeds)),
		slog.Int("stops", len(n.Stops)),
		slog.Int("patterns", len(n.Patterns)))
	return n, nil
}

func (l *Loader) loadFeed(ctx context.Context, feed FeedConfig, n *network.Network) error {
	b, err := l.rawFeedData(ctx, feed)
	if err != nil {
		return err
	}
	checksum := crc32.ChecksumIEEE(b)

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("parsing GTFS data: %w", err)
	}

	buildNetwork(n, staticData, feed.ID, checksum, l.logger)
	logging.LogOperation(l.logger, "feed_loaded",
		slog.String("feed", feed.ID),
		slog.Int("routes", len(staticData.Routes)),
		slog.Int("trips", len(staticData.Trips)))
	return nil
}

func (l *Loader) rawFeedData(ctx context.Context, feed FeedConfig) ([]byte, error) {
	var b []byte
	var err error
	if feed.IsLocalFile() {
		b, err = os.ReadFile(feed.Source)
		if err != nil {
			return nil, fmt.Errorf("reading local GTFS file: %w", err)
		}
	} else {
		b, err = l.downloadFeedData(ctx, feed)
		if err != nil {
			return nil, err
		}
	}
	return maybeGunzip(b)
}

func (l *Loader) downloadFeedData(ctx context.Context, feed FeedConfig) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating GTFS request: %w", err)
	}
	if feed.AuthHeaderKey != "" && feed.AuthHeaderValue != "" {
		req.Header.Set(feed.AuthHeaderKey, feed.AuthHeaderValue)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, l.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download GTFS data: received HTTP status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading GTFS data: %w", err)
	}
	if int64(len(b)) > maxStaticSize {
		return nil, fmt.Errorf("static GTFS response exceeds size limit of %d bytes", maxStaticSize)
	}
	return b, nil
}

// maybeGunzip transparently decompresses gzip-wrapped feeds, which some
// agencies serve instead of plain zip archives.
func maybeGunzip(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != 0x1f || b[1] != 0x8b {
		return b, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("opening gzip feed: %w", err)
	}
	defer func() { _ = zr.Close() }()
	out, err := io.ReadAll(io.LimitReader(zr, maxStaticSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing gzip feed: %w", err)
	}
	if int64(len(out)) > maxStaticSize {
		return nil, fmt.Errorf("decompressed GTFS feed exceeds size limit of %d bytes", maxStaticSize)
	}
	return out, nil
}
