// Package gtfsload builds the in-memory transit network from static GTFS
// feeds, fetched over HTTP or read from local zip files.
package gtfsload

import (
	"net/url"

	"shunt.transitlab.org/internal/appconf"
)

// FeedConfig identifies one GTFS feed. Source is either an HTTP(S) URL or a
// local file path.
type FeedConfig struct {
	ID              string
	Source          string
	AuthHeaderKey   string
	AuthHeaderValue string
}

// IsLocalFile reports whether the feed source is a local path rather than a
// URL to download.
func (f FeedConfig) IsLocalFile() bool {
	u, err := url.Parse(f.Source)
	if err != nil {
		return true
	}
	return u.Scheme != "http" && u.Scheme != "https"
}

// Config holds loader configuration for all feeds.
type Config struct {
	Feeds   []FeedConfig
	Env     appconf.Environment
	Verbose bool

	// DownloadsPerSecond caps the rate of feed downloads, protecting agency
	// servers when many feeds share a host. Zero means one per second.
	DownloadsPerSecond float64
}

// FromConfigData converts the config file representation into loader
// configuration.
func FromConfigData(data appconf.GTFSConfigData) Config {
	config := Config{Env: data.Env, Verbose: data.Verbose}
	for _, feed := range data.Feeds {
		config.Feeds = append(config.Feeds, FeedConfig{
			ID:              feed.ID,
			Source:          feed.URL,
			AuthHeaderKey:   feed.AuthHeaderKey,
			AuthHeaderValue: feed.AuthHeaderValue,
		})
	}
	return config
}
