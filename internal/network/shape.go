package network

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// DecodeShape decodes an encoded polyline alignment into [lat, lon] pairs.
func DecodeShape(shape []byte) ([][]float64, error) {
	if len(shape) == 0 {
		return nil, nil
	}
	coords, _, err := polyline.DecodeCoords(shape)
	if err != nil {
		return nil, fmt.Errorf("decoding pattern shape: %w", err)
	}
	return coords, nil
}

// EncodeShape encodes [lat, lon] pairs as a polyline alignment.
func EncodeShape(coords [][]float64) []byte {
	if len(coords) == 0 {
		return nil
	}
	return polyline.EncodeCoords(coords)
}

// StraightLineShape builds a synthetic alignment connecting the given stops
// in sequence with straight segments. Used for patterns created from scratch,
// where no surveyed geometry exists.
func StraightLineShape(n *Network, stops []int) []byte {
	coords := make([][]float64, 0, len(stops))
	for _, s := range stops {
		if s < 0 || s >= len(n.Stops) {
			continue
		}
		coords = append(coords, []float64{n.Stops[s].Lat, n.Stops[s].Lon})
	}
	if len(coords) < 2 {
		return nil
	}
	return EncodeShape(coords)
}
