package pushbus

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"

	"github.com/airwatch/aqcore/pkg/geo"
)

// h3Resolution is the cell resolution used to key location rooms:
// res 7 cells are ~1.2km wide, close to the 2-decimal-degree
// quantization the upstream mock layer already uses.
const h3Resolution = 7

// LocationRoom returns the Push Bus room name for a geographic point,
// keyed by its H3 cell at a fixed resolution so nearby subscribers
// share a room regardless of small coordinate jitter. Falls back to
// QuantizedLocationRoom if the H3 conversion errors (only possible
// with an out-of-range resolution, never the case here).
func LocationRoom(lat, lng float64) string {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), h3Resolution)
	if err != nil {
		return QuantizedLocationRoom(lat, lng)
	}
	return fmt.Sprintf("loc:%s", cell.String())
}

// QuantizedLocationRoom is the spec-literal room name
// "loc:<quantizedLat>,<quantizedLng>" (spec.md §4.9). It is the room
// format the pipeline Broadcaster publishes air-quality-update events
// to, and LocationRoom's fallback.
func QuantizedLocationRoom(lat, lng float64) string {
	return fmt.Sprintf("loc:%.2f,%.2f", geo.Quantize(lat), geo.Quantize(lng))
}

// UserRoom returns the per-subscriber alert room name (spec.md §4.8).
func UserRoom(subscriberID string) string {
	return "user:" + subscriberID
}
