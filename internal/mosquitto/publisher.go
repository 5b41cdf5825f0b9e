package mosquitto

import (
	"encoding/json"
	"fmt"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/position"
)

// Publisher sends raw payloads to a topic. *Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Coords is the JSON form of a beacon position.
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionPublisher emits one {"beacon-N": {"x": .., "y": ..}} message per
// known beacon on the position topic.
type PositionPublisher struct {
	pub   Publisher
	topic string
}

func NewPositionPublisher(pub Publisher, topic string) *PositionPublisher {
	return &PositionPublisher{pub: pub, topic: topic}
}

// EncodeBeacon renders the position message for a single beacon.
func EncodeBeacon(label beacon.Label, p geometry.Point) ([]byte, error) {
	return json.Marshal(map[string]Coords{
		label.Topic(): {X: p.X, Y: p.Y},
	})
}

// PublishBeacon sends the position of one beacon.
func (pp *PositionPublisher) PublishBeacon(label beacon.Label, p geometry.Point) error {
	payload, err := EncodeBeacon(label, p)
	if err != nil {
		return err
	}
	if err := pp.pub.Publish(pp.topic, payload); err != nil {
		return fmt.Errorf("publish beacon %s: %w", label, err)
	}
	return nil
}

// Publish sends every known beacon of res. It stops at the first failure.
func (pp *PositionPublisher) Publish(res position.Resolution) error {
	for _, l := range beacon.Labels {
		if !res.Known(l) {
			continue
		}
		if err := pp.PublishBeacon(l, res.Positions[l]); err != nil {
			return err
		}
	}
	return nil
}
