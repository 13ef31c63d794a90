// SPDX-License-Identifier: MIT
package transport

import "errors"

var ErrClosed = errors.New("transport: closed")

// Transport defines a generic interface for sending processed data or events.
// Send must not block the render loop; implementations drop what they cannot
// deliver.
type Transport interface {
	Send(data any) error
	Close() error
}

// FrameEvent summarises one rendered frame for preview clients.
type FrameEvent struct {
	Type          string    `json:"type"` // Always "frame"
	Index         int       `json:"index"`
	TimeSeconds   float64   `json:"time"`
	PeakHz        float64   `json:"peak_hz"`
	PeakMagnitude float64   `json:"peak_magnitude"`
	Gated         bool      `json:"gated,omitempty"`
	Bands         []float64 `json:"bands,omitempty"` // RMS level per band, in analysis.DefaultBands order
}

// NewFrameEvent fills in the event type.
func NewFrameEvent(index int, timeSeconds float64) FrameEvent {
	return FrameEvent{Type: "frame", Index: index, TimeSeconds: timeSeconds}
}

// Multi sends every event to each transport in turn. Close closes them all
// and returns the first error.
type Multi []Transport

func (m Multi) Send(data any) error {
	var first error
	for _, t := range m {
		if err := t.Send(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, t := range m {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Transport = Multi(nil)
