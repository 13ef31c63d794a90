// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"wvrender/internal/log"
	"wvrender/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Frame Index       | uint32         | 4            | Video frame number      |
| Timestamp         | int64          | 8            | Presentation time in ns |
| Peak Frequency    | float32        | 4            | Loudest bin in Hz       |
| Peak Magnitude    | float32        | 4            |                         |
| Band Count        | uint16         | 2            | Number of floats (N)    |
| Band Levels       | []float32      | N * 4        | RMS level per band      |
+-----------------------------------------------------------------------------+
*/

const headerSize = 4 + 4 + 8 + 4 + 4 + 2

var ErrUnsupportedEvent = errors.New("udp: unsupported event type")

// sender is the part of UDPSender the publisher needs.
type sender interface {
	Send(data []byte) error
	Close() error
}

// UDPPublisher packs frame events into fixed binary packets for lightweight
// preview clients that do not speak WebSocket.
type UDPPublisher struct {
	sender       sender
	sequenceNum  uint32
	packetBuffer *bytes.Buffer
	f32Buffer    []float32
}

// NewUDPPublisher sends packets to targetAddress ("host:port").
func NewUDPPublisher(targetAddress string) (*UDPPublisher, error) {
	s, err := NewUDPSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return newPublisher(s), nil
}

func newPublisher(s sender) *UDPPublisher {
	return &UDPPublisher{
		sender:       s,
		packetBuffer: new(bytes.Buffer),
	}
}

// Send encodes a transport.FrameEvent and transmits it. Other payloads are
// rejected.
func (p *UDPPublisher) Send(data any) error {
	ev, ok := data.(transport.FrameEvent)
	if !ok {
		if evp, isPtr := data.(*transport.FrameEvent); isPtr && evp != nil {
			ev = *evp
		} else {
			return fmt.Errorf("%w: %T", ErrUnsupportedEvent, data)
		}
	}

	p.sequenceNum++
	packet, err := p.encode(ev)
	if err != nil {
		return err
	}
	if err := p.sender.Send(packet); err != nil {
		return err
	}
	log.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	return nil
}

func (p *UDPPublisher) encode(ev transport.FrameEvent) ([]byte, error) {
	p.f32Buffer = p.f32Buffer[:0]
	for _, v := range ev.Bands {
		p.f32Buffer = append(p.f32Buffer, float32(v))
	}

	p.packetBuffer.Reset()
	p.packetBuffer.Grow(headerSize + 4*len(p.f32Buffer))

	fields := []any{
		p.sequenceNum,
		uint32(ev.Index),
		int64(math.Round(ev.TimeSeconds * 1e9)),
		float32(ev.PeakHz),
		float32(ev.PeakMagnitude),
		uint16(len(p.f32Buffer)),
		p.f32Buffer,
	}
	for _, f := range fields {
		if err := binary.Write(p.packetBuffer, binary.BigEndian, f); err != nil {
			return nil, fmt.Errorf("packing preview packet: %w", err)
		}
	}
	return p.packetBuffer.Bytes(), nil
}

// Close closes the underlying sender.
func (p *UDPPublisher) Close() error {
	return p.sender.Close()
}

var _ transport.Transport = (*UDPPublisher)(nil)
