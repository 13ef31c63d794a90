// SPDX-License-Identifier: MIT
package transport

import (
	"wvrender/internal/log"
)

// LoggingTransport implements the Transport interface by logging each event
// at debug level.
type LoggingTransport struct {
	sent int
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	lt.sent++
	if !log.Enabled(log.LevelDebug) {
		return nil
	}

	if ev, ok := data.(FrameEvent); ok {
		log.WithFields(log.Fields{
			"component": "preview",
			"frame":     ev.Index,
			"time":      ev.TimeSeconds,
			"peak_hz":   ev.PeakHz,
			"peak":      ev.PeakMagnitude,
			"gated":     ev.Gated,
		}).Debug("Frame rendered")
		return nil
	}
	log.Debugf("Transport: %T %+v", data, data)
	return nil
}

// Sent returns how many events were passed to Send.
func (lt *LoggingTransport) Sent() int { return lt.sent }

// Close logs the total event count.
func (lt *LoggingTransport) Close() error {
	log.Debugf("Transport: LoggingTransport closed after %d events", lt.sent)
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
