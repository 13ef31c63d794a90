// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"wvrender/internal/log"
)

// writeTimeout bounds a single datagram write so a wedged socket cannot
// stall the render loop.
const writeTimeout = 50 * time.Millisecond

var ErrSenderClosed = errors.New("udp: sender closed")

// UDPSender writes datagrams to one connected peer.
type UDPSender struct {
	conn    *net.UDPConn
	mu      sync.Mutex
	closed  bool
	packets int
	bytes   int
}

// NewUDPSender connects to targetAddress ("host:port").
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("resolving preview target %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing preview target %q: %w", targetAddress, err)
	}

	log.WithFields(log.Fields{
		"component": "udp",
		"local":     conn.LocalAddr().String(),
		"remote":    conn.RemoteAddr().String(),
	}).Info("Sending preview datagrams")

	return &UDPSender{conn: conn}, nil
}

// Send writes data as one datagram.
func (s *UDPSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSenderClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	n, err := s.conn.Write(data)
	if err != nil {
		return fmt.Errorf("sending datagram: %w", err)
	}
	s.packets++
	s.bytes += n
	return nil
}

// Close releases the socket. Further sends fail with ErrSenderClosed.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	log.Debugf("UDP Sender: closing after %d packets (%d bytes)", s.packets, s.bytes)
	return s.conn.Close()
}
