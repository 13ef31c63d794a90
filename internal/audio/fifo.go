// SPDX-License-Identifier: MIT
package audio

// fifo is a growable queue of interleaved float64 frames. Reads never
// consume more than Discard says, so overlapping windows can be peeked
// repeatedly.
type fifo struct {
	buf      []float64
	head     int // Index of the first unread value in buf
	channels int
}

func newFIFO(channels, capacityFrames int) *fifo {
	return &fifo{
		buf:      make([]float64, 0, channels*capacityFrames),
		channels: channels,
	}
}

// Len returns the number of buffered frames.
func (q *fifo) Len() int {
	return (len(q.buf) - q.head) / q.channels
}

// Write appends interleaved samples. A trailing partial frame is dropped.
func (q *fifo) Write(samples []float64) {
	samples = samples[:len(samples)-len(samples)%q.channels]
	if len(samples) == 0 {
		return
	}

	// Slide unread data to the front before growing.
	if q.head > 0 && len(q.buf)+len(samples) > cap(q.buf) {
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	q.buf = append(q.buf, samples...)
}

// Peek deinterleaves the first n frames into dst, one slice per channel,
// and zero-fills the rest of each slice. n is clamped to Len().
func (q *fifo) Peek(dst [][]float64, n int) int {
	n = min(n, q.Len())
	data := q.buf[q.head:]

	for c, ch := range dst {
		m := min(n, len(ch))
		for i := range m {
			ch[i] = data[i*q.channels+c]
		}
		clear(ch[m:])
	}
	return n
}

// Discard drops the first n frames.
func (q *fifo) Discard(n int) {
	n = min(n, q.Len())
	q.head += n * q.channels
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}
}
