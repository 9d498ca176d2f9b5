// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StreamCapture decodes a raw signed 16-bit little-endian mono PCM stream
// (the PDM microphone after the I2S decimator, exposed as a device node or a
// FIFO fed by the capture driver). A background goroutine keeps draining the
// stream so the producer side never stalls on the sampling task.
type StreamCapture struct {
	r       io.Reader
	timeout time.Duration

	chunks  chan []int16
	pending []int16
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// OpenMicrophone opens the PCM source at path.
func OpenMicrophone(path string, timeout time.Duration) (*StreamCapture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mic: open %s: %w", path, err)
	}
	return NewStreamCapture(f, timeout), nil
}

// NewStreamCapture starts decoding r. ReadBlock waits at most timeout.
func NewStreamCapture(r io.Reader, timeout time.Duration) *StreamCapture {
	c := &StreamCapture{
		r:       r,
		timeout: timeout,
		chunks:  make(chan []int16, 64),
		done:    make(chan struct{}),
	}
	go c.pump()
	return c
}

func (c *StreamCapture) pump() {
	defer close(c.chunks)

	buf := make([]byte, 2048)
	var carry []byte
	for {
		n, err := c.r.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			samples := make([]int16, len(data)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
			}
			carry = append([]byte(nil), data[len(samples)*2:]...)

			if len(samples) > 0 {
				select {
				case c.chunks <- samples:
				case <-c.done:
					return
				}
			}
		}
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
	}
}

// ReadBlock fills buf, returning early with what arrived when the timeout
// expires. Once the stream has ended it returns the stream's error.
func (c *StreamCapture) ReadBlock(buf []int16) (int, error) {
	n := copy(buf, c.pending)
	c.pending = c.pending[n:]
	if n == len(buf) {
		return n, nil
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for n < len(buf) {
		select {
		case chunk, ok := <-c.chunks:
			if !ok {
				return n, c.streamErr()
			}
			k := copy(buf[n:], chunk)
			n += k
			c.pending = chunk[k:]
		case <-timer.C:
			return n, nil
		}
	}
	return n, nil
}

func (c *StreamCapture) streamErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return io.EOF
	}
	return c.err
}

// Close stops the pump and closes the source when it is closable.
func (c *StreamCapture) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	if closer, ok := c.r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
