// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package audio

import (
	"fmt"
)

// Capture delivers PCM blocks from the microphone.
type Capture interface {
	// ReadBlock fills buf with up to len(buf) samples, waiting a bounded time.
	// A timeout is not an error: it returns the samples that arrived (maybe 0).
	ReadBlock(buf []int16) (int, error)
}

// Level is one published loudness reading.
type Level struct {
	Power    float64 `json:"power"`
	Decibels float64 `json:"db"`
}

// Sampler pulls blocks from a Capture and accumulates their power until the
// publisher drains the average. Not safe for concurrent use; callers hold
// the audio lock.
type Sampler struct {
	src Capture
	est LevelEstimator
	buf []int16

	totalPower float64
	count      int
	last       Level
}

// NewSampler allocates the block buffer once.
func NewSampler(src Capture, blockSize int) *Sampler {
	return &Sampler{
		src: src,
		buf: make([]int16, blockSize),
	}
}

// CaptureBlock reads one block. The returned slice aliases the sampler's
// buffer and is only valid until the next call.
func (s *Sampler) CaptureBlock() ([]int16, error) {
	n, err := s.src.ReadBlock(s.buf)
	if n > len(s.buf) {
		n = len(s.buf)
	}
	return s.buf[:n], err
}

// Tick captures one block and adds its power to the accumulator. A short
// block is processed over the samples that arrived; an empty one is skipped.
func (s *Sampler) Tick() error {
	block, err := s.CaptureBlock()
	if len(block) == 0 {
		if err != nil {
			return fmt.Errorf("audio: capture: %w", err)
		}
		return nil
	}

	s.Accumulate(block)
	return err
}

// Accumulate adds the power of an already captured block. The node's audio
// task captures outside the audio lock and only holds it for this call.
func (s *Sampler) Accumulate(block []int16) {
	if len(block) == 0 {
		return
	}
	s.totalPower += s.est.ProcessBlock(block)
	s.count++
}

// DrainAverage returns the mean power of the blocks seen since the previous
// drain and its decibel value, then resets the accumulator. With no new
// blocks the previous reading is returned unchanged.
func (s *Sampler) DrainAverage() Level {
	if s.count > 0 {
		p := s.totalPower / float64(s.count)
		s.last = Level{Power: p, Decibels: ToDecibels(p)}
		s.totalPower = 0
		s.count = 0
	}
	return s.last
}

// Pending reports the accumulator without draining it.
func (s *Sampler) Pending() (totalPower float64, count int) {
	return s.totalPower, s.count
}

// Last returns the most recently drained reading.
func (s *Sampler) Last() Level {
	return s.last
}
