package sensors

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

func pcm(samples ...int16) []byte {
	var b bytes.Buffer
	for _, s := range samples {
		binary.Write(&b, binary.LittleEndian, s)
	}
	return b.Bytes()
}

func TestStreamCaptureDecodes(t *testing.T) {
	c := NewStreamCapture(bytes.NewReader(pcm(1, -2, 300, -32768, 32767, 7)), 100*time.Millisecond)
	defer c.Close()

	buf := make([]int16, 4)
	n, err := c.ReadBlock(buf)
	if err != nil || n != 4 {
		t.Fatalf("ReadBlock = %d, %v", n, err)
	}
	want := []int16{1, -2, 300, -32768}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}

	// remaining two samples, then the stream ends
	n, err = c.ReadBlock(buf)
	if n != 2 || buf[0] != 32767 || buf[1] != 7 {
		t.Fatalf("second ReadBlock = %d %v", n, buf[:n])
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want EOF", err)
	}
}

func TestStreamCaptureOddByteSplit(t *testing.T) {
	pr, pw := io.Pipe()
	c := NewStreamCapture(pr, time.Second)
	defer c.Close()

	data := pcm(0x1234, -5)
	go func() {
		pw.Write(data[:1])
		pw.Write(data[1:3])
		pw.Write(data[3:])
	}()

	buf := make([]int16, 2)
	n, err := c.ReadBlock(buf)
	if err != nil || n != 2 {
		t.Fatalf("ReadBlock = %d, %v", n, err)
	}
	if buf[0] != 0x1234 || buf[1] != -5 {
		t.Errorf("buf = %v", buf)
	}
	pw.Close()
}

func TestStreamCaptureTimeoutReturnsPartial(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewStreamCapture(pr, 200*time.Millisecond)
	defer c.Close()

	go pw.Write(pcm(9, 9, 9))

	buf := make([]int16, 512)
	start := time.Now()
	n, err := c.ReadBlock(buf)
	if err != nil {
		t.Fatalf("timeout reported as error: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if time.Since(start) > time.Second {
		t.Errorf("ReadBlock blocked for %v", time.Since(start))
	}
}

func TestToneCaptureFillsBlock(t *testing.T) {
	c := NewToneCapture()
	buf := make([]int16, 512)
	n, err := c.ReadBlock(buf)
	if err != nil || n != 512 {
		t.Fatalf("ReadBlock = %d, %v", n, err)
	}
	if buf[0] != int16(c.DC) {
		t.Errorf("first sample = %d, want DC %v", buf[0], c.DC)
	}
}
