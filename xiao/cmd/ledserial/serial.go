package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// idleWait is how long Read sleeps when nothing is buffered.
const idleWait = time.Millisecond

// SerialReadWriter is a machine.Serialer usable as an io.ReadWriter.
type SerialReadWriter interface {
	io.ReadWriter
	ReadByte() (byte, error)
	WriteByte(byte) error
	// Buffered returns the number of bytes waiting to be read.
	Buffered() int
}

type serialIO struct {
	machine.Serialer
}

// WrapSerial wraps a machine.Serialer in an io.ReadWriter. Reads never block
// for long: with nothing buffered they return 0 bytes after a short sleep,
// which io.ReadFull retries.
func WrapSerial(serial machine.Serialer) SerialReadWriter {
	return serialIO{Serialer: serial}
}

func (s serialIO) Read(b []byte) (int, error) {
	n := min(s.Buffered(), len(b))
	if n == 0 {
		time.Sleep(idleWait)
		return 0, nil
	}

	for i := range n {
		c, err := s.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}

	runtime.Gosched()
	return n, nil
}

func (s serialIO) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := s.WriteByte(c); err != nil {
			return i, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
