// Package buffer provides thread-safe byte buffers for streaming audio.
//
// Two buffer types are offered:
//
//   - Buffer: growable, for accumulating data of unknown total size, such
//     as a microphone capture in progress.
//
//   - Block: fixed capacity, blocking on both ends. A full Block suspends
//     the writer until the reader drains it, which makes it a natural flow
//     control point between a fast producer and a paced consumer.
//
// Both support CloseWrite (reads continue until drained, then io.EOF) and
// CloseWithError (immediate teardown on both ends).
package buffer

import (
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by Write after the write side has been closed.
var ErrClosed = errors.New("buffer: closed")

// Buffer is a growable thread-safe byte buffer. Reads block until data is
// available or the write side is closed.
type Buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	closed bool
	err    error
}

// New creates an empty growable Buffer.
func New() *Buffer {
	b := &Buffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	if b.closed {
		return 0, ErrClosed
	}
	b.data = append(b.data, p...)
	b.cond.Broadcast()
	return len(p), nil
}

// Read copies buffered data into p, blocking while the buffer is empty and
// still open for writing.
func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.data) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		if b.closed {
			return 0, io.EOF
		}
		b.cond.Wait()
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Bytes returns a copy of the unread bytes.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Take returns the buffered bytes and resets the buffer to empty. The
// returned slice is owned by the caller.
func (b *Buffer) Take() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.data
	b.data = nil
	return out
}

// Reset discards all buffered data and reopens the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	b.closed = false
	b.err = nil
}

// CloseWrite closes the write side. Pending data remains readable; once
// drained, Read returns io.EOF.
func (b *Buffer) CloseWrite() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}

// CloseWithError tears the buffer down on both ends. Subsequent reads and
// writes return err.
func (b *Buffer) CloseWithError(err error) error {
	if err == nil {
		err = ErrClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.err = err
	b.data = nil
	b.cond.Broadcast()
	return nil
}
