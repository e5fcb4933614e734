package buffer

import (
	"io"
	"sync"
)

// Block is a fixed-capacity thread-safe byte buffer. Write blocks while the
// buffer is full, Read blocks while it is empty. The capacity bound is the
// backpressure mechanism between a producer and a slower consumer.
type Block struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte // ring storage
	r, w   int    // read/write offsets
	n      int    // unread byte count
	closed bool
	err    error
}

// NewBlock creates a Block with the given capacity in bytes.
func NewBlock(capacity int) *Block {
	if capacity <= 0 {
		panic("buffer: block capacity must be positive")
	}
	b := &Block{data: make([]byte, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write copies p into the buffer, blocking while full. It returns once all
// of p has been accepted or the buffer is closed.
func (b *Block) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	written := 0
	for written < len(p) {
		for b.n == len(b.data) {
			if b.closed {
				return written, b.writeErr()
			}
			b.cond.Wait()
		}
		if b.closed {
			return written, b.writeErr()
		}
		chunk := min(len(p)-written, len(b.data)-b.n)
		for i := 0; i < chunk; i++ {
			b.data[b.w] = p[written+i]
			b.w = (b.w + 1) % len(b.data)
		}
		b.n += chunk
		written += chunk
		b.cond.Broadcast()
	}
	return written, nil
}

// Read copies buffered data into p, blocking while empty. After CloseWrite
// it drains remaining data and then returns io.EOF.
func (b *Block) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.n == 0 {
		if b.err != nil {
			return 0, b.err
		}
		if b.closed {
			return 0, io.EOF
		}
		b.cond.Wait()
	}
	chunk := min(len(p), b.n)
	for i := 0; i < chunk; i++ {
		p[i] = b.data[b.r]
		b.r = (b.r + 1) % len(b.data)
	}
	b.n -= chunk
	b.cond.Broadcast()
	return chunk, nil
}

// Len returns the number of unread bytes.
func (b *Block) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// CloseWrite closes the write side; buffered data remains readable.
func (b *Block) CloseWrite() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}

// CloseWithError closes both ends; pending and future reads return err.
func (b *Block) CloseWithError(err error) error {
	if err == nil {
		err = ErrClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.err = err
	b.n = 0
	b.cond.Broadcast()
	return nil
}

func (b *Block) writeErr() error {
	if b.err != nil {
		return b.err
	}
	return ErrClosed
}
