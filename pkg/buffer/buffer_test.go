package buffer

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestBuffer_WriteTake(t *testing.T) {
	b := New()
	b.Write([]byte("hello "))
	b.Write([]byte("world"))

	if b.Len() != 11 {
		t.Errorf("Len = %d; want 11", b.Len())
	}
	got := b.Take()
	if string(got) != "hello world" {
		t.Errorf("Take = %q; want %q", got, "hello world")
	}
	if b.Len() != 0 {
		t.Errorf("Len after Take = %d; want 0", b.Len())
	}
}

func TestBuffer_ReadAfterCloseWrite(t *testing.T) {
	b := New()
	b.Write([]byte("abc"))
	b.CloseWrite()

	data, err := io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("ReadAll = %q; want %q", data, "abc")
	}
	if _, err := b.Write([]byte("x")); err != ErrClosed {
		t.Errorf("Write after close = %v; want ErrClosed", err)
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := New()
	b.Write([]byte("abc"))
	b.CloseWrite()
	b.Reset()
	if _, err := b.Write([]byte("xyz")); err != nil {
		t.Fatalf("Write after Reset error: %v", err)
	}
	if string(b.Bytes()) != "xyz" {
		t.Errorf("Bytes = %q; want %q", b.Bytes(), "xyz")
	}
}

func TestBlock_Roundtrip(t *testing.T) {
	b := NewBlock(8)
	payload := bytes.Repeat([]byte{1, 2, 3, 4, 5}, 100)

	go func() {
		b.Write(payload)
		b.CloseWrite()
	}()

	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read %d bytes, mismatch with %d written", len(got), len(payload))
	}
}

func TestBlock_WriteBlocksWhenFull(t *testing.T) {
	b := NewBlock(4)
	b.Write([]byte{1, 2, 3, 4})

	done := make(chan struct{})
	go func() {
		b.Write([]byte{5, 6})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Write returned on a full buffer without a reader")
	case <-time.After(20 * time.Millisecond):
	}

	buf := make([]byte, 4)
	b.Read(buf)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Write did not unblock after Read drained the buffer")
	}
}

func TestBlock_CloseWithError(t *testing.T) {
	b := NewBlock(4)
	wantErr := io.ErrUnexpectedEOF
	b.Write([]byte{1, 2})
	b.CloseWithError(wantErr)

	if _, err := b.Read(make([]byte, 4)); err != wantErr {
		t.Errorf("Read = %v; want %v", err, wantErr)
	}
	if _, err := b.Write([]byte{3}); err != wantErr {
		t.Errorf("Write = %v; want %v", err, wantErr)
	}
}
