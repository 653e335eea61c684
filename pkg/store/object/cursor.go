package object

import (
	"errors"
	"io"
)

// Cursor is the write position of one ranged fetch into a caller-supplied buffer.
//
// A backend creates a fresh Cursor for every request attempt and copies each
// body chunk at the cursor position, advancing it by the chunk length. The
// cursor never grows the buffer: bytes beyond its end are rejected with
// ErrCursorOverflow.
//
// A Cursor is owned by exactly one request and is not safe for concurrent use.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Write implements io.Writer.
func (c *Cursor) Write(p []byte) (int, error) {
	n := copy(c.buf[c.pos:], p)
	c.pos += n
	if n < len(p) {
		return n, ErrCursorOverflow
	}
	return n, nil
}

// Fill copies r into the buffer until r is drained or the buffer is full.
//
// Returns the number of bytes copied. A body longer than the remaining
// buffer is an ErrCursorOverflow; a shorter one is not an error (see Full).
func (c *Cursor) Fill(r io.Reader) (int64, error) {
	var total int64
	for c.pos < len(c.buf) {
		n, err := r.Read(c.buf[c.pos:])
		c.pos += n
		total += int64(n)
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}

	// Buffer is full: anything left in r is an overflow
	var probe [1]byte
	n, err := r.Read(probe[:])
	if n > 0 {
		return total, ErrCursorOverflow
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return total, err
	}
	return total, nil
}

// Written returns the number of bytes delivered so far.
func (c *Cursor) Written() int {
	return c.pos
}

// Remaining returns the number of bytes still expected.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Full reports whether every expected byte has been delivered.
func (c *Cursor) Full() bool {
	return c.pos == len(c.buf)
}

// ZeroFill clears the undelivered tail of the buffer and moves the cursor to
// its end. Used when the object ends before the requested range does.
func (c *Cursor) ZeroFill() {
	clear(c.buf[c.pos:])
	c.pos = len(c.buf)
}
