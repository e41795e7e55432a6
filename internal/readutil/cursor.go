package readutil

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned by Cursor methods when fewer bytes remain
// than requested
var ErrShortBuffer = errors.New("not enough bytes remaining")

// Cursor is a small offset-tracking reader over an immutable byte slice.
// It never mutates or copies the underlying slice; it only tracks how
// far into it we've read. Used by the index decoder instead of
// threading an offset int through every call.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a Cursor reading from b, starting at offset 0
func NewCursor(b []byte) *Cursor {
	return &Cursor{data: b}
}

// Pos returns the current offset into the underlying slice
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of bytes left to read
func (c *Cursor) Len() int {
	return len(c.data) - c.pos
}

// ReadN returns the next n bytes and advances the cursor.
// The returned slice aliases the Cursor's underlying data.
func (c *Cursor) ReadN(n int) ([]byte, error) {
	if c.Len() < n {
		return nil, ErrShortBuffer
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// ReadUntil returns the bytes up to (excluding) the next occurrence of
// to, and advances the cursor past it. Returns nil if to isn't found.
func (c *Cursor) ReadUntil(to byte) []byte {
	chunk := ReadTo(c.data[c.pos:], to)
	if chunk == nil {
		return nil
	}
	c.pos += len(chunk) + 1
	return chunk
}

// ReadU16BE reads a big-endian uint16 and advances the cursor
func (c *Cursor) ReadU16BE() (uint16, error) {
	b, err := c.ReadN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32BE reads a big-endian uint32 and advances the cursor
func (c *Cursor) ReadU32BE() (uint32, error) {
	b, err := c.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
