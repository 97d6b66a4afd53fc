package bitspacket

import (
	"encoding/binary"
	"fmt"
)

// MaxReadWidth is the widest field a single Cursor read can return.
const MaxReadWidth = 32

// Cursor is an immutable position in a bit stream backed by a byte slice.
// Bits are consumed MSB-first within each byte (big-endian bit order): bit 0
// of the stream is the most significant bit of buf[0], bit 8 is the most
// significant bit of buf[1], and so on.
//
// A Cursor is a value. Reads never modify it; they return the advanced
// Cursor, so a copy can be kept to retry or inspect a position.
type Cursor struct {
	buf []byte
	pos int // bit offset from the start of buf
}

// NewCursor returns a Cursor at bit offset 0 of b. The bytes are borrowed, not copied.
func NewCursor(b []byte) Cursor { return Cursor{buf: b} }

// Offset returns the number of bits consumed from the start of the buffer.
func (c Cursor) Offset() int { return c.pos }

// Remaining returns the number of real (non-padding) bits left after the
// cursor. It goes negative once reads have run into implicit zero padding.
func (c Cursor) Remaining() int { return len(c.buf)*8 - c.pos }

// ReadBits reads n bits (1 ≤ n ≤ MaxReadWidth) and returns them as the low
// bits of a uint32 together with the cursor advanced by n.
//
// Bits past the end of the buffer read as zero. Callers that must reject
// short input compare n against Remaining first.
func (c Cursor) ReadBits(n int) (uint32, Cursor, error) {
	if n < 1 || n > MaxReadWidth {
		return 0, c, fmt.Errorf("%w: read of %d bits at pos %d", ErrWidth, n, c.pos)
	}
	next := Cursor{buf: c.buf, pos: c.pos + n}

	// Fast path: byte-aligned reads of exact byte widths.
	if c.pos%8 == 0 && next.pos <= len(c.buf)*8 {
		off := c.pos / 8
		switch n {
		case 8:
			return uint32(c.buf[off]), next, nil
		case 16:
			return uint32(binary.BigEndian.Uint16(c.buf[off:])), next, nil
		case 32:
			return binary.BigEndian.Uint32(c.buf[off:]), next, nil
		}
	}

	// A 32-bit field starting at bit 7 of a byte spans at most 5 bytes, so a
	// 40-bit window always covers the request.
	var window uint64
	first := c.pos / 8
	for i := 0; i < 5; i++ {
		window <<= 8
		if idx := first + i; idx < len(c.buf) {
			window |= uint64(c.buf[idx])
		}
	}
	shift := 40 - c.pos%8 - n
	v := (window >> uint(shift)) & (1<<uint(n) - 1)
	return uint32(v), next, nil
}

// Skip returns the cursor advanced by n bits without reading them.
func (c Cursor) Skip(n int) Cursor {
	if n < 0 {
		n = 0
	}
	return Cursor{buf: c.buf, pos: c.pos + n}
}

// String renders the cursor position and the remaining bits of the current
// byte onward, e.g. "{pos: 3, bits: 10010111 11111000}".
func (c Cursor) String() string {
	first := c.pos / 8
	if first >= len(c.buf) {
		return fmt.Sprintf("{pos: %d, bits: }", c.pos)
	}
	s := fmt.Sprintf("{pos: %d, bits:", c.pos)
	for _, b := range c.buf[first:] {
		s += fmt.Sprintf(" %08b", b)
	}
	return s + "}"
}
