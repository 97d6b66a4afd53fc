package bitspacket

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Field widths of the packet format.
const (
	versionBits     = 3
	typeBits        = 3
	groupBits       = 5
	totalLengthBits = 15
	countBits       = 11
)

// DefaultMaxDepth bounds packet nesting for DefaultOptions.
const DefaultMaxDepth = 1024

// LengthMode is the termination discipline of an operator's children.
type LengthMode uint8

const (
	// ModeTotalBits: a 15-bit count of the bits occupied by all children follows.
	ModeTotalBits LengthMode = 0

	// ModePacketCount: an 11-bit count of children follows.
	ModePacketCount LengthMode = 1
)

func (m LengthMode) String() string {
	if m == ModeTotalBits {
		return "total-bits"
	}
	return "packet-count"
}

// Options configures a Decoder.
type Options struct {
	// Strict rejects reads past the end of the buffer with ErrUnexpectedEnd
	// instead of treating the missing bits as zero padding.
	Strict bool

	// MaxDepth limits packet nesting; the root is at depth 1. Zero means unlimited.
	MaxDepth int

	// Logger receives trace events per packet. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns lenient padding, DefaultMaxDepth and no logging.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Decoder parses packet trees. It holds only configuration and is safe for
// concurrent use.
type Decoder struct {
	opts Options
	log  zerolog.Logger
}

// NewDecoder returns a Decoder configured by opts.
func NewDecoder(opts Options) *Decoder {
	d := &Decoder{opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	return d
}

// Decode parses the packet starting at bit 0 of buf with DefaultOptions.
// Bits after the root packet are padding and are ignored.
func Decode(buf []byte) (*Packet, error) {
	return NewDecoder(DefaultOptions()).Decode(buf)
}

// Decode parses the packet starting at bit 0 of buf. Bits after the root
// packet are padding and are ignored.
func (d *Decoder) Decode(buf []byte) (*Packet, error) {
	p, next, err := d.ParsePacket(NewCursor(buf))
	if err != nil {
		return nil, err
	}
	d.log.Debug().
		Int("bits", next.Offset()).
		Int("padding", max(next.Remaining(), 0)).
		Int("packets", p.Count()).
		Msg("decoded packet tree")
	return p, nil
}

// ParsePacket parses one packet, including all of its sub-packets, and
// returns it with the cursor positioned immediately after it.
func (d *Decoder) ParsePacket(c Cursor) (*Packet, Cursor, error) {
	return d.parsePacket(c, 1)
}

func (d *Decoder) parsePacket(c Cursor, depth int) (*Packet, Cursor, error) {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return nil, c, &DecodeError{Offset: c.Offset(),
			Err: fmt.Errorf("%w: depth %d exceeds limit %d", ErrDepthExceeded, depth, d.opts.MaxDepth)}
	}
	start := c.Offset()
	version, typeID, c, err := d.ParseHeader(c)
	if err != nil {
		return nil, c, err
	}
	d.log.Trace().
		Int("pos", start).
		Uint8("version", version).
		Stringer("type", typeID).
		Int("depth", depth).
		Msg("packet header")

	p := &Packet{Version: version, TypeID: typeID}
	if typeID == TypeLiteral {
		v, next, err := d.ParseLiteral(c)
		if err != nil {
			return nil, next, err
		}
		p.Payload = Literal(v)
		return p, next, nil
	}

	mode, c, err := d.ParseLengthDescriptor(c)
	if err != nil {
		return nil, c, err
	}
	var children []*Packet
	switch mode {
	case ModeTotalBits:
		children, c, err = d.parseByTotalBits(c, depth)
	default:
		children, c, err = d.parseByCount(c, depth)
	}
	if err != nil {
		return nil, c, err
	}
	p.Payload = Operator(children)
	return p, c, nil
}

// ParseHeader reads the 3-bit version and 3-bit type tag.
func (d *Decoder) ParseHeader(c Cursor) (uint8, TypeID, Cursor, error) {
	version, c, err := d.read(c, versionBits)
	if err != nil {
		return 0, 0, c, err
	}
	typeID, c, err := d.read(c, typeBits)
	if err != nil {
		return 0, 0, c, err
	}
	return uint8(version), TypeID(typeID), c, nil
}

// ParseLiteral reads 5-bit groups until one has a clear leading bit. The low
// four bits of each group are appended to the value, most significant first.
// A value needing more than 64 bits fails with ErrOverflow.
func (d *Decoder) ParseLiteral(c Cursor) (uint64, Cursor, error) {
	start := c.Offset()
	var value uint64
	for {
		group, next, err := d.read(c, groupBits)
		if err != nil {
			return 0, next, err
		}
		if value>>60 != 0 {
			return 0, next, &DecodeError{Offset: start,
				Err: fmt.Errorf("%w: literal exceeds 64 bits", ErrOverflow)}
		}
		value = value<<4 | uint64(group&0x0F)
		c = next
		if group&0x10 == 0 {
			return value, c, nil
		}
	}
}

// ParseLengthDescriptor reads the one-bit operator length mode.
func (d *Decoder) ParseLengthDescriptor(c Cursor) (LengthMode, Cursor, error) {
	bit, c, err := d.read(c, 1)
	if err != nil {
		return 0, c, err
	}
	return LengthMode(bit), c, nil
}

// parseByTotalBits reads a 15-bit length L and parses children until exactly
// L bits have been consumed.
func (d *Decoder) parseByTotalBits(c Cursor, depth int) ([]*Packet, Cursor, error) {
	length, c, err := d.read(c, totalLengthBits)
	if err != nil {
		return nil, c, err
	}
	declared := int(length)
	if declared > 0 && declared > c.Remaining() {
		return nil, c, &DecodeError{Offset: c.Offset(),
			Err: fmt.Errorf("%w: operator declares %d bits, %d remain", ErrTruncatedStream, declared, max(c.Remaining(), 0))}
	}
	d.log.Trace().Int("pos", c.Offset()).Int("bits", declared).Msg("operator children by total bits")

	start := c.Remaining()
	var children []*Packet
	consumed := 0
	for consumed < declared {
		child, next, err := d.parsePacket(c, depth+1)
		if err != nil {
			return nil, next, err
		}
		children = append(children, child)
		c = next
		consumed = start - c.Remaining()
	}
	if consumed != declared {
		return nil, c, &DecodeError{Offset: c.Offset(),
			Err: fmt.Errorf("%w: children used %d bits, operator declares %d", ErrTruncatedStream, consumed, declared)}
	}
	return children, c, nil
}

// parseByCount reads an 11-bit count N and parses exactly N children.
func (d *Decoder) parseByCount(c Cursor, depth int) ([]*Packet, Cursor, error) {
	count, c, err := d.read(c, countBits)
	if err != nil {
		return nil, c, err
	}
	d.log.Trace().Int("pos", c.Offset()).Uint32("count", count).Msg("operator children by count")

	children := make([]*Packet, 0, count)
	for i := 0; i < int(count); i++ {
		child, next, err := d.parsePacket(c, depth+1)
		if err != nil {
			return nil, next, err
		}
		children = append(children, child)
		c = next
	}
	return children, c, nil
}

// read wraps Cursor.ReadBits with the strict end-of-buffer policy.
func (d *Decoder) read(c Cursor, n int) (uint32, Cursor, error) {
	if d.opts.Strict && n > c.Remaining() {
		return 0, c, &DecodeError{Offset: c.Offset(),
			Err: fmt.Errorf("%w: need %d bits, %d remain", ErrUnexpectedEnd, n, max(c.Remaining(), 0))}
	}
	v, next, err := c.ReadBits(n)
	if err != nil {
		return 0, c, &DecodeError{Offset: c.Offset(), Err: err}
	}
	return v, next, nil
}
