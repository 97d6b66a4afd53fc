package bitspacket

import (
	"fmt"
	"strings"
)

// TypeID is the 3-bit packet type tag. TypeLiteral marks a literal packet;
// every other value is an operator.
type TypeID uint8

const (
	TypeSum TypeID = iota
	TypeProduct
	TypeMinimum
	TypeMaximum
	TypeLiteral
	TypeGreaterThan
	TypeLessThan
	TypeEqualTo
)

var typeNames = [...]string{
	TypeSum:         "sum",
	TypeProduct:     "product",
	TypeMinimum:     "minimum",
	TypeMaximum:     "maximum",
	TypeLiteral:     "literal",
	TypeGreaterThan: "greater-than",
	TypeLessThan:    "less-than",
	TypeEqualTo:     "equal-to",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Payload is either a Literal or an Operator.
type Payload interface {
	isPayload()
}

// Literal is the payload of a TypeLiteral packet.
type Literal uint64

// Operator is the payload of every non-literal packet: its children in stream order.
type Operator []*Packet

func (Literal) isPayload()  {}
func (Operator) isPayload() {}

// Packet is one node of a decoded packet tree.
type Packet struct {
	Version uint8
	TypeID  TypeID
	Payload Payload
}

// Literal returns the literal value and true for a literal packet.
func (p *Packet) Literal() (uint64, bool) {
	v, ok := p.Payload.(Literal)
	return uint64(v), ok
}

// Children returns the sub-packets of an operator, or nil for a literal.
func (p *Packet) Children() []*Packet {
	if p == nil {
		return nil
	}
	ops, _ := p.Payload.(Operator)
	return ops
}

// Count returns the number of packets in the tree rooted at p.
func (p *Packet) Count() int {
	n, _ := Fold(p, func(_ *Packet, children []int) (int, error) {
		total := 1
		for _, c := range children {
			total += c
		}
		return total, nil
	})
	return n
}

// Depth returns the height of the tree rooted at p. A lone literal has depth 1.
func (p *Packet) Depth() int {
	d, _ := Fold(p, func(_ *Packet, children []int) (int, error) {
		deepest := 0
		for _, c := range children {
			deepest = max(deepest, c)
		}
		return deepest + 1, nil
	})
	return d
}

// String renders the tree one packet per line, children indented by two spaces:
//
//	less-than v1
//	  literal v6 = 10
//	  literal v2 = 20
func (p *Packet) String() string {
	var sb strings.Builder
	p.writeTo(&sb, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (p *Packet) writeTo(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	if v, ok := p.Literal(); ok {
		fmt.Fprintf(sb, "%s v%d = %d\n", p.TypeID, p.Version, v)
		return
	}
	fmt.Fprintf(sb, "%s v%d\n", p.TypeID, p.Version)
	for _, c := range p.Children() {
		c.writeTo(sb, indent+1)
	}
}
