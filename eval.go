package bitspacket

import (
	"fmt"
	"math/bits"
)

// EvalFunc evaluates one packet given the values of its children.
//
//	sum, product      arithmetic over all children (empty: 0 and 1)
//	minimum, maximum  over all children; at least one required
//	greater-than, less-than, equal-to
//	                  exactly two children; 1 if the relation holds, else 0
//
// Arithmetic that does not fit in a uint64 fails with ErrOverflow.
func EvalFunc(p *Packet, children []uint64) (uint64, error) {
	switch p.TypeID {
	case TypeLiteral:
		v, ok := p.Literal()
		if !ok {
			return 0, fmt.Errorf("%w: literal packet without literal payload", ErrUnknownType)
		}
		return v, nil
	case TypeSum:
		var sum uint64
		for _, c := range children {
			var carry uint64
			sum, carry = bits.Add64(sum, c, 0)
			if carry != 0 {
				return 0, fmt.Errorf("%w: sum", ErrOverflow)
			}
		}
		return sum, nil
	case TypeProduct:
		product := uint64(1)
		for _, c := range children {
			hi, lo := bits.Mul64(product, c)
			if hi != 0 {
				return 0, fmt.Errorf("%w: product", ErrOverflow)
			}
			product = lo
		}
		return product, nil
	case TypeMinimum, TypeMaximum:
		if len(children) == 0 {
			return 0, fmt.Errorf("%w: %s", ErrNoOperands, p.TypeID)
		}
		v := children[0]
		for _, c := range children[1:] {
			if p.TypeID == TypeMinimum {
				v = min(v, c)
			} else {
				v = max(v, c)
			}
		}
		return v, nil
	case TypeGreaterThan, TypeLessThan, TypeEqualTo:
		if len(children) != 2 {
			return 0, fmt.Errorf("%w: %s has %d", ErrArity, p.TypeID, len(children))
		}
		var holds bool
		switch p.TypeID {
		case TypeGreaterThan:
			holds = children[0] > children[1]
		case TypeLessThan:
			holds = children[0] < children[1]
		default:
			holds = children[0] == children[1]
		}
		if holds {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownType, uint8(p.TypeID))
}

// Eval computes the value of the expression encoded by the tree rooted at p.
func Eval(p *Packet) (uint64, error) {
	return Fold(p, EvalFunc)
}
