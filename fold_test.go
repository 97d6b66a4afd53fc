package bitspacket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionSum(t *testing.T) {
	tests := []struct {
		hex  string
		want uint64
	}{
		{"8A004A801A8002F478", 16},
		{"620080001611562C8802118E34", 12},
		{"C0015000016115A2E0802F182340", 23},
		{"A0016C880162017C3686B18A3D4780", 31},
		{"D2FE28", 6},
		{"38006F45291200", 9},
		{"EE00D40C823060", 14},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			p, err := Decode(mustHex(t, tt.hex))
			require.NoError(t, err)
			assert.Equal(t, tt.want, VersionSum(p))
		})
	}
}

func TestVersionSumNil(t *testing.T) {
	assert.Zero(t, VersionSum(nil))
}

// TestFoldPostOrder records visit order: children before parents, siblings in stream order.
func TestFoldPostOrder(t *testing.T) {
	p := op(1, TypeSum, lit(2, 10), op(3, TypeProduct, lit(4, 20)), lit(5, 30))

	var visited []uint8
	_, err := Fold(p, func(p *Packet, _ []struct{}) (struct{}, error) {
		visited = append(visited, p.Version)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 4, 3, 5, 1}, visited)
}

func TestFoldStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := op(1, TypeSum, lit(2, 10), lit(3, 20), lit(4, 30))

	calls := 0
	_, err := Fold(p, func(p *Packet, _ []int) (int, error) {
		calls++
		if p.Version == 3 {
			return 0, boom
		}
		return 0, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

// TestParallelFoldMatchesFold compares both folds on every known vector and worker count.
func TestParallelFoldMatchesFold(t *testing.T) {
	for _, h := range []string{
		"8A004A801A8002F478",
		"620080001611562C8802118E34",
		"C0015000016115A2E0802F182340",
		"A0016C880162017C3686B18A3D4780",
		"9C0141080250320F1802104A08",
		"D2FE28",
	} {
		p, err := Decode(mustHex(t, h))
		require.NoError(t, err, h)

		wantSum, err := Fold(p, VersionSumFunc)
		require.NoError(t, err)
		wantVal, err := Fold(p, EvalFunc)
		require.NoError(t, err)

		for _, workers := range []int{0, 1, 3} {
			gotSum, err := ParallelFold(p, VersionSumFunc, workers)
			require.NoError(t, err)
			assert.Equal(t, wantSum, gotSum, "%s version sum, %d workers", h, workers)

			gotVal, err := ParallelFold(p, EvalFunc, workers)
			require.NoError(t, err)
			assert.Equal(t, wantVal, gotVal, "%s value, %d workers", h, workers)
		}
	}
}

func TestParallelFoldPropagatesError(t *testing.T) {
	p := op(0, TypeSum, lit(1, 1), op(2, TypeLessThan, lit(3, 1)), lit(4, 2))
	_, err := ParallelFold(p, EvalFunc, 2)
	assert.ErrorIs(t, err, ErrArity)
}

func TestCountAndDepth(t *testing.T) {
	p, err := Decode(mustHex(t, "A0016C880162017C3686B18A3D4780"))
	require.NoError(t, err)
	assert.Equal(t, 8, p.Count())
	assert.Equal(t, 4, p.Depth())

	var nilPacket *Packet
	assert.Zero(t, nilPacket.Count())
}
