package bitspacket_test

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"testing"

	"github.com/geal-ai/bitspacket"
)

// vector mirrors one entry of testdata/vectors.json.
type vector struct {
	Hex        string `json:"hex"`
	VersionSum uint64 `json:"version_sum"`
	Value      uint64 `json:"value"`
	Packets    int    `json:"packets"`
	Depth      int    `json:"depth"`
	Bits       int    `json:"bits"`
}

type vectorFile struct {
	Source  string   `json:"source"`
	Vectors []vector `json:"vectors"`
}

const vectorsPath = "testdata/vectors.json"

func loadVectors(t *testing.T) []vector {
	t.Helper()
	raw, err := os.ReadFile(vectorsPath)
	if err != nil {
		t.Fatalf("read %s: %v", vectorsPath, err)
	}
	var vf vectorFile
	if err := json.Unmarshal(raw, &vf); err != nil {
		t.Fatalf("parse %s: %v", vectorsPath, err)
	}
	if len(vf.Vectors) == 0 {
		t.Fatalf("%s has no vectors", vectorsPath)
	}
	return vf.Vectors
}

// TestGoldenVectors decodes every committed vector and checks the aggregates
// and the number of bits the root packet occupies.
func TestGoldenVectors(t *testing.T) {
	d := bitspacket.NewDecoder(bitspacket.Options{Strict: true})
	for _, v := range loadVectors(t) {
		t.Run(v.Hex, func(t *testing.T) {
			buf, err := hex.DecodeString(v.Hex)
			if err != nil {
				t.Fatalf("hex: %v", err)
			}
			p, next, err := d.ParsePacket(bitspacket.NewCursor(buf))
			if err != nil {
				t.Fatalf("ParsePacket: %v", err)
			}
			if next.Offset() != v.Bits {
				t.Errorf("bits: got %d, want %d", next.Offset(), v.Bits)
			}
			if got := bitspacket.VersionSum(p); got != v.VersionSum {
				t.Errorf("version sum: got %d, want %d", got, v.VersionSum)
			}
			got, err := bitspacket.Eval(p)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != v.Value {
				t.Errorf("value: got %d, want %d", got, v.Value)
			}
			if p.Count() != v.Packets {
				t.Errorf("packets: got %d, want %d", p.Count(), v.Packets)
			}
			if p.Depth() != v.Depth {
				t.Errorf("depth: got %d, want %d", p.Depth(), v.Depth)
			}
		})
	}
}
