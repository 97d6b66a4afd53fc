package bitspacket

import (
	"golang.org/x/sync/errgroup"
)

// FoldFunc combines a packet with the already-folded results of its children,
// given in stream order. Literals receive an empty slice.
type FoldFunc[T any] func(p *Packet, children []T) (T, error)

// Fold computes fn over the tree rooted at p in post-order. The first error
// returned by fn aborts the fold.
func Fold[T any](p *Packet, fn FoldFunc[T]) (T, error) {
	var zero T
	if p == nil {
		return zero, nil
	}
	kids := p.Children()
	results := make([]T, len(kids))
	for i, c := range kids {
		r, err := Fold(c, fn)
		if err != nil {
			return zero, err
		}
		results[i] = r
	}
	return fn(p, results)
}

// ParallelFold is Fold with each child subtree of the root folded in its own
// goroutine, at most workers at a time (workers <= 0 means no limit). fn must
// not share mutable state between calls. The result equals Fold(p, fn).
func ParallelFold[T any](p *Packet, fn FoldFunc[T], workers int) (T, error) {
	var zero T
	if p == nil {
		return zero, nil
	}
	kids := p.Children()
	results := make([]T, len(kids))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, c := range kids {
		i, c := i, c
		g.Go(func() error {
			r, err := Fold(c, fn)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return zero, err
	}
	return fn(p, results)
}

// VersionSumFunc adds a packet's version to the sums of its children.
func VersionSumFunc(p *Packet, children []uint64) (uint64, error) {
	sum := uint64(p.Version)
	for _, c := range children {
		sum += c
	}
	return sum, nil
}

// VersionSum returns the sum of the version fields of every packet in the tree.
func VersionSum(p *Packet) uint64 {
	sum, _ := Fold(p, VersionSumFunc)
	return sum
}
