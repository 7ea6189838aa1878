package triples

import (
	"fmt"
	"math/rand"
)

// Corrupted is a negative triple produced by replacing one side of a
// positive.  Exactly one side differs from the source triple; ReplacedHead
// records which.
type Corrupted struct {
	Triple
	ReplacedHead bool
}

// NegativeSampler corrupts positive triples by replacing the head or the
// tail, chosen with equal probability, with an entity drawn uniformly from
// the whole entity set.
//
// A NegativeSampler owns its random source and is not safe for concurrent
// use.
type NegativeSampler struct {
	numEntities int64
	k           int
	rng         *rand.Rand
}

// NewNegativeSampler returns a sampler producing k negatives per positive
// over numEntities entities, seeded for reproducibility.
func NewNegativeSampler(numEntities, k int, seed int64) (*NegativeSampler, error) {
	if numEntities < 1 {
		return nil, fmt.Errorf("negative sampler needs at least one entity, got %d", numEntities)
	}
	if k < 1 {
		return nil, fmt.Errorf("negatives per positive must be at least 1, got %d", k)
	}
	return &NegativeSampler{
		numEntities: int64(numEntities),
		k:           k,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// K returns the number of negatives drawn per positive.
func (s *NegativeSampler) K() int { return s.k }

// Sample appends k corruptions of t to dst and returns it.  Corruptions may
// collide with true triples; uniform sampling does not filter them.
func (s *NegativeSampler) Sample(dst []Corrupted, t Triple) []Corrupted {
	for i := 0; i < s.k; i++ {
		c := Corrupted{Triple: t}
		e := s.rng.Int63n(s.numEntities)
		if s.rng.Intn(2) == 0 {
			c.Head = e
			c.ReplacedHead = true
		} else {
			c.Tail = e
		}
		dst = append(dst, c)
	}
	return dst
}

// SampleBatch draws k negatives for every positive in batch, in order.
func (s *NegativeSampler) SampleBatch(dst []Corrupted, batch []Triple) []Corrupted {
	for _, t := range batch {
		dst = s.Sample(dst, t)
	}
	return dst
}
