// Package eval ranks held-out triples against every candidate entity and
// aggregates the ranks into the standard link-prediction metrics.
//
// For a test triple (h, r, t) the true tail is ranked within the scores of
// ScoreTails(h, r) and the true head within ScoreHeads(r, t).  Ties are
// resolved realistically: the reported rank is the mean of the optimistic
// rank (ties resolve in the model's favour) and the pessimistic rank (ties
// resolve against it).  Filtered ranks additionally drop candidates that
// form a known triple other than the one under evaluation.
package eval

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// Config controls an evaluation run.  Zero values fall back to the defaults
// noted per field.
type Config struct {
	Filtered  bool  // also compute filtered metrics
	HitsAt    []int // hits thresholds, default 1, 3, 10
	BatchSize int   // triples scored per model call, default 64
	Workers   int   // scoring goroutines, default GOMAXPROCS
}

// RankMetrics aggregates realistic ranks over one set of predictions.
type RankMetrics struct {
	Count    int             `json:"count"`
	MeanRank float64         `json:"mean_rank"`
	MRR      float64         `json:"mean_reciprocal_rank"`
	Hits     map[int]float64 `json:"hits_at"`
}

// SideMetrics breaks metrics out by the side being predicted.  Both pools
// the tail and head ranks before aggregating.
type SideMetrics struct {
	Tail RankMetrics `json:"tail"`
	Head RankMetrics `json:"head"`
	Both RankMetrics `json:"both"`
}

// Results carries the metrics of one evaluation run.  Filtered is nil
// unless filtered evaluation was requested.
type Results struct {
	Unfiltered SideMetrics  `json:"unfiltered"`
	Filtered   *SideMetrics `json:"filtered,omitempty"`
}

// Evaluator scores one model over a test split.  Scoring is read-only, so
// chunks of the split are ranked concurrently.
type Evaluator struct {
	model model.Model
	cfg   Config
	known func(triples.Triple) bool
	log   logger.Logger
}

// New validates cfg and builds an Evaluator.  known is the membership test
// used for filtering and must be non-nil when cfg.Filtered is set.
func New(m model.Model, cfg Config, known func(triples.Triple) bool, log logger.Logger) (*Evaluator, error) {
	if len(cfg.HitsAt) == 0 {
		cfg.HitsAt = []int{1, 3, 10}
	}
	for _, k := range cfg.HitsAt {
		if k < 1 {
			return nil, fmt.Errorf("hits threshold must be at least 1, got %d", k)
		}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 64
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Filtered && known == nil {
		return nil, fmt.Errorf("filtered evaluation needs a known-triples membership test")
	}
	if log == nil {
		log = logger.Default()
	}
	return &Evaluator{model: m, cfg: cfg, known: known, log: log}, nil
}

// rankSink collects realistic ranks by test-triple index so concurrent
// workers never contend.
type rankSink struct {
	tail, head         []float64
	tailFilt, headFilt []float64
}

// Evaluate ranks every triple of the test split and returns the aggregated
// metrics.  It stops early with the context error when ctx is cancelled.
func (e *Evaluator) Evaluate(ctx context.Context, test *triples.Factory) (*Results, error) {
	ts := test.Triples()
	if len(ts) == 0 {
		return nil, fmt.Errorf("evaluation split has no triples")
	}

	e.log.Info("evaluation started",
		"model", e.model.Name(),
		"triples", len(ts),
		"filtered", e.cfg.Filtered,
		"workers", e.cfg.Workers,
	)

	sink := &rankSink{
		tail: make([]float64, len(ts)),
		head: make([]float64, len(ts)),
	}
	if e.cfg.Filtered {
		sink.tailFilt = make([]float64, len(ts))
		sink.headFilt = make([]float64, len(ts))
	}

	type span struct{ lo, hi int }
	nSpans := (len(ts) + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	spans := make(chan span, nSpans)
	for lo := 0; lo < len(ts); lo += e.cfg.BatchSize {
		hi := lo + e.cfg.BatchSize
		if hi > len(ts) {
			hi = len(ts)
		}
		spans <- span{lo, hi}
	}
	close(spans)

	workers := e.cfg.Workers
	if workers > nSpans {
		workers = nSpans
	}
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for sp := range spans {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				if err := e.rankSpan(ts, sp.lo, sp.hi, sink); err != nil {
					errs[w] = err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &Results{
		Unfiltered: e.sideMetrics(sink.tail, sink.head),
	}
	if e.cfg.Filtered {
		f := e.sideMetrics(sink.tailFilt, sink.headFilt)
		res.Filtered = &f
	}

	reported := res.Unfiltered
	if res.Filtered != nil {
		reported = *res.Filtered
	}
	e.log.Info("evaluation finished",
		"mean_rank", reported.Both.MeanRank,
		"mrr", reported.Both.MRR,
	)
	return res, nil
}

// rankSpan scores the test triples in [lo, hi) and writes their ranks into
// the sink.
func (e *Evaluator) rankSpan(ts []triples.Triple, lo, hi int, sink *rankSink) error {
	n := hi - lo
	hs := make([]int64, n)
	rs := make([]int64, n)
	tails := make([]int64, n)
	for i := 0; i < n; i++ {
		hs[i] = ts[lo+i].Head
		rs[i] = ts[lo+i].Relation
		tails[i] = ts[lo+i].Tail
	}

	tailScores, err := e.model.ScoreTails(hs, rs)
	if err != nil {
		return err
	}
	headScores, err := e.model.ScoreHeads(rs, tails)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		t := ts[lo+i]
		sink.tail[lo+i] = rankInRow(tailScores.Row(i), t.Tail, nil)
		sink.head[lo+i] = rankInRow(headScores.Row(i), t.Head, nil)
		if sink.tailFilt != nil {
			sink.tailFilt[lo+i] = rankInRow(tailScores.Row(i), t.Tail, func(e2 int64) bool {
				return e.known(triples.Triple{Head: t.Head, Relation: t.Relation, Tail: e2})
			})
			sink.headFilt[lo+i] = rankInRow(headScores.Row(i), t.Head, func(e2 int64) bool {
				return e.known(triples.Triple{Head: e2, Relation: t.Relation, Tail: t.Tail})
			})
		}
	}
	return nil
}

// rankInRow computes the realistic rank of the candidate at index truth
// within one row of scores.  Candidates accepted by skip are removed from
// the ranking; the true candidate itself is never skipped.
func rankInRow(row []float64, truth int64, skip func(int64) bool) float64 {
	trueScore := row[truth]
	greater, equal := 0, 0
	for i, s := range row {
		cand := int64(i)
		if cand == truth {
			continue
		}
		if skip != nil && skip(cand) {
			continue
		}
		if s > trueScore {
			greater++
		} else if s == trueScore {
			equal++
		}
	}
	optimistic := float64(1 + greater)
	pessimistic := float64(1 + greater + equal)
	return (optimistic + pessimistic) / 2
}

// sideMetrics aggregates tail and head ranks separately and pooled.
func (e *Evaluator) sideMetrics(tail, head []float64) SideMetrics {
	both := make([]float64, 0, len(tail)+len(head))
	both = append(both, tail...)
	both = append(both, head...)
	return SideMetrics{
		Tail: e.aggregate(tail),
		Head: e.aggregate(head),
		Both: e.aggregate(both),
	}
}

// aggregate turns realistic ranks into mean rank, mean reciprocal rank and
// hits fractions.
func (e *Evaluator) aggregate(ranks []float64) RankMetrics {
	recip := make([]float64, len(ranks))
	for i, r := range ranks {
		recip[i] = 1 / r
	}
	m := RankMetrics{
		Count:    len(ranks),
		MeanRank: stat.Mean(ranks, nil),
		MRR:      stat.Mean(recip, nil),
		Hits:     make(map[int]float64, len(e.cfg.HitsAt)),
	}
	for _, k := range e.cfg.HitsAt {
		hit := 0
		for _, r := range ranks {
			if r <= float64(k) {
				hit++
			}
		}
		m.Hits[k] = float64(hit) / float64(len(ranks))
	}
	return m
}
