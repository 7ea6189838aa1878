// Package training runs stochastic local-closed-world-assumption training:
// every positive triple in a batch is scored against freshly sampled
// corruptions, the model's criterion turns the scores into a loss, and the
// hand-derived score gradients are chained into embedding row updates.
package training

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// Config holds the training hyperparameters.  Zero values fall back to the
// defaults noted per field.
type Config struct {
	Epochs       int     // default 50
	BatchSize    int     // default 128
	Negatives    int     // negatives per positive, default 4
	LearningRate float64 // default 0.01
	Workers      int     // scoring goroutines, default GOMAXPROCS
	Seed         int64
}

func (c *Config) defaults() {
	if c.Epochs == 0 {
		c.Epochs = 50
	}
	if c.BatchSize == 0 {
		c.BatchSize = 128
	}
	if c.Negatives == 0 {
		c.Negatives = 4
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.01
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

func (c Config) validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be at least 1, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.Negatives < 1 {
		return fmt.Errorf("negatives per positive must be at least 1, got %d", c.Negatives)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// EpochStats reports one epoch of training.
type EpochStats struct {
	Epoch        int
	Loss         float64
	LearningRate float64
}

// Trainer trains one model on one factory.  Scoring within a batch fans out
// across workers while the tables are read-only; all row updates are then
// applied by the single training goroutine, so scoring never observes a
// half-applied update.
type Trainer struct {
	model model.Model
	cfg   Config
	log   logger.Logger

	// OnEpoch, when set, observes every epoch as it completes.
	OnEpoch func(EpochStats)
}

// New validates cfg and builds a Trainer.
func New(m model.Model, cfg Config, log logger.Logger) (*Trainer, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	return &Trainer{model: m, cfg: cfg, log: log}, nil
}

// triprads holds one scored triple and the gradients of its score.
type triprads struct {
	score      float64
	gh, gr, gt []float64
}

// Run trains for the configured number of epochs and returns per-epoch
// statistics.  It stops early when ctx is cancelled, returning the epochs
// finished so far along with the context error.
func (t *Trainer) Run(ctx context.Context, train *triples.Factory) ([]EpochStats, error) {
	pos := train.Triples()
	if len(pos) == 0 {
		return nil, fmt.Errorf("training split has no triples")
	}

	sampler, err := triples.NewNegativeSampler(t.model.NumEntities(), t.cfg.Negatives, t.cfg.Seed)
	if err != nil {
		return nil, err
	}

	batches := (len(pos) + t.cfg.BatchSize - 1) / t.cfg.BatchSize
	opt, err := NewSGD(t.cfg.LearningRate, batches*t.cfg.Epochs)
	if err != nil {
		return nil, err
	}

	t.log.Info("training started",
		"model", t.model.Name(),
		"criterion", t.model.Criterion().Name(),
		"triples", len(pos),
		"epochs", t.cfg.Epochs,
		"batch_size", t.cfg.BatchSize,
		"negatives", t.cfg.Negatives,
		"workers", t.cfg.Workers,
	)

	order := make([]int, len(pos))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(t.cfg.Seed))

	stats := make([]EpochStats, 0, t.cfg.Epochs)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var epochLoss float64
		var seen int
		for start := 0; start < len(order); start += t.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			end := start + t.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := make([]triples.Triple, 0, end-start)
			for _, idx := range order[start:end] {
				batch = append(batch, pos[idx])
			}

			negs := sampler.SampleBatch(nil, batch)
			loss, err := t.trainBatch(batch, negs, opt)
			if err != nil {
				return stats, err
			}
			epochLoss += loss * float64(len(batch))
			seen += len(batch)
			opt.Step()
		}

		st := EpochStats{
			Epoch:        epoch,
			Loss:         epochLoss / float64(seen),
			LearningRate: opt.LearningRate(),
		}
		stats = append(stats, st)
		if t.OnEpoch != nil {
			t.OnEpoch(st)
		}
		t.log.Debug("epoch finished", "epoch", epoch, "loss", st.Loss, "lr", st.LearningRate)
	}

	t.log.Info("training finished", "final_loss", stats[len(stats)-1].Loss)
	return stats, nil
}

// trainBatch scores the batch in parallel, derives loss gradients, and
// applies all updates sequentially.
func (t *Trainer) trainBatch(batch []triples.Triple, negs []triples.Corrupted, opt *SGD) (float64, error) {
	k := t.cfg.Negatives
	posGrads := make([]triprads, len(batch))
	negGrads := make([]triprads, len(negs))

	// Read-only scoring phase.
	workers := t.cfg.Workers
	if workers > len(batch) {
		workers = len(batch)
	}
	var wg sync.WaitGroup
	errs := make([]error, workers)
	chunk := (len(batch) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(batch) {
			hi = len(batch)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				p := batch[i]
				score, gh, gr, gt, err := t.model.ScoreGrad(p.Head, p.Relation, p.Tail)
				if err != nil {
					errs[w] = err
					return
				}
				posGrads[i] = triprads{score, gh, gr, gt}
				for j := i * k; j < (i+1)*k; j++ {
					n := negs[j]
					score, gh, gr, gt, err := t.model.ScoreGrad(n.Head, n.Relation, n.Tail)
					if err != nil {
						errs[w] = err
						return
					}
					negGrads[j] = triprads{score, gh, gr, gt}
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}

	posScores := make([]float64, len(batch))
	for i, g := range posGrads {
		posScores[i] = g.score
	}
	negRows := make([][]float64, len(batch))
	for i := range negRows {
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = negGrads[i*k+j].score
		}
		negRows[i] = row
	}

	crit := t.model.Criterion()
	lossVal, err := crit.ValueGrouped(posScores, negRows)
	if err != nil {
		return 0, err
	}
	gPos, gNeg, err := crit.GradGrouped(posScores, negRows)
	if err != nil {
		return 0, err
	}

	// Sequential update phase; the only writer touches the tables here.
	emb := t.model.Embeddings()
	var touched map[int64]struct{}
	if t.model.EntityMaxNorm() {
		touched = make(map[int64]struct{})
	}
	apply := func(trip triples.Triple, coeff float64, g triprads) error {
		if coeff == 0 {
			return nil
		}
		hRow, err := emb.EntityRow(trip.Head)
		if err != nil {
			return err
		}
		rRow, err := emb.RelationRow(trip.Relation)
		if err != nil {
			return err
		}
		tRow, err := emb.EntityRow(trip.Tail)
		if err != nil {
			return err
		}
		opt.Apply(hRow, coeff, g.gh)
		opt.Apply(rRow, coeff, g.gr)
		opt.Apply(tRow, coeff, g.gt)
		if touched != nil {
			touched[trip.Head] = struct{}{}
			touched[trip.Tail] = struct{}{}
		}
		return nil
	}
	for i, p := range batch {
		if err := apply(p, gPos[i], posGrads[i]); err != nil {
			return 0, err
		}
		for j := 0; j < k; j++ {
			idx := i*k + j
			if err := apply(negs[idx].Triple, gNeg[i][j], negGrads[idx]); err != nil {
				return 0, err
			}
		}
	}
	for e := range touched {
		if err := emb.ClipEntityNorm(e); err != nil {
			return 0, err
		}
	}
	return lossVal, nil
}
