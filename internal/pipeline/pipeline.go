// Package pipeline wires a dataset, a model, a loss criterion, training and
// evaluation into one reproducible run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/basalamahsyarief/pykeen/internal/datasets"
	"github.com/basalamahsyarief/pykeen/internal/eval"
	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/loss"
	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/storage"
	"github.com/basalamahsyarief/pykeen/internal/training"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// Artifact names written by Result.Save.
const (
	EntityEmbeddingsFile   = "entity_embeddings.txt"
	RelationEmbeddingsFile = "relation_embeddings.txt"
	ResultFile             = "result.json"
)

// Result is the outcome of one run.  Model and Data are live objects for
// further use (serving, prediction); everything else serialises to JSON.
type Result struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	Dataset      string        `json:"dataset"`
	Config       Config        `json:"config"`
	Losses       []float64     `json:"losses"`
	Metrics      *eval.Results `json:"metrics,omitempty"`
	TrainSeconds float64       `json:"train_seconds"`
	EvalSeconds  float64       `json:"eval_seconds"`

	Model model.Model       `json:"-"`
	Data  *datasets.Dataset `json:"-"`
}

// Run executes one full pipeline pass: load the dataset, build the model
// with its criterion, train, then evaluate on the held-out split.  The
// logger travels in ctx via logger.WithContext.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := logger.FromContext(ctx)
	cfg = cfg.withDefaults()

	ds, err := datasets.Load(cfg.Dataset.Name, cfg.Dataset.Dir)
	if err != nil {
		return nil, err
	}

	crit, err := loss.New(cfg.Criterion.Name, *cfg.Criterion.Margin, *cfg.Criterion.Temperature)
	if err != nil {
		return nil, err
	}

	m, err := model.New(cfg.Model.Name, model.Config{
		NumEntities:  ds.Train.NumEntities(),
		NumRelations: ds.Train.NumRelations(),
		Dim:          cfg.Model.Dim,
		Norm:         cfg.Model.Norm,
		Seed:         cfg.Seed,
		Criterion:    crit,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Dataset:   ds.Name,
		Config:    cfg,
		Model:     m,
		Data:      ds,
	}
	log = log.With("run_id", res.RunID)

	tr, err := training.New(m, training.Config{
		Epochs:       cfg.Training.Epochs,
		BatchSize:    cfg.Training.BatchSize,
		Negatives:    cfg.Training.Negatives,
		LearningRate: cfg.Optimizer.LearningRate,
		Workers:      cfg.Training.Workers,
		Seed:         cfg.Seed,
	}, log)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	stats, err := tr.Run(ctx, ds.Train)
	if err != nil {
		return nil, err
	}
	res.TrainSeconds = time.Since(start).Seconds()
	res.Losses = make([]float64, len(stats))
	for i, st := range stats {
		res.Losses[i] = st.Loss
	}

	if split := EvalSplit(ds); split != nil {
		ev, err := eval.New(m, eval.Config{
			Filtered:  cfg.Eval.Filtered,
			HitsAt:    cfg.Eval.HitsAt,
			BatchSize: cfg.Eval.BatchSize,
			Workers:   cfg.Eval.Workers,
		}, ds.KnownTriples(), log)
		if err != nil {
			return nil, err
		}
		start = time.Now()
		metrics, err := ev.Evaluate(ctx, split)
		if err != nil {
			return nil, err
		}
		res.EvalSeconds = time.Since(start).Seconds()
		res.Metrics = metrics
	}
	return res, nil
}

// EvalSplit picks the held-out split: the test split when present, the
// validation split otherwise, nil when the dataset is train-only.
func EvalSplit(ds *datasets.Dataset) *triples.Factory {
	if ds.Test != nil && ds.Test.NumTriples() > 0 {
		return ds.Test
	}
	if ds.Validation != nil && ds.Validation.NumTriples() > 0 {
		return ds.Validation
	}
	return nil
}

// LoadResult reads the run summary Save wrote into dir.  The Model and Data
// fields are not part of the summary and stay nil.
func LoadResult(dir string) (*Result, error) {
	data, err := os.ReadFile(filepath.Join(dir, ResultFile))
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ResultFile, err)
	}
	return &res, nil
}

// Save writes the run artifacts into dir: both embedding tables in the text
// format and the run summary as indented JSON.
func (r *Result) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	emb := r.Model.Embeddings()
	if err := model.WriteEmbeddingsFile(filepath.Join(dir, EntityEmbeddingsFile), r.Data.Train.EntityLabels(), emb.Entities); err != nil {
		return err
	}
	if err := model.WriteEmbeddingsFile(filepath.Join(dir, RelationEmbeddingsFile), r.Data.Train.RelationLabels(), emb.Relations); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ResultFile), data, 0o644)
}

// Record converts the result into a storable run record.
func (r *Result) Record() (storage.RunRecord, error) {
	cfgJSON, err := json.Marshal(r.Config)
	if err != nil {
		return storage.RunRecord{}, fmt.Errorf("encode run config: %w", err)
	}
	rec := storage.RunRecord{
		ID:        r.RunID,
		CreatedAt: r.StartedAt,
		Dataset:   r.Dataset,
		Model:     r.Model.Name(),
		Config:    cfgJSON,
		Losses:    r.Losses,
	}
	if r.Metrics != nil {
		metricsJSON, err := json.Marshal(r.Metrics)
		if err != nil {
			return storage.RunRecord{}, fmt.Errorf("encode run metrics: %w", err)
		}
		rec.Metrics = metricsJSON
	}
	return rec, nil
}

// LoadModel rebuilds a model from the embedding tables Save wrote into dir,
// using cfg for the model and criterion selection and f for the label maps.
// The saved labels must match f's index order exactly.
func LoadModel(dir string, cfg Config, f *triples.Factory) (model.Model, error) {
	cfg = cfg.withDefaults()

	entLabels, ents, err := model.ReadEmbeddingsFile(filepath.Join(dir, EntityEmbeddingsFile))
	if err != nil {
		return nil, err
	}
	relLabels, rels, err := model.ReadEmbeddingsFile(filepath.Join(dir, RelationEmbeddingsFile))
	if err != nil {
		return nil, err
	}
	if err := checkLabels("entity", entLabels, f.EntityLabels()); err != nil {
		return nil, err
	}
	if err := checkLabels("relation", relLabels, f.RelationLabels()); err != nil {
		return nil, err
	}

	emb, err := model.NewEmbeddingsFromTables(ents, rels)
	if err != nil {
		return nil, err
	}
	crit, err := loss.New(cfg.Criterion.Name, *cfg.Criterion.Margin, *cfg.Criterion.Temperature)
	if err != nil {
		return nil, err
	}
	return model.New(cfg.Model.Name, model.Config{
		Norm:       cfg.Model.Norm,
		Criterion:  crit,
		Pretrained: emb,
	})
}

// checkLabels verifies saved labels agree with the factory's index order.
func checkLabels(kind string, saved, want []string) error {
	if len(saved) != len(want) {
		return fmt.Errorf("saved %s table has %d rows, dataset has %d %ss", kind, len(saved), len(want), kind)
	}
	for i := range saved {
		if saved[i] != want[i] {
			return fmt.Errorf("saved %s %d is %q, dataset has %q", kind, i, saved[i], want[i])
		}
	}
	return nil
}
