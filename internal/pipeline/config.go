package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one run.  YAML tags serve config files, JSON tags the
// stored run records.  Margin and Temperature are pointers so an omitted
// value can default without masking an explicit zero.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" json:"dataset"`
	Model     ModelConfig     `yaml:"model" json:"model"`
	Criterion CriterionConfig `yaml:"criterion" json:"criterion"`
	Optimizer OptimizerConfig `yaml:"optimizer" json:"optimizer"`
	Training  TrainingConfig  `yaml:"training" json:"training"`
	Eval      EvalConfig      `yaml:"eval" json:"eval"`
	Seed      int64           `yaml:"seed" json:"seed"`
	OutputDir string          `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
}

// DatasetConfig names the dataset.  An empty name selects the built-in toy
// graph; any other name is loaded from Dir.
type DatasetConfig struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Dir  string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// ModelConfig selects and sizes the model.  Name defaults to "hole".
type ModelConfig struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Dim  int    `yaml:"dim,omitempty" json:"dim,omitempty"`
	Norm int    `yaml:"norm,omitempty" json:"norm,omitempty"`
}

// CriterionConfig selects the loss.  Name defaults to "nssa"; Margin and
// Temperature both default to 1.
type CriterionConfig struct {
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Margin      *float64 `yaml:"margin,omitempty" json:"margin,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

type OptimizerConfig struct {
	LearningRate float64 `yaml:"learning_rate,omitempty" json:"learning_rate,omitempty"`
}

type TrainingConfig struct {
	Epochs    int `yaml:"epochs,omitempty" json:"epochs,omitempty"`
	BatchSize int `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	Negatives int `yaml:"negatives,omitempty" json:"negatives,omitempty"`
	Workers   int `yaml:"workers,omitempty" json:"workers,omitempty"`
}

type EvalConfig struct {
	Filtered  bool  `yaml:"filtered,omitempty" json:"filtered,omitempty"`
	HitsAt    []int `yaml:"hits_at,omitempty" json:"hits_at,omitempty"`
	BatchSize int   `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	Workers   int   `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// withDefaults resolves the fields the pipeline itself consumes.  Training
// and evaluation defaults stay with their packages.
func (c Config) withDefaults() Config {
	if c.Model.Name == "" {
		c.Model.Name = "hole"
	}
	if c.Criterion.Name == "" {
		c.Criterion.Name = "nssa"
	}
	if c.Criterion.Margin == nil {
		c.Criterion.Margin = f64(1)
	}
	if c.Criterion.Temperature == nil {
		c.Criterion.Temperature = f64(1)
	}
	return c
}

func f64(v float64) *float64 { return &v }

// LoadFile reads a YAML run configuration.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
