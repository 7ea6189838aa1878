// Package storage persists pipeline run records behind a small Store
// interface, with a SQLite implementation for the CLI and an in-memory
// implementation for tests.
package storage

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// CurrentSchemaVersion tags stored run payloads so later readers can
// reject records they no longer understand.
const CurrentSchemaVersion = 1

// RunRecord is one stored pipeline run.  Config and Metrics carry the
// pipeline's own JSON documents; the store does not interpret them.
type RunRecord struct {
	SchemaVersion int             `json:"schema_version"`
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Dataset       string          `json:"dataset"`
	Model         string          `json:"model"`
	Config        json.RawMessage `json:"config,omitempty"`
	Metrics       json.RawMessage `json:"metrics,omitempty"`
	Losses        []float64       `json:"losses,omitempty"`
}

// Store persists run records.  Implementations are safe for concurrent
// use once Init has returned.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}
