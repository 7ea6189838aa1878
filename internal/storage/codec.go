package storage

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRun serialises a run record, stamping the current schema version
// when the record carries none.
func EncodeRun(r RunRecord) ([]byte, error) {
	if r.SchemaVersion == 0 {
		r.SchemaVersion = CurrentSchemaVersion
	}
	return json.Marshal(r)
}

// DecodeRun parses a stored payload and rejects foreign schema versions.
func DecodeRun(data []byte) (RunRecord, error) {
	var r RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RunRecord{}, err
	}
	if r.SchemaVersion != CurrentSchemaVersion {
		return RunRecord{}, fmt.Errorf("run schema version %d: %w", r.SchemaVersion, ErrVersionMismatch)
	}
	return r, nil
}
