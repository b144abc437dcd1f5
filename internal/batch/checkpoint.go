package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"taxonsort/internal/classify"
)

// LoadCheckpoint reads a checkpoint file. It returns (results, true, nil) when
// the file exists and parses, (nil, false, nil) when it is absent, and
// (nil, false, err) when it exists but cannot be read or decoded.
func LoadCheckpoint(path string) ([]*classify.Result, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read checkpoint: %w", err)
	}
	var results []*classify.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, fmt.Errorf("decode checkpoint: %w", err)
	}
	return results, true, nil
}

// SaveCheckpoint writes the full result list as indented JSON. The write goes
// to a temp file in the same directory followed by a rename, so a crash
// mid-write cannot truncate the previous checkpoint.
func SaveCheckpoint(path string, results []*classify.Result) error {
	if results == nil {
		results = []*classify.Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.json")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
