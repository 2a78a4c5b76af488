package annindex

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Load reads the snapshot file and atomically swaps it in as the active
// generation. In-flight searches keep the generation they started with.
func (ix *Index) Load() error {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		return fmt.Errorf("read index snapshot %s: %w", ix.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse index snapshot %s: %w", ix.path, err)
	}
	if snap.Dimensions <= 0 && len(snap.Entries) > 0 {
		snap.Dimensions = len(snap.Entries[0].Vector)
	}
	for i, e := range snap.Entries {
		if len(e.Vector) != snap.Dimensions {
			return fmt.Errorf("index snapshot %s: entry %d (%s) has %d dimensions, want %d",
				ix.path, i, e.ID, len(e.Vector), snap.Dimensions)
		}
	}

	ix.active.Store(&snap)
	ix.logger.Info("Vector index snapshot loaded",
		zap.String("path", ix.path),
		zap.Int("entries", len(snap.Entries)),
		zap.Int("dimensions", snap.Dimensions),
	)
	return nil
}

// WriteSnapshot serializes entries into a new snapshot file at path, writing
// to a temp file first and renaming so readers never observe a half-written
// index.
func WriteSnapshot(path string, dimensions int, entries []Entry) error {
	data, err := json.Marshal(snapshot{Dimensions: dimensions, Entries: entries})
	if err != nil {
		return fmt.Errorf("marshal index snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write index snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("activate index snapshot %s: %w", path, err)
	}
	return nil
}
