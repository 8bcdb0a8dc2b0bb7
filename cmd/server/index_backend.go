package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epimotion/internal/persistence/indexdb"
	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/tuning"
	"epimotion/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	Close() error
	UpsertRun(worldID, runID string, seed uint64, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	Stats() indexdb.Stats
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("EM_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		idx, err := indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported EM_INDEX_BACKEND: %s", backend)
	}
}
