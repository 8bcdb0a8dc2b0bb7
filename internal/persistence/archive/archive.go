package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/world"
)

type MilestoneMeta struct {
	Milestone  int    `json:"milestone"`
	Tick       uint64 `json:"tick"`
	WorldID    string `json:"world_id"`
	RunID      string `json:"run_id"`
	Seed       uint64 `json:"seed"`
	Mode       string `json:"mode"`
	Agents     int    `json:"agents"`
	Moving     int    `json:"moving"`
	Snapshot   string `json:"snapshot"`
	CreatedAt  string `json:"created_at"`
	EveryTicks uint64 `json:"every_ticks"`
}

// ArchiveMilestone copies a snapshot into `worldDir/archives/milestone_<NNN>/` when its
// tick closes a window of everyTicks ticks. Snapshots carry the last executed tick, so
// milestone k is the snapshot at tick every*k - 1.
func ArchiveMilestone(worldDir, snapshotPath string, snap snapshot.SnapshotV1, everyTicks uint64) (milestone int, archivedPath string, archived bool, err error) {
	if everyTicks == 0 {
		return 0, "", false, nil
	}
	if (snap.Header.Tick+1)%everyTicks != 0 {
		return 0, "", false, nil
	}
	milestone = int((snap.Header.Tick + 1) / everyTicks)

	dir := filepath.Join(worldDir, "archives", fmt.Sprintf("milestone_%03d", milestone))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", false, err
	}
	dst := filepath.Join(dir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return 0, "", false, err
	}

	moving := 0
	for _, d := range snap.Agents.Dest {
		if d != world.Roaming {
			moving++
		}
	}
	meta := MilestoneMeta{
		Milestone:  milestone,
		Tick:       snap.Header.Tick,
		WorldID:    snap.Header.WorldID,
		RunID:      snap.Header.RunID,
		Seed:       snap.Seed,
		Mode:       snap.Mode,
		Agents:     snap.Agents.Len(),
		Moving:     moving,
		Snapshot:   filepath.Base(dst),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		EveryTicks: everyTicks,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
	}
	return milestone, dst, true, nil
}

// Prune removes all but the newest keep snapshots from dir. keep <= 0 disables pruning.
func Prune(dir string, keep int) (removed []string, err error) {
	if keep <= 0 {
		return nil, nil
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type snap struct {
		tick uint64
		path string
	}
	var snaps []snap
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(e.Name(), ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap{tick: tick, path: filepath.Join(dir, e.Name())})
	}
	if len(snaps) <= keep {
		return nil, nil
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].tick > snaps[j].tick })
	for _, s := range snaps[keep:] {
		if err := os.Remove(s.path); err != nil {
			return removed, err
		}
		removed = append(removed, s.path)
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
