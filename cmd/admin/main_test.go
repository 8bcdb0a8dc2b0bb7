package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"epimotion/internal/persistence/indexdb"
	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/tuning"
	"epimotion/internal/sim/world"
)

func testSnapshot() snapshot.SnapshotV1 {
	return snapshot.SnapshotV1{
		Header: snapshot.Header{Version: snapshot.Version, WorldID: "world_1", RunID: "run-1", Tick: 12, Agents: 4},
		Seed:   7,
		Mode:   world.ModeBounds,
		Agents: snapshot.AgentsV1{
			X:     []float64{0.1, 0.5, 0.9, 0.5},
			Y:     []float64{0.1, 0.5, 0.9, 0.5},
			HX:    make([]float64, 4),
			HY:    make([]float64, 4),
			Speed: []float64{0.01, 0.01, 0.01, 0.01},
			Dest:  []int{0, 2, 2, 3},
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := summarize("x.snap.zst", testSnapshot())
	if sum.Roaming != 1 || sum.Moving != 3 {
		t.Fatalf("roaming=%d moving=%d", sum.Roaming, sum.Moving)
	}
	if sum.Dests[2] != 2 || sum.Dests[3] != 1 {
		t.Fatalf("dests=%v", sum.Dests)
	}
}

func TestRelease(t *testing.T) {
	snap := testSnapshot()
	if n := release(&snap, 2, false, [2]float64{}, [2]float64{}); n != 2 {
		t.Fatalf("released=%d want 2", n)
	}
	if snap.Agents.Dest[3] != 3 {
		t.Fatalf("dest filter ignored: %v", snap.Agents.Dest)
	}

	snap = testSnapshot()
	min, max, err := parseRect("0.6,0.6:0.4,0.4")
	if err != nil {
		t.Fatalf("parse rect: %v", err)
	}
	if n := release(&snap, -1, true, min, max); n != 2 {
		t.Fatalf("released=%d want 2", n)
	}
	want := []int{0, 0, 2, 0}
	for i, d := range snap.Agents.Dest {
		if d != want[i] {
			t.Fatalf("dest=%v want %v", snap.Agents.Dest, want)
		}
	}
}

func TestParseRect_Errors(t *testing.T) {
	for _, s := range []string{"", "1,2", "1,2:3", "a,b:1,2", "1,2,3:4,5"} {
		if _, _, err := parseRect(s); err == nil {
			t.Fatalf("%q: expected error", s)
		}
	}
}

func TestLatestSnapshot(t *testing.T) {
	worldDir := t.TempDir()
	dir := filepath.Join(worldDir, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"9.snap.zst", "120.snap.zst", "30.snap.zst", "120.released.snap.zst", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := latestSnapshot(worldDir); got != filepath.Join(dir, "120.snap.zst") {
		t.Fatalf("latest=%q", got)
	}
	if got := latestSnapshot(t.TempDir()); got != "" {
		t.Fatalf("empty dir latest=%q", got)
	}
}

func TestQueries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "world.sqlite")
	idx, err := indexdb.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 8; i++ {
		e := world.TickLogEntry{Tick: uint64(i), Roaming: 4, Digest: "d"}
		if i == 3 {
			e.Destinations = []world.DestinationChange{{Agent: 1, Dest: 2}, {Agent: 2, Dest: 2}}
		}
		if i == 5 {
			e.Destinations = []world.DestinationChange{{Agent: 1, Dest: 0}}
		}
		_ = idx.WriteTick(e)
	}
	idx.RecordSnapshot("/data/12.snap.zst", testSnapshot())
	if err := idx.UpsertRun("world_1", "run-1", 7, tuning.Defaults()); err != nil {
		t.Fatalf("upsert run: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	ticks, err := queryTicks(db, 2, 3)
	if err != nil {
		t.Fatalf("ticks: %v", err)
	}
	if len(ticks) != 3 || ticks[0].Tick != 2 || ticks[2].Tick != 4 {
		t.Fatalf("ticks=%+v", ticks)
	}

	dests, err := queryDestinations(db, 0, 1, 10)
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	if len(dests) != 2 || dests[0].Dest != 2 || dests[1].Tick != 5 || dests[1].Dest != 0 {
		t.Fatalf("destinations=%+v", dests)
	}
	all, err := queryDestinations(db, 4, -1, 10)
	if err != nil || len(all) != 1 {
		t.Fatalf("destinations from 4: %+v err=%v", all, err)
	}

	snaps, err := querySnapshots(db, 5)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Tick != 12 || snaps[0].Moving != 3 || snaps[0].Seed != 7 {
		t.Fatalf("snapshots=%+v", snaps)
	}

	meta, err := queryMeta(db)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta["run_id"] != "run-1" || meta["seed"] != "7" {
		t.Fatalf("meta=%v", meta)
	}
	if _, ok := meta["tuning_json"]; !ok {
		t.Fatalf("meta missing tuning_json: %v", meta)
	}
}
