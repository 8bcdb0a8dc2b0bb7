package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleSnapshot() SnapshotV1 {
	return SnapshotV1{
		Header:       Header{Version: Version, WorldID: "world_1", RunID: "run-a", Tick: 41, Agents: 3},
		Seed:         9,
		TickRate:     20,
		RNG:          []byte{1, 2, 3, 4},
		Mode:         "polygon",
		XBounds:      [2]float64{0, 1},
		YBounds:      [2]float64{0, 1},
		BoundsMargin: 0.02,
		Region:       [][2]float64{{0, 0}, {1, 0}, {1, 1}},
		Walk:         WalkV1{Speed: 0.01, HeadingUpdateChance: 0.02, SpeedUpdateChance: 0.02, HeadingMultiplier: 1, SpeedMultiplier: 1},
		Agents: AgentsV1{
			X:     []float64{0.1, 0.2, 0.3},
			Y:     []float64{0.4, 0.5, 0.6},
			HX:    []float64{-1, 0, 1},
			HY:    []float64{0.5, -0.5, 0},
			Speed: []float64{0.01, 0.02, 0.03},
			Dest:  []int{0, 2, 0},
		},
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	path := Path(t.TempDir(), 41)
	if !strings.HasSuffix(path, "41.snap.zst") {
		t.Fatalf("path=%q", path)
	}
	in := sampleSnapshot()
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("roundtrip mismatch:\n in=%+v\nout=%+v", in, out)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h != in.Header {
		t.Fatalf("header=%+v want %+v", h, in.Header)
	}
}

func TestReadSnapshot_RejectsRaggedAgents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	snap := sampleSnapshot()
	snap.Agents.Dest = snap.Agents.Dest[:2]
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected ragged columns error")
	}
}

func TestReadSnapshot_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v2.snap.zst")
	snap := sampleSnapshot()
	snap.Header.Version = 2
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestReadSnapshot_NotCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.snap.zst")
	if err := os.WriteFile(path, []byte("{\"version\":1}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
