package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
	Agents  int    `json:"agents"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed     uint64 `json:"seed"`
	TickRate int    `json:"tick_rate_hz"`

	// RNG is the marshalled PCG state after the snapshot tick.
	RNG []byte `json:"rng"`

	Mode         string       `json:"mode"`
	XBounds      [2]float64   `json:"x_bounds"`
	YBounds      [2]float64   `json:"y_bounds"`
	BoundsMargin float64      `json:"bounds_margin"`
	Region       [][2]float64 `json:"region,omitempty"`
	Walk         WalkV1       `json:"walk"`

	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`
	ObserverEveryTicks int `json:"observer_every_ticks,omitempty"`

	// Lockdown is the flag in force for the tick after the snapshot.
	LockdownCompliance float64 `json:"lockdown_compliance,omitempty"`
	Lockdown           bool    `json:"lockdown,omitempty"`

	Agents AgentsV1 `json:"agents"`
}

type WalkV1 struct {
	Speed               float64 `json:"speed"`
	HeadingUpdateChance float64 `json:"heading_update_chance"`
	SpeedUpdateChance   float64 `json:"speed_update_chance"`
	HeadingMultiplier   float64 `json:"heading_multiplier"`
	SpeedMultiplier     float64 `json:"speed_multiplier"`
}

// AgentsV1 stores the agent table column-wise; all slices share one length.
type AgentsV1 struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	HX    []float64 `json:"hx"`
	HY    []float64 `json:"hy"`
	Speed []float64 `json:"speed"`
	Dest  []int     `json:"dest"`
}

func (a AgentsV1) Len() int { return len(a.X) }

func (a AgentsV1) Validate() error {
	n := len(a.X)
	if len(a.Y) != n || len(a.HX) != n || len(a.HY) != n || len(a.Speed) != n || len(a.Dest) != n {
		return fmt.Errorf("snapshot agents: ragged columns x=%d y=%d hx=%d hy=%d speed=%d dest=%d",
			n, len(a.Y), len(a.HX), len(a.HY), len(a.Speed), len(a.Dest))
	}
	return nil
}

// Path returns the conventional file name for a snapshot of the given tick.
func Path(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.snap.zst", tick))
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the leading JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if err := snap.Agents.Validate(); err != nil {
		return snap, err
	}
	return snap, nil
}
