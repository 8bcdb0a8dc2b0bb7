package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "release":
			releaseCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "destination":
			destinationCmd(os.Args[2:])
			return
		case "lockdown":
			lockdownCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

type snapshotSummary struct {
	Path     string          `json:"path"`
	Size     string          `json:"size"`
	Header   snapshot.Header `json:"header"`
	Mode     string          `json:"mode"`
	Seed     uint64          `json:"seed"`
	TickRate int             `json:"tick_rate_hz"`
	Roaming  int             `json:"roaming"`
	Moving   int             `json:"moving"`
	Dests    map[int]int     `json:"destinations,omitempty"`
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (used when -snapshot is empty)")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := resolveSnapshot(*dataDir, *worldID, *snapPath)
	snap, err := snapshot.ReadSnapshot(path)
	exitOn("read snapshot", err)
	sum := summarize(path, snap)
	if fi, err := os.Stat(path); err == nil {
		sum.Size = humanize.Bytes(uint64(fi.Size()))
	}
	printJSON(sum)
}

func summarize(path string, snap snapshot.SnapshotV1) snapshotSummary {
	sum := snapshotSummary{
		Path:     path,
		Header:   snap.Header,
		Mode:     snap.Mode,
		Seed:     snap.Seed,
		TickRate: snap.TickRate,
	}
	for _, d := range snap.Agents.Dest {
		if d == world.Roaming {
			sum.Roaming++
			continue
		}
		sum.Moving++
		if sum.Dests == nil {
			sum.Dests = map[int]int{}
		}
		sum.Dests[d]++
	}
	return sum
}

// releaseCmd returns agents to roaming in a copy of a snapshot.
func releaseCmd(args []string) {
	fs := flag.NewFlagSet("release", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (used when -snapshot is empty)")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	rect := fs.String("rect", "", "position filter: x1,y1:x2,y2 (optional)")
	dest := fs.Int("dest", -1, "only release agents heading to this destination (optional)")
	outPath := fs.String("out", "", "output snapshot path (optional)")
	_ = fs.Parse(args)

	path := resolveSnapshot(*dataDir, *worldID, *snapPath)
	var min, max [2]float64
	hasRect := strings.TrimSpace(*rect) != ""
	if hasRect {
		var err error
		min, max, err = parseRect(*rect)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -rect:", err)
			os.Exit(2)
		}
	}

	snap, err := snapshot.ReadSnapshot(path)
	exitOn("read snapshot", err)

	released := release(&snap, *dest, hasRect, min, max)

	out := strings.TrimSpace(*outPath)
	if out == "" {
		out = strings.TrimSuffix(path, ".snap.zst") + ".released.snap.zst"
	}
	exitOn("write snapshot", snapshot.WriteSnapshot(out, snap))
	fmt.Printf("released=%s tick=%d out=%s\n", humanize.Comma(int64(released)), snap.Header.Tick, out)
}

func release(snap *snapshot.SnapshotV1, dest int, hasRect bool, min, max [2]float64) int {
	n := 0
	a := &snap.Agents
	for i, d := range a.Dest {
		if d == world.Roaming {
			continue
		}
		if dest >= 0 && d != dest {
			continue
		}
		if hasRect && !withinRect(a.X[i], a.Y[i], min, max) {
			continue
		}
		a.Dest[i] = world.Roaming
		n++
	}
	return n
}

func withinRect(x, y float64, min, max [2]float64) bool {
	return x >= min[0] && x <= max[0] && y >= min[1] && y <= max[1]
}

func parseRect(s string) (min, max [2]float64, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return min, max, fmt.Errorf("expected x1,y1:x2,y2")
	}
	a, err := parseVec2(parts[0])
	if err != nil {
		return min, max, err
	}
	b, err := parseVec2(parts[1])
	if err != nil {
		return min, max, err
	}
	for i := 0; i < 2; i++ {
		min[i], max[i] = a[i], b[i]
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}
	return min, max, nil
}

func parseVec2(s string) ([2]float64, error) {
	var v [2]float64
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return v, fmt.Errorf("expected x,y")
	}
	for i := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func resolveSnapshot(dataDir, worldID, path string) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	if strings.TrimSpace(worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world or -snapshot")
		os.Exit(2)
	}
	p := latestSnapshot(filepath.Join(dataDir, "worlds", worldID))
	if p == "" {
		fmt.Fprintln(os.Stderr, "no snapshots found")
		os.Exit(1)
	}
	return p
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
