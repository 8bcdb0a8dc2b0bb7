package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type tickRow struct {
	Tick      uint64 `json:"tick"`
	Digest    string `json:"digest"`
	Roaming   int    `json:"roaming"`
	Reflected int    `json:"reflected"`
	Repelled  int    `json:"repelled"`
	HeadingX  int    `json:"heading_x"`
	HeadingY  int    `json:"heading_y"`
	Speed     int    `json:"speed"`
}

type snapshotRow struct {
	Tick   uint64 `json:"tick"`
	Path   string `json:"path"`
	RunID  string `json:"run_id"`
	Seed   uint64 `json:"seed"`
	Mode   string `json:"mode"`
	Agents int    `json:"agents"`
	Moving int    `json:"moving"`
}

type destinationRow struct {
	Tick  uint64 `json:"tick"`
	Agent int    `json:"agent"`
	Dest  int    `json:"dest"`
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	fromTick := fs.Uint64("from_tick", 0, "first tick (ticks, destinations)")
	agent := fs.Int("agent", -1, "agent filter (destinations)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *limit <= 0 {
		*limit = 20
	}

	var out []any
	switch q {
	case "snapshots":
		rows, err := querySnapshots(db, *limit)
		exitOn("query", err)
		for _, r := range rows {
			out = append(out, r)
		}
	case "ticks":
		rows, err := queryTicks(db, *fromTick, *limit)
		exitOn("query", err)
		for _, r := range rows {
			out = append(out, r)
		}
	case "destinations":
		rows, err := queryDestinations(db, *fromTick, *agent, *limit)
		exitOn("query", err)
		for _, r := range rows {
			out = append(out, r)
		}
	case "meta":
		m, err := queryMeta(db)
		exitOn("query", err)
		out = append(out, m)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-world WORLD|-db PATH] [-from_tick T] [-agent N] snapshots|ticks|destinations|meta")
		os.Exit(2)
	}
	for _, v := range out {
		printJSON(v)
	}
}

func querySnapshots(db *sql.DB, limit int) ([]snapshotRow, error) {
	rows, err := db.Query(`SELECT tick,path,run_id,seed,mode,agents,moving FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []snapshotRow
	for rows.Next() {
		var r snapshotRow
		var tick, seed int64
		if err := rows.Scan(&tick, &r.Path, &r.RunID, &seed, &r.Mode, &r.Agents, &r.Moving); err != nil {
			return nil, err
		}
		r.Tick, r.Seed = uint64(tick), uint64(seed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryTicks(db *sql.DB, fromTick uint64, limit int) ([]tickRow, error) {
	rows, err := db.Query(`SELECT tick,digest,roaming,reflected,repelled,heading_x,heading_y,speed FROM ticks WHERE tick>=? ORDER BY tick LIMIT ?`, int64(fromTick), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tickRow
	for rows.Next() {
		var r tickRow
		var tick int64
		if err := rows.Scan(&tick, &r.Digest, &r.Roaming, &r.Reflected, &r.Repelled, &r.HeadingX, &r.HeadingY, &r.Speed); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryDestinations(db *sql.DB, fromTick uint64, agent, limit int) ([]destinationRow, error) {
	q := `SELECT tick,agent,dest FROM destinations WHERE tick>=? ORDER BY tick,agent LIMIT ?`
	args := []any{int64(fromTick), limit}
	if agent >= 0 {
		q = `SELECT tick,agent,dest FROM destinations WHERE tick>=? AND agent=? ORDER BY tick LIMIT ?`
		args = []any{int64(fromTick), agent, limit}
	}
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []destinationRow
	for rows.Next() {
		var r destinationRow
		var tick int64
		if err := rows.Scan(&tick, &r.Agent, &r.Dest); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryMeta(db *sql.DB) (map[string]any, error) {
	rows, err := db.Query(`SELECT key,value FROM meta ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]any{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		if strings.HasSuffix(k, "_json") {
			out[k] = json.RawMessage(v)
			continue
		}
		out[k] = v
	}
	return out, rows.Err()
}

func exitOn(what string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
