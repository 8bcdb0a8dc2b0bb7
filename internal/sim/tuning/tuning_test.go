package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ShippedYAML(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tune.Mode != ModeBounds || tune.PopSize != 2000 {
		t.Fatalf("mode=%s pop=%d", tune.Mode, tune.PopSize)
	}
	if tune.Walk.Speed != 0.01 || tune.BoundsMargin != 0.02 {
		t.Fatalf("walk=%+v margin=%v", tune.Walk, tune.BoundsMargin)
	}
	if !filepath.IsAbs(tune.Region.File) && !strings.HasPrefix(tune.Region.File, "../../../configs") {
		t.Fatalf("region file not resolved against config dir: %s", tune.Region.File)
	}
}

func TestLoad_ShippedTOML(t *testing.T) {
	tune, err := Load("../../../configs/tuning.polygon.toml")
	if err != nil {
		t.Fatalf("load tuning.polygon.toml: %v", err)
	}
	if tune.Mode != ModePolygon || tune.PopSize != 500 {
		t.Fatalf("mode=%s pop=%d", tune.Mode, tune.PopSize)
	}
	if tune.Region.Name != "peninsula" || tune.Region.Size != 1 {
		t.Fatalf("region=%+v", tune.Region)
	}
	if tune.XBounds != [2]float64{0, 1} {
		t.Fatalf("xbounds=%v", tune.XBounds)
	}
	if tune.LockdownCompliance != 0.95 {
		t.Fatalf("lockdown_compliance=%v", tune.LockdownCompliance)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("pop_size: 10\nwalk:\n  speed: 0.02\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.PopSize != 10 || tune.Walk.Speed != 0.02 {
		t.Fatalf("overrides not applied: %+v", tune)
	}
	if tune.Walk.HeadingUpdateChance != 0.02 || tune.TickRateHz != 20 {
		t.Fatalf("defaults lost: %+v", tune)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"probability":     "walk:\n  heading_update_chance: 1.5\n",
		"mode":            "mode: torus\n",
		"pop":             "pop_size: 0\n",
		"polygon region":  "mode: polygon\n",
		"margin too wide": "xbounds: [0, 0.03]\n",
		"compliance":      "lockdown_compliance: 2\n",
	}
	for name, body := range cases {
		p := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("err=%v want not-exist", err)
	}
	_, err = Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !os.IsNotExist(err) {
		t.Fatalf("toml err=%v want not-exist", err)
	}
}
