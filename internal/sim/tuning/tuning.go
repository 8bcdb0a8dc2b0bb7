package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	ModeBounds  = "bounds"
	ModePolygon = "polygon"
)

type Tuning struct {
	TickRateHz         int        `yaml:"tick_rate_hz" toml:"tick_rate_hz" json:"tick_rate_hz"`
	PopSize            int        `yaml:"pop_size" toml:"pop_size" json:"pop_size"`
	Mode               string     `yaml:"mode" toml:"mode" json:"mode"`
	XBounds            [2]float64 `yaml:"xbounds" toml:"xbounds" json:"xbounds"`
	YBounds            [2]float64 `yaml:"ybounds" toml:"ybounds" json:"ybounds"`
	BoundsMargin       float64    `yaml:"bounds_margin" toml:"bounds_margin" json:"bounds_margin"`
	SnapshotEveryTicks int        `yaml:"snapshot_every_ticks" toml:"snapshot_every_ticks" json:"snapshot_every_ticks"`
	ObserverEveryTicks int        `yaml:"observer_every_ticks" toml:"observer_every_ticks" json:"observer_every_ticks"`
	LockdownCompliance float64    `yaml:"lockdown_compliance" toml:"lockdown_compliance" json:"lockdown_compliance"`

	Region Region `yaml:"region" toml:"region" json:"region"`
	Walk   Walk   `yaml:"walk" toml:"walk" json:"walk"`
}

// Region selects a polygon from a GeoJSON file and places it on the world plane.
type Region struct {
	File   string     `yaml:"file" toml:"file" json:"file,omitempty"`
	Name   string     `yaml:"name" toml:"name" json:"name,omitempty"`
	Origin [2]float64 `yaml:"origin" toml:"origin" json:"origin"`
	Size   float64    `yaml:"size" toml:"size" json:"size"`
}

type Walk struct {
	Speed               float64 `yaml:"speed" toml:"speed" json:"speed"`
	HeadingUpdateChance float64 `yaml:"heading_update_chance" toml:"heading_update_chance" json:"heading_update_chance"`
	SpeedUpdateChance   float64 `yaml:"speed_update_chance" toml:"speed_update_chance" json:"speed_update_chance"`
	HeadingMultiplier   float64 `yaml:"heading_multiplier" toml:"heading_multiplier" json:"heading_multiplier"`
	SpeedMultiplier     float64 `yaml:"speed_multiplier" toml:"speed_multiplier" json:"speed_multiplier"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:         20,
		PopSize:            2000,
		Mode:               ModeBounds,
		XBounds:            [2]float64{0, 1},
		YBounds:            [2]float64{0, 1},
		BoundsMargin:       0.02,
		SnapshotEveryTicks: 3000,
		ObserverEveryTicks: 1,
		LockdownCompliance: 0.95,
		Region: Region{
			Origin: [2]float64{0, 0},
			Size:   1,
		},
		Walk: Walk{
			Speed:               0.01,
			HeadingUpdateChance: 0.02,
			SpeedUpdateChance:   0.02,
			HeadingMultiplier:   1,
			SpeedMultiplier:     1,
		},
	}
}

// Load reads tuning.yaml (or tuning.toml, by extension) over the defaults
// and validates the result.
func Load(path string) (Tuning, error) {
	t := Defaults()
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := os.Stat(path); err != nil {
			return t, err
		}
		if _, err := toml.DecodeFile(path, &t); err != nil {
			return t, fmt.Errorf("%s: %w", name, err)
		}
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return t, err
		}
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return t, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", name, err)
	}
	// Region files are resolved next to the tuning file.
	if t.Region.File != "" && !filepath.IsAbs(t.Region.File) {
		t.Region.File = filepath.Join(filepath.Dir(path), t.Region.File)
	}
	return t, nil
}

//go:embed tuning.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("tuning.schema.json", schemaJSON)

func (t Tuning) Validate() error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	if t.XBounds[1]-t.XBounds[0] <= 2*t.BoundsMargin {
		return fmt.Errorf("xbounds %v leave no room inside margin %g", t.XBounds, t.BoundsMargin)
	}
	if t.YBounds[1]-t.YBounds[0] <= 2*t.BoundsMargin {
		return fmt.Errorf("ybounds %v leave no room inside margin %g", t.YBounds, t.BoundsMargin)
	}
	return nil
}
