package observerproto

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed frame.schema.json
var frameSchemaJSON string

var frameSchema = jsonschema.MustCompileString("frame.schema.json", frameSchemaJSON)

// DecodeFrame validates b against the frame schema and decodes it.
// Column lengths must agree with each other.
func DecodeFrame(b []byte) (FrameMsg, error) {
	var f FrameMsg
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return f, err
	}
	if err := frameSchema.Validate(doc); err != nil {
		return f, err
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, err
	}
	n := len(f.X)
	if len(f.Y) != n {
		return f, fmt.Errorf("frame tick %d: x has %d rows, y has %d", f.Tick, n, len(f.Y))
	}
	for name, col := range map[string][]float64{"hx": f.HX, "hy": f.HY, "speed": f.Speed} {
		if col != nil && len(col) != n {
			return f, fmt.Errorf("frame tick %d: %s has %d rows want %d", f.Tick, name, len(col), n)
		}
	}
	if f.Roaming+f.Contained != n {
		return f, fmt.Errorf("frame tick %d: roaming %d + contained %d != %d agents", f.Tick, f.Roaming, f.Contained, n)
	}
	return f, nil
}
