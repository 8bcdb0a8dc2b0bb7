package observerproto

import (
	"encoding/json"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	good, _ := json.Marshal(FrameMsg{
		Type: "FRAME", ProtocolVersion: Version, Tick: 3,
		X: []float64{0.1, 0.2}, Y: []float64{0.3, 0.4},
		Speed: []float64{0.01, 0.02}, HX: []float64{1, 0}, HY: []float64{0, 1},
		Roaming: 1, Contained: 1,
	})
	f, err := DecodeFrame(good)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Tick != 3 || len(f.X) != 2 {
		t.Fatalf("frame=%+v", f)
	}

	bad := map[string]string{
		"wrong type":     `{"type":"TICK","protocol_version":"1.0","tick":0,"x":[],"y":[],"roaming":0,"contained":0}`,
		"negative tick":  `{"type":"FRAME","protocol_version":"1.0","tick":-1,"x":[],"y":[],"roaming":0,"contained":0}`,
		"missing y":      `{"type":"FRAME","protocol_version":"1.0","tick":0,"x":[],"roaming":0,"contained":0}`,
		"ragged columns": `{"type":"FRAME","protocol_version":"1.0","tick":0,"x":[1],"y":[],"roaming":1,"contained":0}`,
		"bad counts":     `{"type":"FRAME","protocol_version":"1.0","tick":0,"x":[1],"y":[1],"roaming":0,"contained":0}`,
		"short speed":    `{"type":"FRAME","protocol_version":"1.0","tick":0,"x":[1],"y":[1],"speed":[],"roaming":1,"contained":0}`,
		"not json":       `{`,
	}
	for name, doc := range bad {
		if _, err := DecodeFrame([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
