package observerproto

// Version is the observer protocol version.
const Version = "1.0"

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// EveryTicks thins the frame stream; 0 keeps the world default.
	EveryTicks int `json:"every_ticks,omitempty"`
	// Headings asks for heading and speed columns in each frame.
	Headings bool `json:"headings,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	RunID           string      `json:"run_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz   int          `json:"tick_rate_hz"`
	Seed         uint64       `json:"seed"`
	Agents       int          `json:"agents"`
	Mode         string       `json:"mode"`
	XBounds      [2]float64   `json:"x_bounds"`
	YBounds      [2]float64   `json:"y_bounds"`
	BoundsMargin float64      `json:"bounds_margin"`
	Region       [][2]float64 `json:"region,omitempty"`
}

// Server -> Client. Sent every EveryTicks ticks.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	X []float64 `json:"x"`
	Y []float64 `json:"y"`

	HX    []float64 `json:"hx,omitempty"`
	HY    []float64 `json:"hy,omitempty"`
	Speed []float64 `json:"speed,omitempty"`

	// Roaming counts agents without a destination.
	Roaming   int `json:"roaming"`
	Contained int `json:"contained"`
}
