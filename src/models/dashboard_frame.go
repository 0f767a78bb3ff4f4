package models

// Frame types pushed to the rendering collaborator
const (
	FrameReset  = "RESET"
	FrameAppend = "APPEND"
)

// -----------------------------------------------------------------------------
// Dashboard frame: immutable snapshot handed to the renderer after each mutation
// -----------------------------------------------------------------------------

type MDashboardFrame struct {
	Type       string          `json:"type"` // "RESET" or "APPEND"
	Instrument string          `json:"instrument"`
	Generation uint64          `json:"generation"`
	State      string          `json:"state"`
	Filtered   bool            `json:"filtered"`
	Notice     string          `json:"notice,omitempty"`
	Points     []MLabeledPoint `json:"points"`
	Appended   int             `json:"appended"`
	Timestamp  int64           `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MDashboardStatus is the controller state returned by status queries.
type MDashboardStatus struct {
	Instrument  string         `json:"instrument"`
	Instruments []string       `json:"instruments"`
	Generation  uint64         `json:"generation"`
	State       string         `json:"state"`
	Filter      *MDateRange    `json:"filter"`
	InFlight    int            `json:"in_flight"`
	Points      []MSamplePoint `json:"points"`
}

// -----------------------------------------------------------------------------
// DashboardCommand for client messages
// -----------------------------------------------------------------------------

type MDashboardCommand struct {
	Command    string  `json:"command"`
	Instrument string  `json:"instrument,omitempty"`
	Start      *string `json:"start"`
	End        *string `json:"end"`
	Confirm    bool    `json:"confirm"`
}

// MCommandReply answers a socket command: type "ACK" or "ERROR".
type MCommandReply struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
