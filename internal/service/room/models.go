package room

const (
	MessageTypeConnected    = "connected"
	MessageTypeUserList     = "user-list"
	MessageTypePlay         = "play"
	MessageTypePause        = "pause"
	MessageTypeSync         = "sync"
	MessageTypeLatencyProbe = "latency-probe"
)

// Message is an outbound server message.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type SyncPayload struct {
	Time float64 `json:"time"`
}

type LatencyProbePayload struct {
	Seq int64 `json:"seq"`
}
