package ws

const (
	SnapshotMessage          = "snapshot"
	SessionTerminatedMessage = "session_terminated"
)

// Envelope is one frame pushed to a live subscriber. The first frame of a
// subscription has Loading set and no data.
type Envelope struct {
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Data    any    `json:"data,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func NewLoading(topic string) *Envelope {
	return &Envelope{Type: SnapshotMessage, Topic: topic, Loading: true}
}

func NewSnapshot(topic string, data any, err error) *Envelope {
	env := &Envelope{Type: SnapshotMessage, Topic: topic, Data: data}
	if err != nil {
		env.Data = nil
		env.Error = err.Error()
	}
	return env
}

func NewSessionTerminated() *Envelope {
	return &Envelope{Type: SessionTerminatedMessage}
}
