package ws

import "context"

// Tables a Change may refer to.
const (
	TableSongRequests  = "song_requests"
	TableNotifications = "notifications"
	TableParticipants  = "students"
	// TableSessions carries session revocations. ID is the account uid,
	// Session a single session id.
	TableSessions      = "sessions"
)

// Change tells subscribers that rows of Table were written.
type Change struct {
	Table   string `json:"table"`
	ID      string `json:"id,omitempty"`
	Session string `json:"session,omitempty"`
}

type ChangeFeed interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe returns a channel that is closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Notifier is the write side of the hub used by the application layer.
type Notifier interface {
	Notify(ctx context.Context, table, id string)
	TerminateUser(ctx context.Context, uid string)
	TerminateSession(ctx context.Context, sessionID string)
}

var _ Notifier = (*Hub)(nil)
