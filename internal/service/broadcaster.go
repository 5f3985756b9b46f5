package service

// Event types pushed to progress subscribers
const (
	EventProgressUpdated = "progress_updated"
	EventLevelUp         = "level_up"
)

// Broadcaster pushes events to a participant's live connections (avoids import cycle with ws)
type Broadcaster interface {
	SendToUser(userID string, msgType string, payload interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) SendToUser(string, string, interface{}) {}
