package events

// StatsChangeEvent signals that aggregate statistics may have changed.
type StatsChangeEvent struct {
	Reason string
}

const (
	ReasonSessionStart = "session_start"
	ReasonGamePlayed   = "game_played"
	ReasonScore        = "score"
	ReasonSessionEnd   = "session_end"
	ReasonFeedback     = "feedback"
	ReasonReset        = "reset"
)

type Bus struct {
	StatsChanges chan StatsChangeEvent
}

func NewBus() *Bus {
	return &Bus{
		StatsChanges: make(chan StatsChangeEvent, 10),
	}
}

// Publish is non-blocking: when nothing is draining the channel
// (e.g. no dashboard connected) events are dropped.
func (b *Bus) Publish(reason string) {
	if b == nil {
		return
	}
	select {
	case b.StatsChanges <- StatsChangeEvent{Reason: reason}:
	default:
	}
}
