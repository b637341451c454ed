package feedback

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"starplay/internal/events"
	"starplay/internal/games"
	"starplay/internal/storage"
)

const DefaultPlayerName = "Anonymous"

// Feedback is an immutable user-submitted testimonial, independent of
// sessions. Rating is stored as given; the 1-5 contract is the
// submitting UI's responsibility.
type Feedback struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	Timestamp  int64  `json:"timestamp"`
	GameType   string `json:"gameType,omitempty"`
}

// Ledger is the append-only feedback collection. Entries are never
// edited or removed, short of a full clear.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Store
	bus     *events.Bus
	now     func() time.Time
	entries []Feedback
}

func NewLedger(store storage.Store, bus *events.Bus) *Ledger {
	l := &Ledger{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
	if data, ok := store.Load(storage.KeyFeedback); ok {
		var entries []Feedback
		if err := json.Unmarshal(data, &entries); err != nil {
			log.Printf("[Feedback] Ignoring malformed feedback ledger: %v\n", err)
		} else {
			l.entries = entries
		}
	}
	return l
}

// Submit appends a new entry and persists the full ledger.
func (l *Ledger) Submit(rating int, comment, playerName string, gameKind games.Kind) Feedback {
	if playerName == "" {
		playerName = DefaultPlayerName
	}

	l.mu.Lock()
	entry := Feedback{
		ID:         uuid.New().String(),
		PlayerName: playerName,
		Rating:     rating,
		Comment:    comment,
		Timestamp:  l.now().UnixMilli(),
		GameType:   string(gameKind),
	}
	l.entries = append(l.entries, entry)
	l.persist()
	l.mu.Unlock()

	l.bus.Publish(events.ReasonFeedback)
	return entry
}

// List returns a copy of all entries in submission order.
func (l *Ledger) List() []Feedback {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Feedback, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear wipes the ledger, in memory and in the store.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.store.Remove(storage.KeyFeedback)
	l.mu.Unlock()

	l.bus.Publish(events.ReasonReset)
}

// persist writes the full ledger. Callers hold the lock. Failures are
// logged; in-memory state stays authoritative.
func (l *Ledger) persist() {
	data, err := json.Marshal(l.entries)
	if err != nil {
		log.Printf("[Feedback] Marshal ledger: %v\n", err)
		return
	}
	if err := l.store.Save(storage.KeyFeedback, data); err != nil {
		log.Printf("[Feedback] Persist ledger: %v\n", err)
	}
}

// SetClock overrides the ledger's time source. Test hook.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
