package session

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

const DefaultPlayerName = "Guest Player"

// Manager owns the lifecycle of the single active session and the list
// of completed ones. All state lives on the instance; persistence is
// best-effort through the injected store.
type Manager struct {
	mu       sync.Mutex
	store    storage.Store
	bus      *events.Bus
	now      func() time.Time
	sessions []Session
	current  *Session
}

func NewManager(store storage.Store, bus *events.Bus) *Manager {
	m := &Manager{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
	m.load()
	return m
}

// load restores persisted state. Malformed records are ignored and the
// manager starts from empty.
func (m *Manager) load() {
	if data, ok := m.store.Load(storage.KeySessions); ok {
		var sessions []Session
		if err := json.Unmarshal(data, &sessions); err != nil {
			log.Printf("[Session] Ignoring malformed session history: %v\n", err)
		} else {
			m.sessions = sessions
		}
	}
	if data, ok := m.store.Load(storage.KeyCurrentSession); ok {
		var cur Session
		if err := json.Unmarshal(data, &cur); err != nil {
			log.Printf("[Session] Ignoring malformed current session: %v\n", err)
		} else {
			m.current = &cur
		}
	}
}

// Start begins a new session. Any session still active is discarded:
// last start wins.
func (m *Manager) Start(playerName string) Session {
	if playerName == "" {
		playerName = DefaultPlayerName
	}

	m.mu.Lock()
	s := Session{
		ID:         uuid.New().String(),
		PlayerName: playerName,
		StartTime:  m.now().UnixMilli(),
	}
	m.current = &s
	m.persistCurrent()
	m.mu.Unlock()

	m.bus.Publish(events.ReasonSessionStart)
	return s
}

// RecordGamePlayed bumps the play counter for a game kind. No-op when
// no session is active.
func (m *Manager) RecordGamePlayed(kind games.Kind) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current.GamesPlayed.Incr(kind)
	m.persistCurrent()
	m.mu.Unlock()

	m.bus.Publish(events.ReasonGamePlayed)
}

// UpdateScore sets the session's cumulative total. It is a set, not an
// add: callers hand over the already-summed running value. No-op when
// no session is active.
func (m *Manager) UpdateScore(total int) {
	if total < 0 {
		total = 0
	}

	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current.TotalScore = total
	m.persistCurrent()
	m.mu.Unlock()

	m.bus.Publish(events.ReasonScore)
}

// AddScore adds points to the active session's total under the
// manager's lock, so concurrent awards cannot lose an update. The
// stored total is still overwritten as a whole, matching UpdateScore's
// set semantics. Reports the new total, or false when no session is
// active.
func (m *Manager) AddScore(points int) (int, bool) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return 0, false
	}
	total := m.current.TotalScore + points
	if total < 0 {
		total = 0
	}
	m.current.TotalScore = total
	m.persistCurrent()
	m.mu.Unlock()

	m.bus.Publish(events.ReasonScore)
	return total, true
}

// End freezes the active session, appends it to history, and clears the
// current-session slot. Reports false when no session was active.
func (m *Manager) End() (Session, bool) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return Session{}, false
	}

	ended := *m.current
	ended.EndTime = m.now().UnixMilli()
	ended.EngagementTime = int((ended.EndTime - ended.StartTime) / 1000)

	m.sessions = append(m.sessions, ended)
	m.current = nil
	m.persistSessions()
	m.store.Remove(storage.KeyCurrentSession)
	m.mu.Unlock()

	m.bus.Publish(events.ReasonSessionEnd)
	return ended, true
}

// Current returns a copy of the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Sessions returns a copy of the completed-session history.
func (m *Manager) Sessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Clear wipes history and the active session, in memory and in the store.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.sessions = nil
	m.current = nil
	m.store.Remove(storage.KeySessions)
	m.store.Remove(storage.KeyCurrentSession)
	m.mu.Unlock()

	m.bus.Publish(events.ReasonReset)
}

// persistCurrent writes the active session. Callers hold the lock.
// Write failures are logged; in-memory state stays authoritative.
func (m *Manager) persistCurrent() {
	data, err := json.Marshal(m.current)
	if err != nil {
		log.Printf("[Session] Marshal current session: %v\n", err)
		return
	}
	if err := m.store.Save(storage.KeyCurrentSession, data); err != nil {
		log.Printf("[Session] Persist current session: %v\n", err)
	}
}

// persistSessions writes the history list. Callers hold the lock.
func (m *Manager) persistSessions() {
	data, err := json.Marshal(m.sessions)
	if err != nil {
		log.Printf("[Session] Marshal session history: %v\n", err)
		return
	}
	if err := m.store.Save(storage.KeySessions, data); err != nil {
		log.Printf("[Session] Persist session history: %v\n", err)
	}
}

// SetClock overrides the manager's time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
