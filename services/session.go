package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// Session is one visitor's state: the upload flow state before an analysis
// succeeds, and the results flow state after. AnalysisResult is read-only
// once set; chat history and flow state belong exclusively to this session.
type Session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time

	// mu serializes all mutation of the fields below. Controllers in this
	// package take it before touching session state.
	mu sync.Mutex

	Upload models.UploadState

	Analysis      *models.AnalysisResult
	RawInput      string
	InputMode     models.UploadMode
	SelectedRoute models.Route
	ChatHistory   []models.ChatEntry
	FlowState     models.FlowDiagramState

	// flowSeq guards against stale flow-diagram responses: a response is
	// applied only if its sequence still matches.
	flowSeq uint64

	queryInFlight bool
}

// NewSession creates a fresh session in file-upload mode.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		LastSeen:  now,
		Upload: models.UploadState{
			Mode: models.UploadModeFile,
		},
		SelectedRoute: models.RouteOverview,
	}
}

// HasAnalysis reports whether a results view may be shown for this session.
func (s *Session) HasAnalysis() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Analysis != nil
}

// Snapshot captures the persistable part of the session.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionSnapshot{
		ID:            s.ID,
		RawInput:      s.RawInput,
		InputMode:     string(s.InputMode),
		SelectedRoute: string(s.SelectedRoute),
		Analysis:      s.Analysis,
		ChatHistory:   append([]models.ChatEntry(nil), s.ChatHistory...),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     time.Now(),
	}
}

// RestoreFromSnapshot rebuilds a session from a persisted snapshot.
func RestoreFromSnapshot(snap models.SessionSnapshot) *Session {
	session := NewSession()
	session.ID = snap.ID
	session.CreatedAt = snap.CreatedAt
	session.RawInput = snap.RawInput
	session.InputMode = models.UploadMode(snap.InputMode)
	if route, ok := models.ParseRoute(snap.SelectedRoute); ok {
		session.SelectedRoute = route
	}
	session.Analysis = snap.Analysis
	session.ChatHistory = snap.ChatHistory
	return session
}

// SessionStats provides store metrics.
type SessionStats struct {
	Hits      int64     `json:"hits"`
	Misses    int64     `json:"misses"`
	Size      int       `json:"size"`
	Evictions int64     `json:"evictions"`
	StartedAt time.Time `json:"started_at"`
}

// SessionStore owns the live sessions of this process.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// Save is the persistence hook, called after an analysis succeeds and
	// after chat mutations. The in-memory store treats it as a touch.
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	GetStats() SessionStats
	Close()
}

// SessionRepository persists session snapshots. Implemented by the postgres
// layer; the store stays usable without one.
type SessionRepository interface {
	SaveSnapshot(ctx context.Context, snap models.SessionSnapshot) error
	LoadSnapshot(ctx context.Context, id string) (models.SessionSnapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	// PruneBefore removes snapshots not updated since the cutoff, so the
	// repository shrinks on the same cadence as the in-memory janitor.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InMemorySessionStore keeps sessions in a map with TTL-based eviction run
// by a janitor goroutine.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stats    SessionStats
	janitor  *time.Ticker
	stopChan chan struct{}

	// repo, when set, persists analysis snapshots and backfills store
	// misses, so a restart does not lose finished analyses.
	repo SessionRepository
}

// NewInMemorySessionStore creates a session store with TTL cleanup.
func NewInMemorySessionStore(ttl, cleanupInterval time.Duration, repo SessionRepository) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	store := &InMemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stats:    SessionStats{StartedAt: time.Now()},
		janitor:  time.NewTicker(cleanupInterval),
		stopChan: make(chan struct{}),
		repo:     repo,
	}

	go store.cleanup()

	return store
}

// Create registers a fresh session.
func (s *InMemorySessionStore) Create(ctx context.Context) (*Session, error) {
	session := NewSession()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.stats.Size = len(s.sessions)
	s.mu.Unlock()

	return session, nil
}

// Get returns the live session for id, falling back to the repository when
// one is configured.
func (s *InMemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	session, exists := s.sessions[id]
	if exists {
		session.LastSeen = time.Now()
		s.stats.Hits++
		s.mu.Unlock()
		return session, nil
	}
	s.stats.Misses++
	s.mu.Unlock()

	if s.repo != nil {
		snap, err := s.repo.LoadSnapshot(ctx, id)
		if err == nil {
			session := RestoreFromSnapshot(snap)
			s.mu.Lock()
			s.sessions[session.ID] = session
			s.stats.Size = len(s.sessions)
			s.mu.Unlock()
			return session, nil
		}
	}

	return nil, errors.NewNotFoundError(errors.ErrCodeSessionNotFound, "session not found", nil)
}

// Save touches the session and persists its snapshot when a repository is
// configured. Persistence failures are reported but leave the live session
// intact.
func (s *InMemorySessionStore) Save(ctx context.Context, session *Session) error {
	s.mu.Lock()
	session.LastSeen = time.Now()
	s.sessions[session.ID] = session
	s.stats.Size = len(s.sessions)
	s.mu.Unlock()

	if s.repo != nil {
		return s.repo.SaveSnapshot(ctx, session.Snapshot())
	}
	return nil
}

// Delete removes a session from the store and the repository.
func (s *InMemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.stats.Size = len(s.sessions)
	s.mu.Unlock()

	if s.repo != nil {
		return s.repo.DeleteSnapshot(ctx, id)
	}
	return nil
}

// GetStats returns store metrics.
func (s *InMemorySessionStore) GetStats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	stats.Size = len(s.sessions)
	return stats
}

// Close stops the janitor.
func (s *InMemorySessionStore) Close() {
	s.janitor.Stop()
	close(s.stopChan)
}

// cleanup evicts sessions whose TTL expired and prunes the repository on the
// same cadence.
func (s *InMemorySessionStore) cleanup() {
	for {
		select {
		case <-s.janitor.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.LastSeen.Before(cutoff) {
					delete(s.sessions, id)
					s.stats.Evictions++
				}
			}
			s.stats.Size = len(s.sessions)
			s.mu.Unlock()

			if s.repo != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				_, _ = s.repo.PruneBefore(ctx, cutoff)
				cancel()
			}
		case <-s.stopChan:
			return
		}
	}
}
