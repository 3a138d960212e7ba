package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// MockSessionRepository for testing persistence hooks.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) SaveSnapshot(ctx context.Context, snap models.SessionSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSessionRepository) LoadSnapshot(ctx context.Context, id string) (models.SessionSnapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.SessionSnapshot), args.Error(1)
}

func (m *MockSessionRepository) DeleteSnapshot(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewSession_Defaults(t *testing.T) {
	session := NewSession()

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.UploadModeFile, session.Upload.Mode)
	assert.Equal(t, models.RouteOverview, session.SelectedRoute)
	assert.False(t, session.HasAnalysis())
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	session := NewSession()
	session.Analysis = &models.AnalysisResult{Summary: "demo"}
	session.RawInput = "app.py, models.py"
	session.InputMode = models.UploadModeFile
	session.SelectedRoute = models.RouteBackend
	session.ChatHistory = []models.ChatEntry{
		{Kind: models.ChatEntryUser, Text: "hi"},
		{Kind: models.ChatEntryAI, Text: "hello"},
	}

	restored := RestoreFromSnapshot(session.Snapshot())

	assert.Equal(t, session.ID, restored.ID)
	assert.Equal(t, "app.py, models.py", restored.RawInput)
	assert.Equal(t, models.RouteBackend, restored.SelectedRoute)
	require.NotNil(t, restored.Analysis)
	assert.Equal(t, "demo", restored.Analysis.Summary)
	assert.Len(t, restored.ChatHistory, 2)
}

func TestRestoreFromSnapshot_UnknownRouteFallsBackToOverview(t *testing.T) {
	restored := RestoreFromSnapshot(models.SessionSnapshot{
		ID:            "abc",
		SelectedRoute: "not-a-route",
	})

	assert.Equal(t, models.RouteOverview, restored.SelectedRoute)
}

func TestInMemorySessionStore_CreateAndGet(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Hour, nil)
	defer store.Close()

	session, err := store.Create(context.Background())
	require.NoError(t, err)

	got, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	stats := store.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestInMemorySessionStore_GetUnknown(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Hour, nil)
	defer store.Close()

	_, err := store.Get(context.Background(), "missing")

	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSessionNotFound, appErr.Code)
	assert.Equal(t, int64(1), store.GetStats().Misses)
}

func TestInMemorySessionStore_Delete(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Hour, nil)
	defer store.Close()

	session, err := store.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), session.ID))
	_, err = store.Get(context.Background(), session.ID)
	assert.Error(t, err)
}

func TestInMemorySessionStore_TTLEviction(t *testing.T) {
	store := NewInMemorySessionStore(20*time.Millisecond, 10*time.Millisecond, nil)
	defer store.Close()

	session, err := store.Create(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), session.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, store.GetStats().Evictions, int64(1))
}

func TestInMemorySessionStore_JanitorPrunesRepository(t *testing.T) {
	pruned := make(chan time.Time, 1)
	repo := &MockSessionRepository{}
	repo.On("PruneBefore", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		select {
		case pruned <- args.Get(1).(time.Time):
		default:
		}
	}).Return(int64(0), nil)

	store := NewInMemorySessionStore(20*time.Millisecond, 10*time.Millisecond, repo)
	defer store.Close()

	select {
	case cutoff := <-pruned:
		assert.True(t, cutoff.Before(time.Now()))
	case <-time.After(time.Second):
		t.Fatal("repository was not pruned on the janitor cadence")
	}
}

func TestInMemorySessionStore_SavePersistsSnapshot(t *testing.T) {
	repo := &MockSessionRepository{}
	repo.On("SaveSnapshot", mock.Anything, mock.Anything).Return(nil)

	store := NewInMemorySessionStore(time.Hour, time.Hour, repo)
	defer store.Close()

	session, err := store.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), session))

	repo.AssertCalled(t, "SaveSnapshot", mock.Anything, mock.MatchedBy(func(snap models.SessionSnapshot) bool {
		return snap.ID == session.ID
	}))
}

func TestInMemorySessionStore_GetFallsBackToRepository(t *testing.T) {
	repo := &MockSessionRepository{}
	repo.On("LoadSnapshot", mock.Anything, "persisted").Return(models.SessionSnapshot{
		ID:       "persisted",
		Analysis: &models.AnalysisResult{Summary: "restored"},
	}, nil)

	store := NewInMemorySessionStore(time.Hour, time.Hour, repo)
	defer store.Close()

	session, err := store.Get(context.Background(), "persisted")

	require.NoError(t, err)
	assert.Equal(t, "persisted", session.ID)
	assert.True(t, session.HasAnalysis())
	repo.AssertExpectations(t)

	// The restored session is now live; no second repository read.
	_, err = store.Get(context.Background(), "persisted")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "LoadSnapshot", 1)
}
