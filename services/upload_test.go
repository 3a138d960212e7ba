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

func newUploadTestStore(t *testing.T) *InMemorySessionStore {
	t.Helper()
	store := NewInMemorySessionStore(time.Hour, time.Hour, nil)
	t.Cleanup(store.Close)
	return store
}

func TestUploadController_SetMode(t *testing.T) {
	store := newUploadTestStore(t)
	controller := NewUploadController(&MockAnalyzerAPI{}, store, NewDefaultLogger())
	session := NewSession()

	controller.SelectFiles(session, []models.UploadedFile{{Name: "main.py"}})
	controller.SetMode(session, models.UploadModeURL)
	controller.SetURL(session, "https://github.com/acme/demo")

	state := controller.State(session)
	assert.Equal(t, models.UploadModeURL, state.Mode)

	// Switching back restores the prior file selection.
	controller.SetMode(session, models.UploadModeFile)
	state = controller.State(session)
	assert.Equal(t, models.UploadModeFile, state.Mode)
	assert.Len(t, state.SelectedFiles, 1)
	assert.Equal(t, "https://github.com/acme/demo", state.URLText)
}

func TestUploadController_SetMode_UnknownValueIgnored(t *testing.T) {
	store := newUploadTestStore(t)
	controller := NewUploadController(&MockAnalyzerAPI{}, store, NewDefaultLogger())
	session := NewSession()

	controller.SetMode(session, "carrier-pigeon")

	assert.Equal(t, models.UploadModeFile, controller.State(session).Mode)
}

func TestUploadController_Submit_NoFilesSelected(t *testing.T) {
	client := &MockAnalyzerAPI{}
	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()

	err := controller.Submit(context.Background(), session)

	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	assert.Equal(t, "no files selected", controller.State(session).ErrorMessage)

	// Precondition failures never reach the backend.
	client.AssertNotCalled(t, "AnalyzeFiles", mock.Anything, mock.Anything)
}

func TestUploadController_Submit_NoURLProvided(t *testing.T) {
	client := &MockAnalyzerAPI{}
	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()

	controller.SetMode(session, models.UploadModeURL)
	controller.SetURL(session, "   ")

	err := controller.Submit(context.Background(), session)

	require.Error(t, err)
	assert.Equal(t, "no url provided", controller.State(session).ErrorMessage)
	client.AssertNotCalled(t, "AnalyzeGitHub", mock.Anything, mock.Anything)
}

func TestUploadController_Submit_FilesSuccess(t *testing.T) {
	client := &MockAnalyzerAPI{}
	client.On("AnalyzeFiles", mock.Anything, mock.Anything).Return(&models.AnalysisResult{
		Summary:       "A small Flask app",
		FilesAnalyzed: 2,
	}, nil)

	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()
	controller.SelectFiles(session, []models.UploadedFile{
		{Name: "app.py", Content: []byte("print('hi')")},
		{Name: "models.py"},
	})

	err := controller.Submit(context.Background(), session)

	require.NoError(t, err)
	assert.True(t, session.HasAnalysis())

	snap := session.Snapshot()
	assert.Equal(t, "app.py, models.py", snap.RawInput)
	assert.Equal(t, string(models.RouteOverview), snap.SelectedRoute)
	assert.Empty(t, snap.ChatHistory)
	assert.Empty(t, controller.State(session).ErrorMessage)
	client.AssertExpectations(t)
}

func TestUploadController_Submit_URLSuccess(t *testing.T) {
	client := &MockAnalyzerAPI{}
	client.On("AnalyzeGitHub", mock.Anything, "https://github.com/acme/demo").
		Return(&models.AnalysisResult{Summary: "A demo repo"}, nil)

	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()
	controller.SetMode(session, models.UploadModeURL)
	controller.SetURL(session, "https://github.com/acme/demo")

	err := controller.Submit(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/demo", session.Snapshot().RawInput)
	client.AssertExpectations(t)
}

func TestUploadController_Submit_BackendFailure_GenericMessage(t *testing.T) {
	client := &MockAnalyzerAPI{}
	client.On("AnalyzeFiles", mock.Anything, mock.Anything).
		Return(nil, errors.NewNetworkError(errors.ErrCodeNetworkConnection, "connection refused", nil))

	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()
	controller.SelectFiles(session, []models.UploadedFile{{Name: "main.go"}})

	err := controller.Submit(context.Background(), session)

	require.Error(t, err)
	state := controller.State(session)
	assert.False(t, state.Submitting)
	assert.Equal(t, GenericAnalysisFailure, state.ErrorMessage)
	assert.False(t, session.HasAnalysis())
}

func TestUploadController_Submit_BackendFailure_DetailPreserved(t *testing.T) {
	backendErr := errors.NewExternalServiceError(errors.ErrCodeAnalyzerAPIFailed,
		"Analysis backend error", nil)
	backendErr.Details = "Repository is too large to analyze"

	client := &MockAnalyzerAPI{}
	client.On("AnalyzeGitHub", mock.Anything, mock.Anything).Return(nil, backendErr)

	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()
	controller.SetMode(session, models.UploadModeURL)
	controller.SetURL(session, "https://github.com/acme/huge")

	err := controller.Submit(context.Background(), session)

	require.Error(t, err)
	assert.Equal(t, "Repository is too large to analyze", controller.State(session).ErrorMessage)
}

func TestUploadController_Submit_RejectsWhileInFlight(t *testing.T) {
	client := &MockAnalyzerAPI{}
	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()
	controller.SelectFiles(session, []models.UploadedFile{{Name: "main.go"}})

	session.mu.Lock()
	session.Upload.Submitting = true
	session.mu.Unlock()

	err := controller.Submit(context.Background(), session)

	require.Error(t, err)
	client.AssertNotCalled(t, "AnalyzeFiles", mock.Anything, mock.Anything)
}

func TestUploadController_Submit_ReplacesPreviousAnalysis(t *testing.T) {
	client := &MockAnalyzerAPI{}
	client.On("AnalyzeFiles", mock.Anything, mock.Anything).
		Return(&models.AnalysisResult{Summary: "second"}, nil)

	store := newUploadTestStore(t)
	controller := NewUploadController(client, store, NewDefaultLogger())
	session := NewSession()

	// Simulate a prior analysis with accumulated results state.
	session.mu.Lock()
	session.Analysis = &models.AnalysisResult{Summary: "first"}
	session.SelectedRoute = models.RouteBackend
	session.ChatHistory = []models.ChatEntry{{Kind: models.ChatEntryUser, Text: "hi"}}
	session.FlowState = models.FlowDiagramState{DiagramSource: "graph TD"}
	session.mu.Unlock()

	controller.SelectFiles(session, []models.UploadedFile{{Name: "main.go"}})
	err := controller.Submit(context.Background(), session)

	require.NoError(t, err)
	snap := session.Snapshot()
	assert.Equal(t, "second", snap.Analysis.Summary)
	assert.Equal(t, string(models.RouteOverview), snap.SelectedRoute)
	assert.Empty(t, snap.ChatHistory)

	session.mu.Lock()
	assert.Equal(t, models.FlowDiagramState{}, session.FlowState)
	session.mu.Unlock()
}
