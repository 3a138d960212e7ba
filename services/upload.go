package services

import (
	"context"
	"strings"

	"project-analyzer-web/clients"
	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// GenericAnalysisFailure is shown when the backend gives no usable detail.
const GenericAnalysisFailure = "Failed to analyze project. Please try again."

// UploadController drives the two competing input flows: file selection and
// repository URL. It validates preconditions locally, submits once to the
// backend and hands a successful AnalysisResult to the results flow by
// populating the session.
type UploadController struct {
	client clients.AnalyzerAPI
	store  SessionStore
	logger Logger
}

// NewUploadController creates an upload controller with its injected
// backend-client capability.
func NewUploadController(client clients.AnalyzerAPI, store SessionStore, logger Logger) *UploadController {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &UploadController{client: client, store: store, logger: logger}
}

// SetMode switches the active input mode. The inactive mode's data is kept
// so switching back restores the prior selection.
func (c *UploadController) SetMode(session *Session, mode models.UploadMode) {
	session.mu.Lock()
	defer session.mu.Unlock()

	switch mode {
	case models.UploadModeFile, models.UploadModeURL:
		session.Upload.Mode = mode
	}
}

// SelectFiles replaces the file selection.
func (c *UploadController) SelectFiles(session *Session, files []models.UploadedFile) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.Upload.SelectedFiles = files
}

// State returns a copy of the session's upload state.
func (c *UploadController) State(session *Session) models.UploadState {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.Upload
}

// SetURL replaces the repository URL text.
func (c *UploadController) SetURL(session *Session, urlText string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.Upload.URLText = urlText
}

// Submit validates the active mode's precondition and, if it passes, issues
// exactly one analyze request. A submit while another is in flight is
// rejected without touching the network. On failure the session keeps its
// current view and carries an inline error message; on success the session
// becomes a fresh results session.
func (c *UploadController) Submit(ctx context.Context, session *Session) error {
	session.mu.Lock()

	if session.Upload.Submitting {
		session.mu.Unlock()
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			"analysis already in progress", nil)
	}

	mode := session.Upload.Mode
	files := session.Upload.SelectedFiles
	urlText := strings.TrimSpace(session.Upload.URLText)

	// Preconditions fail before any network call.
	switch mode {
	case models.UploadModeFile:
		if len(files) == 0 {
			session.Upload.ErrorMessage = "no files selected"
			session.mu.Unlock()
			return errors.NewValidationError(errors.ErrCodeNoFiles, "no files selected", nil)
		}
	case models.UploadModeURL:
		if urlText == "" {
			session.Upload.ErrorMessage = "no url provided"
			session.mu.Unlock()
			return errors.NewValidationError(errors.ErrCodeNoURL, "no url provided", nil)
		}
	}

	session.Upload.Submitting = true
	session.Upload.ErrorMessage = ""
	session.mu.Unlock()

	var (
		result   *models.AnalysisResult
		rawInput string
		err      error
	)
	if mode == models.UploadModeFile {
		rawInput = fileNamesOf(files)
		result, err = c.client.AnalyzeFiles(ctx, files)
	} else {
		rawInput = urlText
		result, err = c.client.AnalyzeGitHub(ctx, urlText)
	}

	session.mu.Lock()
	session.Upload.Submitting = false

	if err != nil {
		session.Upload.ErrorMessage = errors.UserMessage(err, GenericAnalysisFailure)
		session.mu.Unlock()
		c.logger.Error("analysis submission failed", err,
			String("session_id", session.ID),
			String("mode", string(mode)))
		return err
	}

	// New analysis: replace the result wholesale and reset the results
	// flow state that belongs to the previous analysis.
	session.Analysis = result
	session.RawInput = rawInput
	session.InputMode = mode
	session.SelectedRoute = models.RouteOverview
	session.ChatHistory = nil
	session.FlowState = models.FlowDiagramState{}
	session.flowSeq++
	session.mu.Unlock()

	if saveErr := c.store.Save(ctx, session); saveErr != nil {
		c.logger.Warn("failed to persist session after analysis",
			String("session_id", session.ID),
			String("error", saveErr.Error()))
	}

	c.logger.Info("analysis completed",
		String("session_id", session.ID),
		String("mode", string(mode)),
		Int("files_analyzed", result.FilesAnalyzed))

	return nil
}

func fileNamesOf(files []models.UploadedFile) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}
