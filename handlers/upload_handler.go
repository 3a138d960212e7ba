package handlers

import (
	"io"
	"net/http"

	"project-analyzer-web/errors"
	"project-analyzer-web/models"
	"project-analyzer-web/services"
)

// maxUploadBytes bounds one multipart submission.
const maxUploadBytes = 64 << 20

// UploadHandler serves the upload screen and the two analyze submissions.
type UploadHandler struct {
	controller *services.UploadController
	sessions   *sessionResolver
	logger     services.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(controller *services.UploadController, store services.SessionStore, cookieName string, logger services.Logger) *UploadHandler {
	return &UploadHandler{
		controller: controller,
		sessions:   &sessionResolver{store: store, cookieName: cookieName},
		logger:     logger,
	}
}

// ShowUploadPage handles GET /
func (h *UploadHandler) ShowUploadPage(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.resolve(w, r)
	if err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	h.renderUploadPage(w, session, http.StatusOK)
}

// SetMode handles POST /upload/mode, the tab switch between the two input
// flows. The inactive flow's data survives the switch.
func (h *UploadHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.resolve(w, r)
	if err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	h.controller.SetMode(session, models.UploadMode(r.FormValue("mode")))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AnalyzeFiles handles POST /analyze/files
func (h *UploadHandler) AnalyzeFiles(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.resolve(w, r)
	if err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.controller.SetMode(session, models.UploadModeFile)
		h.controller.SelectFiles(session, nil)
	} else {
		files, readErr := readMultipartFiles(r)
		if readErr != nil {
			writeAppErrorResponse(w, readErr)
			return
		}
		h.controller.SetMode(session, models.UploadModeFile)
		h.controller.SelectFiles(session, files)
	}

	h.submit(w, r, session)
}

// AnalyzeGitHub handles POST /analyze/github
func (h *UploadHandler) AnalyzeGitHub(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.resolve(w, r)
	if err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	h.controller.SetMode(session, models.UploadModeURL)
	h.controller.SetURL(session, r.FormValue("github_url"))

	h.submit(w, r, session)
}

// submit runs the upload controller and routes the outcome: success moves to
// the results screen, failure re-renders the upload screen with its inline
// message.
func (h *UploadHandler) submit(w http.ResponseWriter, r *http.Request, session *services.Session) {
	if err := h.controller.Submit(r.Context(), session); err != nil {
		status := http.StatusBadGateway
		if appErr, ok := errors.AsAppError(err); ok && appErr.Type == errors.ErrTypeValidation {
			status = http.StatusBadRequest
		}
		h.renderUploadPage(w, session, status)
		return
	}

	http.Redirect(w, r, "/results/"+session.ID, http.StatusSeeOther)
}

func (h *UploadHandler) renderUploadPage(w http.ResponseWriter, session *services.Session, status int) {
	state := h.controller.State(session)
	data := uploadPageData{
		Mode:         state.Mode,
		URLText:      state.URLText,
		FileCount:    len(state.SelectedFiles),
		Submitting:   state.Submitting,
		ErrorMessage: state.ErrorMessage,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, "upload_page", data); err != nil {
		h.logger.Error("failed to render upload page", err)
	}
}

// readMultipartFiles collects the repeated "files" field.
func readMultipartFiles(r *http.Request) ([]models.UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var files []models.UploadedFile
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeProcessingError,
				"Failed to open uploaded file", err)
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeProcessingError,
				"Failed to read uploaded file", err)
		}
		files = append(files, models.UploadedFile{Name: header.Filename, Content: content})
	}
	return files, nil
}
