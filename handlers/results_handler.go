package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"project-analyzer-web/models"
	"project-analyzer-web/services"
)

// ResultsHandler serves the results screen: route tabs, the chat panel and
// the flow-diagram poll endpoint.
type ResultsHandler struct {
	controller *services.ResultsController
	sessions   *sessionResolver
	logger     services.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(controller *services.ResultsController, store services.SessionStore, cookieName string, logger services.Logger) *ResultsHandler {
	return &ResultsHandler{
		controller: controller,
		sessions:   &sessionResolver{store: store, cookieName: cookieName},
		logger:     logger,
	}
}

// ShowResults handles GET /results/{session}
func (h *ResultsHandler) ShowResults(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolveResultsSession(w, r)
	if !ok {
		return
	}

	h.renderResultsPage(w, session)
}

// SelectRoute handles POST /results/{session}/route
func (h *ResultsHandler) SelectRoute(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolveResultsSession(w, r)
	if !ok {
		return
	}

	route, _ := models.ParseRoute(r.FormValue("route"))
	if err := h.controller.SelectRoute(r.Context(), session, route); err != nil {
		h.logger.Warn("route selection failed",
			services.String("session_id", session.ID),
			services.String("route", string(route)),
			services.String("error", err.Error()))
	}

	http.Redirect(w, r, "/results/"+session.ID, http.StatusSeeOther)
}

// SubmitQuery handles POST /results/{session}/query
func (h *ResultsHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolveResultsSession(w, r)
	if !ok {
		return
	}

	if err := h.controller.SubmitQuery(r.Context(), session, r.FormValue("query")); err != nil {
		h.logger.Warn("query submission failed",
			services.String("session_id", session.ID),
			services.String("error", err.Error()))
	}

	http.Redirect(w, r, "/results/"+session.ID, http.StatusSeeOther)
}

// FlowStatus handles GET /results/{session}/flow, polled by the results
// page while the diagram is loading.
func (h *ResultsHandler) FlowStatus(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.lookup(r, mux.Vars(r)["session"])
	if err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, h.controller.FlowState(session))
}

// resolveResultsSession loads the addressed session; a missing session or
// one with no analysis sends the visitor back to the upload screen.
func (h *ResultsHandler) resolveResultsSession(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, err := h.sessions.lookup(r, mux.Vars(r)["session"])
	if err != nil || !session.HasAnalysis() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return session, true
}

func (h *ResultsHandler) renderResultsPage(w http.ResponseWriter, session *services.Session) {
	content := h.controller.RenderActiveRoute(session)
	flow := h.controller.FlowState(session)

	snap := session.Snapshot()
	data := resultsPageData{
		SessionID:     snap.ID,
		RawInput:      snap.RawInput,
		Routes:        models.Routes,
		ActiveRoute:   models.Route(snap.SelectedRoute),
		Content:       content,
		History:       snap.ChatHistory,
		QueryDisabled: h.controller.QueryInFlight(session),
		FlowLoading:   models.Route(snap.SelectedRoute) == models.RouteFlow && flow.Loading,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := pageTemplates.ExecuteTemplate(w, "results_page", data); err != nil {
		h.logger.Error("failed to render results page", err)
	}
}
