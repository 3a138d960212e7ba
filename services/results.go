package services

import (
	"context"
	"strings"
	"time"

	"project-analyzer-web/clients"
	"project-analyzer-web/config"
	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// Fixed user-facing strings of the results flow.
const (
	FlowDiagramFailure = "Failed to generate project flow diagram."
	QueryFailure       = "Sorry, something went wrong while answering your question. Please try again."
)

// ResultsController owns the results-view state machine: route selection
// with its short-circuit and fetch rules, the flow-diagram fetch, the chat
// history and query dispatch. It never mutates the AnalysisResult.
type ResultsController struct {
	client   clients.AnalyzerAPI
	store    SessionStore
	diagram  *DiagramAdapter
	features config.FeaturesConfig
	logger   Logger
}

// NewResultsController creates a results controller with its injected
// capabilities.
func NewResultsController(client clients.AnalyzerAPI, store SessionStore, diagram *DiagramAdapter, features config.FeaturesConfig, logger Logger) *ResultsController {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if diagram == nil {
		diagram = NewDiagramAdapter(nil, logger)
	}
	return &ResultsController{
		client:   client,
		store:    store,
		diagram:  diagram,
		features: features,
		logger:   logger,
	}
}

// SelectRoute performs the "select route R" transition. Callers must have
// verified the session holds an AnalysisResult; without one the results view
// redirects to the upload screen instead of getting here.
func (c *ResultsController) SelectRoute(ctx context.Context, session *Session, route models.Route) error {
	session.mu.Lock()

	if session.Analysis == nil {
		session.mu.Unlock()
		return errors.NewNotFoundError(errors.ErrCodeSessionNotFound,
			"no analysis available for this session", nil)
	}

	session.SelectedRoute = route
	session.FlowState.Error = ""

	hasDetailed := len(session.Analysis.DetailedAnalysis) > 0

	// With full detail supplied up front, per-route re-fetching is skipped.
	// The flow route is exempt when configured: diagrams are never part of
	// the initial payload.
	if hasDetailed && route != models.RouteFlow {
		session.mu.Unlock()
		return nil
	}
	if route == models.RouteFlow && hasDetailed && !c.features.AlwaysFetchFlow {
		session.mu.Unlock()
		return nil
	}

	if route == models.RouteFlow {
		c.startFlowFetch(session)
		session.mu.Unlock()
		return nil
	}
	session.mu.Unlock()

	return c.fetchRouteInfo(ctx, session, route)
}

// startFlowFetch begins an asynchronous flow-diagram fetch. Caller holds the
// session lock. The response is applied only if no newer fetch superseded it.
func (c *ResultsController) startFlowFetch(session *Session) {
	session.FlowState = models.FlowDiagramState{Loading: true}
	session.flowSeq++
	seq := session.flowSeq
	payload := c.contextPayload(session.Analysis)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.clientTimeout())
		defer cancel()

		response, err := c.client.GetFlowDiagram(ctx, models.RouteFlow, payload)

		session.mu.Lock()
		if session.flowSeq != seq {
			// A newer fetch or a new analysis owns the flow state now.
			session.mu.Unlock()
			return
		}
		if err != nil {
			session.FlowState = models.FlowDiagramState{Error: FlowDiagramFailure}
			session.mu.Unlock()
			c.logger.Warn("flow diagram fetch failed",
				String("session_id", session.ID),
				String("error", err.Error()))
			return
		}
		session.FlowState = models.FlowDiagramState{
			DiagramSource: response.Mermaid,
			Nodes:         response.Nodes,
			Edges:         response.Edges,
			Rendered:      c.diagram.RenderDiagram(response.Mermaid),
		}
		session.mu.Unlock()
	}()
}

// fetchRouteInfo requests backend content for a route and appends it to the
// chat history. Failures leave the history unchanged; only the flow path
// surfaces a visible error.
func (c *ResultsController) fetchRouteInfo(ctx context.Context, session *Session, route models.Route) error {
	session.mu.Lock()
	payload := c.contextPayload(session.Analysis)
	session.mu.Unlock()

	content, err := c.client.GetRouteInfo(ctx, route, payload)
	if err != nil {
		c.logger.Warn("route info fetch failed",
			String("session_id", session.ID),
			String("route", string(route)),
			String("error", err.Error()))
		return nil
	}

	session.mu.Lock()
	session.ChatHistory = append(session.ChatHistory, models.ChatEntry{
		Kind:    models.ChatEntryRoute,
		RouteID: route,
		HTML:    sanitizeBackendHTML(content),
	})
	session.mu.Unlock()

	if saveErr := c.store.Save(ctx, session); saveErr != nil {
		c.logger.Warn("failed to persist session after route fetch",
			String("session_id", session.ID),
			String("error", saveErr.Error()))
	}
	return nil
}

// SubmitQuery appends the user's question optimistically, dispatches it, and
// appends exactly one ai or error entry. A query while another is in flight
// is rejected; the input control is disabled during flight.
func (c *ResultsController) SubmitQuery(ctx context.Context, session *Session, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.NewValidationError(errors.ErrCodeMissingField, "query must not be empty", nil)
	}

	session.mu.Lock()
	if session.Analysis == nil {
		session.mu.Unlock()
		return errors.NewNotFoundError(errors.ErrCodeSessionNotFound,
			"no analysis available for this session", nil)
	}
	if session.queryInFlight {
		session.mu.Unlock()
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			"a query is already in flight", nil)
	}
	session.queryInFlight = true
	session.ChatHistory = append(session.ChatHistory, models.ChatEntry{
		Kind: models.ChatEntryUser,
		Text: query,
	})
	payload := c.contextPayload(session.Analysis)
	route := session.SelectedRoute
	session.mu.Unlock()

	response, err := c.client.Query(ctx, query, payload, route)

	session.mu.Lock()
	session.queryInFlight = false
	if err != nil {
		session.ChatHistory = append(session.ChatHistory, models.ChatEntry{
			Kind: models.ChatEntryError,
			Text: QueryFailure,
		})
	} else {
		session.ChatHistory = append(session.ChatHistory, models.ChatEntry{
			Kind: models.ChatEntryAI,
			Text: response,
		})
	}
	session.mu.Unlock()

	if err != nil {
		c.logger.Warn("query failed",
			String("session_id", session.ID),
			String("error", err.Error()))
	}

	if saveErr := c.store.Save(ctx, session); saveErr != nil {
		c.logger.Warn("failed to persist session after query",
			String("session_id", session.ID),
			String("error", saveErr.Error()))
	}
	return nil
}

// QueryInFlight reports whether the query input should be disabled.
func (c *ResultsController) QueryInFlight(session *Session) bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.queryInFlight
}

// FlowState returns a copy of the current flow-diagram fetch state.
func (c *ResultsController) FlowState(session *Session) models.FlowDiagramState {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.FlowState
}

// contextPayload selects what is sent as the project context of route-info,
// flow-diagram and query requests. Caller holds the session lock or owns the
// analysis reference; the result is read-only data.
func (c *ResultsController) contextPayload(analysis *models.AnalysisResult) interface{} {
	if analysis == nil {
		return nil
	}
	if c.features.RouteInfoPayloadShape == config.PayloadShapeFull {
		return analysis
	}
	return analysis.Context
}

func (c *ResultsController) clientTimeout() time.Duration {
	return defaultFlowFetchTimeout
}

// defaultFlowFetchTimeout bounds the background diagram fetch, which is not
// tied to any request context.
const defaultFlowFetchTimeout = 90 * time.Second
