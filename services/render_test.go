package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-analyzer-web/models"
)

func renderTestController(t *testing.T) *ResultsController {
	t.Helper()
	store := NewInMemorySessionStore(time.Hour, time.Hour, nil)
	t.Cleanup(store.Close)
	return NewResultsController(&MockAnalyzerAPI{}, store, nil, defaultFeatures(), NewDefaultLogger())
}

func mustRaw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestRenderActiveRoute_NoAnalysis(t *testing.T) {
	controller := renderTestController(t)
	session := NewSession()

	out := controller.RenderActiveRoute(session)

	assert.Contains(t, string(out), "Analysis in progress")
}

func TestRenderActiveRoute_AllRoutesRenderWithEmptyAnalysis(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{})

	for _, route := range models.Routes {
		t.Run(string(route), func(t *testing.T) {
			session.mu.Lock()
			session.SelectedRoute = route
			session.mu.Unlock()

			out := controller.RenderActiveRoute(session)
			assert.NotEmpty(t, string(out))
		})
	}
}

func TestRenderActiveRoute_DetailedOverview(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		DetailedAnalysis: models.DetailedAnalysis{
			"overview": mustRaw(t, models.OverviewAnalysis{
				ProjectType: "Full-stack web application",
				ComplexityIndicators: models.ComplexityIndicators{
					ComplexityLevel: "medium",
					TotalLines:      4200,
				},
				KeyFiles: []models.KeyFile{{Name: "app.py", Lines: 310}},
			}),
		},
	})

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "Full-stack web application")
	assert.Contains(t, out, "medium")
	assert.Contains(t, out, "app.py")
	assert.Contains(t, out, "Core project file")
}

func TestRenderActiveRoute_DetailedFrontendUsesHeuristics(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		DetailedAnalysis: models.DetailedAnalysis{
			"frontend": mustRaw(t, models.FrontendAnalysis{
				Components: []models.ComponentInfo{
					{Name: "AppHeader.js"},
					{Name: "LoginForm.tsx"},
				},
			}),
		},
	})
	session.SelectedRoute = models.RouteFrontend

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "Main application component")
	assert.Contains(t, out, "Form input and validation")
}

func TestRenderActiveRoute_DetailedBackendUsesHeuristics(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		DetailedAnalysis: models.DetailedAnalysis{
			"backend": mustRaw(t, models.BackendAnalysis{
				APIFiles: []models.APIFile{{
					File: "auth.py",
					Endpoints: []models.Endpoint{
						{Method: "POST", Path: "/auth/login"},
						{Method: "DELETE", Path: "/users/5"},
					},
				}},
			}),
		},
	})
	session.SelectedRoute = models.RouteBackend

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "Authentication and authorization")
	assert.Contains(t, out, "User login")
	assert.Contains(t, out, "Remove item")
}

func TestRenderActiveRoute_MalformedDetailFallsThrough(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		Summary: "A demo project",
		DetailedAnalysis: models.DetailedAnalysis{
			"backend": json.RawMessage(`{"api_files": "not-an-array"}`),
		},
	})
	session.SelectedRoute = models.RouteBackend

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "A demo project")
}

func TestRenderActiveRoute_UsesLatestFetchedRouteContent(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{})
	session.SelectedRoute = models.RouteDatabase
	session.ChatHistory = []models.ChatEntry{
		{Kind: models.ChatEntryRoute, RouteID: models.RouteDatabase, HTML: "<p>old content</p>"},
		{Kind: models.ChatEntryUser, Text: "a question"},
		{Kind: models.ChatEntryRoute, RouteID: models.RouteDatabase, HTML: "<p>new content</p>"},
	}

	out := string(controller.RenderActiveRoute(session))

	assert.Equal(t, "<p>new content</p>", out)
}

func TestRenderActiveRoute_FlowStates(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{})
	session.SelectedRoute = models.RouteFlow

	t.Run("not requested", func(t *testing.T) {
		out := string(controller.RenderActiveRoute(session))
		assert.Contains(t, out, "flow-empty")
	})

	t.Run("loading", func(t *testing.T) {
		session.FlowState = models.FlowDiagramState{Loading: true}
		out := string(controller.RenderActiveRoute(session))
		assert.Contains(t, out, "spinner")
	})

	t.Run("error", func(t *testing.T) {
		session.FlowState = models.FlowDiagramState{Error: FlowDiagramFailure}
		out := string(controller.RenderActiveRoute(session))
		assert.Contains(t, out, FlowDiagramFailure)
	})

	t.Run("rendered", func(t *testing.T) {
		session.FlowState = models.FlowDiagramState{
			DiagramSource: "graph TD",
			Rendered:      "<div class=\"diagram\">ok</div>",
		}
		out := string(controller.RenderActiveRoute(session))
		assert.Contains(t, out, "diagram")
	})
}

func TestRenderFallback_FrontendFileFilter(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		Summary: "demo",
		Context: models.ProjectContext{Files: []models.FileInfo{
			{Name: "src/App.jsx"},
			{Name: "styles.css"},
			{Name: "server.py"},
		}},
	})
	session.SelectedRoute = models.RouteFrontend

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "App.jsx")
	assert.Contains(t, out, "styles.css")
	assert.NotContains(t, out, "server.py")
}

func TestRenderFallback_BackendFileFilter(t *testing.T) {
	controller := renderTestController(t)
	session := sessionWithAnalysis(&models.AnalysisResult{
		Summary: "demo",
		Context: models.ProjectContext{Files: []models.FileInfo{
			{Name: "server.py"},
			{Name: "api/handlers.js"},
			{Name: "README.md"},
		}},
	})
	session.SelectedRoute = models.RouteBackend

	out := string(controller.RenderActiveRoute(session))

	assert.Contains(t, out, "server.py")
	assert.Contains(t, out, "api/handlers.js")
	assert.NotContains(t, out, "README.md")
}
