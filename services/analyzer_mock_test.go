package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-analyzer-web/models"
)

// MockAnalyzerAPI for testing the controllers without a backend.
type MockAnalyzerAPI struct {
	mock.Mock
}

func (m *MockAnalyzerAPI) AnalyzeFiles(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalyzerAPI) AnalyzeGitHub(ctx context.Context, githubURL string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, githubURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalyzerAPI) GetRouteInfo(ctx context.Context, route models.Route, projectContext interface{}) (string, error) {
	args := m.Called(ctx, route, projectContext)
	return args.String(0), args.Error(1)
}

func (m *MockAnalyzerAPI) GetFlowDiagram(ctx context.Context, route models.Route, projectContext interface{}) (*models.FlowDiagramResponse, error) {
	args := m.Called(ctx, route, projectContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlowDiagramResponse), args.Error(1)
}

func (m *MockAnalyzerAPI) Query(ctx context.Context, query string, queryContext interface{}, route models.Route) (string, error) {
	args := m.Called(ctx, query, queryContext, route)
	return args.String(0), args.Error(1)
}

func (m *MockAnalyzerAPI) Health(ctx context.Context) (*models.BackendHealthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackendHealthResponse), args.Error(1)
}
