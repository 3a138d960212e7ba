package models

// GitHubAnalysisRequest is the body of POST /api/analyze-github.
type GitHubAnalysisRequest struct {
	GitHubURL string `json:"github_url"`
}

// RouteInfoRequest is the body of POST /api/get-route-info and
// POST /api/flow-diagram. ProjectContext carries either the analysis context
// or the full analysis result depending on configuration.
type RouteInfoRequest struct {
	Route          string      `json:"route"`
	ProjectContext interface{} `json:"project_context"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query   string      `json:"query"`
	Context interface{} `json:"context"`
	Route   string      `json:"route"`
}
