package models

// RouteInfoResponse is the body returned by POST /api/get-route-info.
// Content is backend-rendered HTML for the requested route.
type RouteInfoResponse struct {
	Content string `json:"content"`
}

// QueryResponse is the body returned by POST /api/query.
type QueryResponse struct {
	Response string `json:"response"`
}

// FlowDiagramResponse is the body returned by POST /api/flow-diagram. Only
// the mermaid source drives rendering; nodes and edges ride along for the
// flow-state polling endpoint.
type FlowDiagramResponse struct {
	Mermaid string     `json:"mermaid"`
	Nodes   []FlowNode `json:"nodes,omitempty"`
	Edges   []FlowEdge `json:"edges,omitempty"`
}

// BackendErrorResponse is the error body the analysis backend returns on a
// non-success status. Detail, when present, is shown to the user.
type BackendErrorResponse struct {
	Detail string `json:"detail"`
}

// BackendHealthResponse is the body returned by GET /api/health on the
// analysis backend.
type BackendHealthResponse struct {
	Status   string          `json:"status"`
	Services map[string]bool `json:"services,omitempty"`
}

// APIError is the JSON error shape this service returns to browsers and
// API clients.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
