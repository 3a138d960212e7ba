package models

import (
	"html/template"
	"time"
)

// Route identifies one of the six fixed navigation tabs of the results view.
type Route string

const (
	RouteOverview     Route = "overview"
	RouteFrontend     Route = "frontend"
	RouteBackend      Route = "backend"
	RouteDatabase     Route = "database"
	RouteArchitecture Route = "architecture"
	RouteFlow         Route = "flow"
)

// Routes lists all navigation routes in display order.
var Routes = []Route{
	RouteOverview,
	RouteFrontend,
	RouteBackend,
	RouteDatabase,
	RouteArchitecture,
	RouteFlow,
}

// ParseRoute maps a request value to a known route. Unknown values fall back
// to the overview route so a tampered form can never select an invalid tab.
func ParseRoute(s string) (Route, bool) {
	for _, r := range Routes {
		if string(r) == s {
			return r, true
		}
	}
	return RouteOverview, false
}

// UploadMode selects which of the two input flows is active.
type UploadMode string

const (
	UploadModeFile UploadMode = "file"
	UploadModeURL  UploadMode = "url"
)

// UploadedFile is one user-selected file pending submission.
type UploadedFile struct {
	Name    string
	Content []byte
}

// UploadState is the Upload Flow Controller's state. Switching modes keeps
// the other mode's data so switching back restores the prior selection.
type UploadState struct {
	Mode          UploadMode
	SelectedFiles []UploadedFile
	URLText       string
	Submitting    bool
	ErrorMessage  string
}

// ChatEntryKind tags the variant of a chat history entry.
type ChatEntryKind string

const (
	ChatEntryUser  ChatEntryKind = "user"
	ChatEntryAI    ChatEntryKind = "ai"
	ChatEntryError ChatEntryKind = "error"
	ChatEntryRoute ChatEntryKind = "route"
)

// ChatEntry is one entry in the append-only conversation log. Route entries
// carry backend-rendered HTML for a route instead of plain text.
type ChatEntry struct {
	Kind    ChatEntryKind `json:"kind"`
	Text    string        `json:"text,omitempty"`
	RouteID Route         `json:"route_id,omitempty"`
	HTML    template.HTML `json:"html,omitempty"`
}

// FlowDiagramState tracks the flow-diagram fetch. At most one of Loading,
// a non-empty Error or a non-empty DiagramSource holds at a time; all empty
// means the diagram was not requested yet.
type FlowDiagramState struct {
	Loading       bool          `json:"loading"`
	Error         string        `json:"error,omitempty"`
	DiagramSource string        `json:"diagram_source,omitempty"`
	Nodes         []FlowNode    `json:"nodes,omitempty"`
	Edges         []FlowEdge    `json:"edges,omitempty"`
	Rendered      template.HTML `json:"-"`
}

// FlowNode is one node of the backend-generated diagram. Only the mermaid
// source drives rendering; nodes and edges are kept for the polling endpoint.
type FlowNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// FlowEdge is one edge of the backend-generated diagram.
type FlowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// SessionSnapshot is the persistable part of a visitor session: the finished
// analysis and the conversation log, but never transient fetch state.
type SessionSnapshot struct {
	ID            string          `json:"id"`
	RawInput      string          `json:"raw_input,omitempty"`
	InputMode     string          `json:"input_mode,omitempty"`
	SelectedRoute string          `json:"selected_route,omitempty"`
	Analysis      *AnalysisResult `json:"analysis,omitempty"`
	ChatHistory   []ChatEntry     `json:"chat_history,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
