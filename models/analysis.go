package models

import "encoding/json"

// AnalysisResult is the backend's full response to an analyze request. It is
// stored on the session when an upload succeeds, replaced wholesale on a new
// submission and never mutated field-by-field. Every field is optional on the
// wire; consumers treat missing collections as empty.
type AnalysisResult struct {
	Summary          string           `json:"summary"`
	Technologies     []string         `json:"technologies"`
	Structure        string           `json:"structure"`
	MainLanguage     string           `json:"main_language,omitempty"`
	Framework        string           `json:"framework,omitempty"`
	ArchitectureType string           `json:"architecture_type,omitempty"`
	ComplexityScore  float64          `json:"complexity_score,omitempty"`
	FilesAnalyzed    int              `json:"files_analyzed"`
	Context          ProjectContext   `json:"context"`
	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis,omitempty"`
}

// ProjectContext carries the raw project data echoed back by the backend.
// It is forwarded verbatim as the context payload of route-info, flow-diagram
// and query requests.
type ProjectContext struct {
	Files        []FileInfo `json:"files,omitempty"`
	Frameworks   []string   `json:"frameworks,omitempty"`
	Databases    []string   `json:"databases,omitempty"`
	MainLanguage string     `json:"main_language,omitempty"`
}

// FileInfo describes one analyzed file.
type FileInfo struct {
	Name     string `json:"name"`
	Content  string `json:"content,omitempty"`
	Type     string `json:"type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Language string `json:"language,omitempty"`
}

// FileNames returns the names of all files in the context. Nil-safe.
func (c *ProjectContext) FileNames() []string {
	if c == nil || len(c.Files) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		names = append(names, f.Name)
	}
	return names
}

// DetailedAnalysis is the backend's optional mapping from route id to a
// route-specific analysis object. The payload shape varies per route, so
// entries stay raw until a typed accessor decodes them. Accessors never fail:
// a missing or malformed entry decodes to the zero value.
type DetailedAnalysis map[string]json.RawMessage

// Has reports whether the backend supplied any detail for the given route.
func (d DetailedAnalysis) Has(route Route) bool {
	if len(d) == 0 {
		return false
	}
	raw, ok := d[string(route)]
	return ok && len(raw) > 0
}

// decode unmarshals the entry for route into dest, ignoring errors so that a
// malformed payload degrades to zero values instead of failing the render.
func (d DetailedAnalysis) decode(route Route, dest interface{}) bool {
	raw, ok := d[string(route)]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Overview returns the overview detail, zero-valued when absent.
func (d DetailedAnalysis) Overview() (OverviewAnalysis, bool) {
	var out OverviewAnalysis
	ok := d.decode(RouteOverview, &out)
	return out, ok
}

// Frontend returns the frontend detail, zero-valued when absent.
func (d DetailedAnalysis) Frontend() (FrontendAnalysis, bool) {
	var out FrontendAnalysis
	ok := d.decode(RouteFrontend, &out)
	return out, ok
}

// Backend returns the backend detail, zero-valued when absent.
func (d DetailedAnalysis) Backend() (BackendAnalysis, bool) {
	var out BackendAnalysis
	ok := d.decode(RouteBackend, &out)
	return out, ok
}

// Database returns the database detail, zero-valued when absent.
func (d DetailedAnalysis) Database() (DatabaseAnalysis, bool) {
	var out DatabaseAnalysis
	ok := d.decode(RouteDatabase, &out)
	return out, ok
}

// Architecture returns the architecture detail, zero-valued when absent.
func (d DetailedAnalysis) Architecture() (ArchitectureAnalysis, bool) {
	var out ArchitectureAnalysis
	ok := d.decode(RouteArchitecture, &out)
	return out, ok
}

// OverviewAnalysis holds the overview route's structured findings.
type OverviewAnalysis struct {
	ProjectType          string               `json:"project_type,omitempty"`
	ComplexityIndicators ComplexityIndicators `json:"complexity_indicators,omitempty"`
	KeyFiles             []KeyFile            `json:"key_files,omitempty"`
	EntryPoints          []string             `json:"entry_points,omitempty"`
}

// ComplexityIndicators summarizes project size and complexity.
type ComplexityIndicators struct {
	ComplexityLevel string `json:"complexity_level,omitempty"`
	TotalLines      int    `json:"total_lines,omitempty"`
}

// KeyFile is a notable file called out by the backend.
type KeyFile struct {
	Name    string `json:"name"`
	Lines   int    `json:"lines,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// FrontendAnalysis holds the frontend route's structured findings.
type FrontendAnalysis struct {
	FrameworksUsed  []string        `json:"frameworks_used,omitempty"`
	Components      []ComponentInfo `json:"components,omitempty"`
	RoutingFiles    []string        `json:"routing_files,omitempty"`
	StateManagement []string        `json:"state_management,omitempty"`
}

// ComponentInfo describes one detected UI component.
type ComponentInfo struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Exports []string `json:"exports,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

// BackendAnalysis holds the backend route's structured findings.
type BackendAnalysis struct {
	FrameworksUsed []string    `json:"frameworks_used,omitempty"`
	APIFiles       []APIFile   `json:"api_files,omitempty"`
	Models         []ModelFile `json:"models,omitempty"`
	Middleware     []string    `json:"middleware,omitempty"`
}

// APIFile groups the endpoints declared in one source file.
type APIFile struct {
	File      string     `json:"file"`
	Endpoints []Endpoint `json:"endpoints,omitempty"`
}

// Endpoint is a single HTTP route declaration.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// ModelFile groups the data models declared in one source file.
type ModelFile struct {
	File   string   `json:"file"`
	Models []string `json:"models,omitempty"`
}

// DatabaseAnalysis holds the database route's structured findings.
type DatabaseAnalysis struct {
	DatabasesDetected []string     `json:"databases_detected,omitempty"`
	Schemas           []SchemaFile `json:"schemas,omitempty"`
	Migrations        []string     `json:"migrations,omitempty"`
}

// SchemaFile groups the tables declared in one schema file.
type SchemaFile struct {
	File   string   `json:"file"`
	Tables []string `json:"tables,omitempty"`
}

// ArchitectureAnalysis holds the architecture route's structured findings.
type ArchitectureAnalysis struct {
	Patterns             []string `json:"patterns,omitempty"`
	Layers               []string `json:"layers,omitempty"`
	SeparationOfConcerns bool     `json:"separation_of_concerns,omitempty"`
}
