package services

import (
	"bytes"
	"html/template"
	"strings"

	"project-analyzer-web/models"
)

// sanitizeBackendHTML adopts backend-rendered route content. The analysis
// backend is a trusted collaborator and its content is injected as-is, the
// same way the results screen has always displayed it.
func sanitizeBackendHTML(content string) template.HTML {
	return template.HTML(content)
}

// RenderActiveRoute renders the content area for the session's active route.
// Strategy priority, first match wins: flow view, detailed-analysis view,
// previously fetched route content, heuristic fallback. A fault inside the
// detailed-analysis renderer falls through to the fallback instead of
// crashing the view.
func (c *ResultsController) RenderActiveRoute(session *Session) template.HTML {
	session.mu.Lock()
	analysis := session.Analysis
	route := session.SelectedRoute
	flowState := session.FlowState
	history := append([]models.ChatEntry(nil), session.ChatHistory...)
	session.mu.Unlock()

	if analysis == nil {
		return renderProcessing()
	}

	if route == models.RouteFlow {
		return renderFlowView(flowState)
	}

	if analysis.DetailedAnalysis.Has(route) {
		if out, ok := c.renderDetailedRoute(analysis, route); ok {
			return out
		}
	}

	// Most recent backend-fetched content for this route, if any.
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if entry.Kind == models.ChatEntryRoute && entry.RouteID == route {
			return entry.HTML
		}
	}

	return renderFallback(analysis, route)
}

// renderDetailedRoute renders the structured per-route view. Any template
// fault or panic reports not-ok so the caller can fall through.
func (c *ResultsController) renderDetailedRoute(analysis *models.AnalysisResult, route models.Route) (out template.HTML, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn("detailed route render fault",
				String("route", string(route)),
				Field("panic", rec))
			out, ok = "", false
		}
	}()

	var (
		name string
		data interface{}
	)
	switch route {
	case models.RouteOverview:
		detail, has := analysis.DetailedAnalysis.Overview()
		if !has {
			return "", false
		}
		name, data = "overview_detail", buildOverviewView(detail)
	case models.RouteFrontend:
		detail, has := analysis.DetailedAnalysis.Frontend()
		if !has {
			return "", false
		}
		name, data = "frontend_detail", buildFrontendView(detail)
	case models.RouteBackend:
		detail, has := analysis.DetailedAnalysis.Backend()
		if !has {
			return "", false
		}
		name, data = "backend_detail", buildBackendView(detail)
	case models.RouteDatabase:
		detail, has := analysis.DetailedAnalysis.Database()
		if !has {
			return "", false
		}
		name, data = "database_detail", buildDatabaseView(detail)
	case models.RouteArchitecture:
		detail, has := analysis.DetailedAnalysis.Architecture()
		if !has {
			return "", false
		}
		name, data = "architecture_detail", buildArchitectureView(detail, analysis.Context.FileNames())
	default:
		return "", false
	}

	var buf bytes.Buffer
	if err := routeTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		c.logger.Warn("detailed route template failed",
			String("route", string(route)),
			String("error", err.Error()))
		return "", false
	}
	return template.HTML(buf.String()), true
}

// View models feeding the route templates. Labels come from the purpose
// heuristics so missing backend fields still produce readable rows.

type overviewView struct {
	ProjectType     string
	ComplexityLevel string
	TotalLines      int
	KeyFiles        []keyFileRow
	EntryPoints     []string
}

type keyFileRow struct {
	Name    string
	Lines   int
	Purpose string
}

func buildOverviewView(d models.OverviewAnalysis) overviewView {
	view := overviewView{
		ProjectType:     d.ProjectType,
		ComplexityLevel: d.ComplexityIndicators.ComplexityLevel,
		TotalLines:      d.ComplexityIndicators.TotalLines,
		EntryPoints:     d.EntryPoints,
	}
	for _, f := range d.KeyFiles {
		purpose := f.Purpose
		if purpose == "" {
			purpose = "Core project file"
		}
		view.KeyFiles = append(view.KeyFiles, keyFileRow{Name: f.Name, Lines: f.Lines, Purpose: purpose})
	}
	return view
}

type frontendView struct {
	Frameworks      []string
	Components      []componentRow
	RoutingFiles    []string
	StateManagement []string
}

type componentRow struct {
	Name    string
	Type    string
	Purpose string
	Exports []string
}

func buildFrontendView(d models.FrontendAnalysis) frontendView {
	view := frontendView{
		Frameworks:      d.FrameworksUsed,
		RoutingFiles:    d.RoutingFiles,
		StateManagement: d.StateManagement,
	}
	for _, comp := range d.Components {
		view.Components = append(view.Components, componentRow{
			Name:    comp.Name,
			Type:    comp.Type,
			Purpose: GetComponentPurpose(comp.Name, comp.Exports),
			Exports: comp.Exports,
		})
	}
	return view
}

type backendView struct {
	Frameworks []string
	APIFiles   []apiFileRow
	Models     []models.ModelFile
	Middleware []string
}

type apiFileRow struct {
	File      string
	Purpose   string
	Endpoints []endpointRow
}

type endpointRow struct {
	Method  string
	Path    string
	Purpose string
}

func buildBackendView(d models.BackendAnalysis) backendView {
	view := backendView{
		Frameworks: d.FrameworksUsed,
		Models:     d.Models,
		Middleware: d.Middleware,
	}
	for _, apiFile := range d.APIFiles {
		row := apiFileRow{
			File:    apiFile.File,
			Purpose: GetAPIFilePurpose(apiFile.File, apiFile.Endpoints),
		}
		for _, ep := range apiFile.Endpoints {
			row.Endpoints = append(row.Endpoints, endpointRow{
				Method:  ep.Method,
				Path:    ep.Path,
				Purpose: GetEndpointPurpose(ep.Method, ep.Path),
			})
		}
		view.APIFiles = append(view.APIFiles, row)
	}
	return view
}

type databaseView struct {
	Databases  []string
	Schemas    []schemaRow
	Migrations []string
}

type schemaRow struct {
	File    string
	Purpose string
	Tables  []string
}

func buildDatabaseView(d models.DatabaseAnalysis) databaseView {
	view := databaseView{
		Databases:  d.DatabasesDetected,
		Migrations: d.Migrations,
	}
	for _, schema := range d.Schemas {
		view.Schemas = append(view.Schemas, schemaRow{
			File:    schema.File,
			Purpose: GetSchemaPurpose(schema.File, schema.Tables),
			Tables:  schema.Tables,
		})
	}
	return view
}

type architectureView struct {
	Patterns             []string
	Layers               []string
	SeparationOfConcerns bool
	StructureSummary     string
}

func buildArchitectureView(d models.ArchitectureAnalysis, fileNames []string) architectureView {
	return architectureView{
		Patterns:             d.Patterns,
		Layers:               d.Layers,
		SeparationOfConcerns: d.SeparationOfConcerns,
		StructureSummary:     DescribeArchitectureStructure(fileNames),
	}
}

// renderFlowView renders the flow tab according to the fetch state.
func renderFlowView(state models.FlowDiagramState) template.HTML {
	switch {
	case state.Loading:
		return `<div class="flow-loading"><div class="spinner"></div><p>Generating project flow diagram…</p></div>`
	case state.Error != "":
		return template.HTML(`<div class="flow-error">` + template.HTMLEscapeString(state.Error) + `</div>`)
	case state.DiagramSource != "":
		return state.Rendered
	default:
		return `<div class="flow-empty"><p>Select this tab again to generate the project flow diagram.</p></div>`
	}
}

// renderProcessing is the generic placeholder when nothing applicable exists.
func renderProcessing() template.HTML {
	return `<div class="processing"><p>Analysis in progress. Results will appear here shortly.</p></div>`
}

// renderFallback assembles a route view directly from top-level analysis
// fields when no detailed or fetched content exists.
func renderFallback(analysis *models.AnalysisResult, route models.Route) template.HTML {
	data := fallbackView{
		Route:        route,
		Summary:      analysis.Summary,
		Technologies: analysis.Technologies,
		Structure:    analysis.Structure,
	}

	switch route {
	case models.RouteOverview:
		data.ComplexityScore = analysis.ComplexityScore
	case models.RouteFrontend:
		data.Files = filterFiles(analysis.Context.FileNames(), isFrontendFile)
		data.FilesTitle = "Frontend files"
	case models.RouteBackend:
		data.Files = filterFiles(analysis.Context.FileNames(), isBackendFile)
		data.FilesTitle = "Backend files"
	}

	if data.Summary == "" && len(data.Technologies) == 0 && data.Structure == "" && len(data.Files) == 0 {
		return renderProcessing()
	}

	var buf bytes.Buffer
	if err := routeTemplates.ExecuteTemplate(&buf, "fallback", data); err != nil {
		return renderProcessing()
	}
	return template.HTML(buf.String())
}

type fallbackView struct {
	Route           models.Route
	Summary         string
	Technologies    []string
	Structure       string
	Files           []string
	FilesTitle      string
	ComplexityScore float64
}

func filterFiles(names []string, keep func(string) bool) []string {
	var out []string
	for _, name := range names {
		if keep(name) {
			out = append(out, name)
		}
	}
	return out
}

var frontendExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".svelte", ".css", ".html"}

func isFrontendFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range frontendExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

var backendExtensions = []string{".py", ".go", ".rb", ".php", ".java", ".rs"}

func isBackendFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range backendExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, segment := range []string{"server/", "api/", "backend/"} {
		if strings.Contains(lower, segment) {
			return true
		}
	}
	return false
}

// routeTemplates hold the per-route content fragments.
var routeTemplates = template.Must(template.New("routes").Parse(`
{{define "overview_detail"}}
<section class="route-detail route-overview">
  {{if .ProjectType}}<h3>{{.ProjectType}}</h3>{{end}}
  {{if .ComplexityLevel}}<p>Complexity: <strong>{{.ComplexityLevel}}</strong>{{if .TotalLines}} ({{.TotalLines}} lines){{end}}</p>{{end}}
  {{if .KeyFiles}}
  <h4>Key files</h4>
  <table>
    <tr><th>File</th><th>Lines</th><th>Purpose</th></tr>
    {{range .KeyFiles}}<tr><td>{{.Name}}</td><td>{{if .Lines}}{{.Lines}}{{else}}–{{end}}</td><td>{{.Purpose}}</td></tr>{{end}}
  </table>
  {{end}}
  {{if .EntryPoints}}
  <h4>Entry points</h4>
  <ul>{{range .EntryPoints}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</section>
{{end}}

{{define "frontend_detail"}}
<section class="route-detail route-frontend">
  {{if .Frameworks}}<p>Frameworks: {{range $i, $fw := .Frameworks}}{{if $i}}, {{end}}{{$fw}}{{end}}</p>{{end}}
  {{if .Components}}
  <h4>Components</h4>
  <table>
    <tr><th>Name</th><th>Type</th><th>Purpose</th></tr>
    {{range .Components}}<tr><td>{{.Name}}</td><td>{{.Type}}</td><td>{{.Purpose}}</td></tr>{{end}}
  </table>
  {{end}}
  {{if .RoutingFiles}}
  <h4>Routing</h4>
  <ul>{{range .RoutingFiles}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
  {{if .StateManagement}}
  <h4>State management</h4>
  <ul>{{range .StateManagement}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</section>
{{end}}

{{define "backend_detail"}}
<section class="route-detail route-backend">
  {{if .Frameworks}}<p>Frameworks: {{range $i, $fw := .Frameworks}}{{if $i}}, {{end}}{{$fw}}{{end}}</p>{{end}}
  {{range .APIFiles}}
  <div class="api-file">
    <h4>{{.File}}</h4>
    <p>{{.Purpose}}</p>
    {{if .Endpoints}}
    <table>
      <tr><th>Method</th><th>Path</th><th>Purpose</th></tr>
      {{range .Endpoints}}<tr><td>{{.Method}}</td><td>{{.Path}}</td><td>{{.Purpose}}</td></tr>{{end}}
    </table>
    {{end}}
  </div>
  {{end}}
  {{if .Models}}
  <h4>Models</h4>
  <ul>{{range .Models}}<li>{{.File}}{{if .Models}}: {{range $i, $m := .Models}}{{if $i}}, {{end}}{{$m}}{{end}}{{end}}</li>{{end}}</ul>
  {{end}}
  {{if .Middleware}}
  <h4>Middleware</h4>
  <ul>{{range .Middleware}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</section>
{{end}}

{{define "database_detail"}}
<section class="route-detail route-database">
  {{if .Databases}}<p>Databases: {{range $i, $db := .Databases}}{{if $i}}, {{end}}{{$db}}{{end}}</p>{{end}}
  {{range .Schemas}}
  <div class="schema-file">
    <h4>{{.File}}</h4>
    <p>{{.Purpose}}</p>
    {{if .Tables}}<ul>{{range .Tables}}<li>{{.}}</li>{{end}}</ul>{{end}}
  </div>
  {{end}}
  {{if .Migrations}}
  <h4>Migrations</h4>
  <ul>{{range .Migrations}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</section>
{{end}}

{{define "architecture_detail"}}
<section class="route-detail route-architecture">
  {{if .Patterns}}
  <h4>Patterns</h4>
  <ul>{{range .Patterns}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
  {{if .Layers}}
  <h4>Layers</h4>
  <ul>{{range .Layers}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
  <p>Separation of concerns: {{if .SeparationOfConcerns}}yes{{else}}no{{end}}</p>
  <p>{{.StructureSummary}}</p>
</section>
{{end}}

{{define "fallback"}}
<section class="route-fallback route-{{.Route}}">
  {{if .Summary}}<p>{{.Summary}}</p>{{end}}
  {{if .ComplexityScore}}<p>Complexity score: {{printf "%.1f" .ComplexityScore}}</p>{{end}}
  {{if .Technologies}}
  <h4>Technologies</h4>
  <ul>{{range .Technologies}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
  {{if .Files}}
  <h4>{{.FilesTitle}}</h4>
  <ul>{{range .Files}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
  {{if .Structure}}<pre>{{.Structure}}</pre>{{end}}
</section>
{{end}}
`))
