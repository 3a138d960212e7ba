package services

import (
	"fmt"
	"strings"

	"project-analyzer-web/models"
)

// Purpose heuristics: deterministic keyword classifiers that turn file,
// endpoint and schema names into one-line human-readable descriptions.
// Every function is total over arbitrary input; missing collections are
// treated as empty and the generic default is returned when no rule matches.
// Rule order is significant: the first match in priority order wins.

const (
	defaultComponentPurpose = "Reusable UI component for specific functionality"
	defaultAPIFilePurpose   = "Handles API requests"
	defaultEndpointPurpose  = "Process request"
	defaultSchemaPurpose    = "Data storage definition"
	flatStructureSummary    = "Flat file structure"
	noFilesSummary          = "No files analyzed"
)

// componentRules are evaluated in order against the lowercased file name.
var componentRules = []struct {
	keyword string
	purpose string
}{
	{"app", "Main application component"},
	{"header", "Page header and navigation"},
	{"footer", "Page footer content"},
	{"sidebar", "Sidebar navigation component"},
	{"modal", "Modal dialog component"},
	{"form", "Form input and validation"},
	{"button", "Interactive button component"},
	{"card", "Card display component"},
	{"list", "List rendering component"},
}

// GetComponentPurpose describes a UI component file. Exports are consulted
// only when no name rule matches.
func GetComponentPurpose(name string, exports []string) string {
	lower := strings.ToLower(name)
	for _, rule := range componentRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.purpose
		}
	}
	for _, export := range exports {
		if strings.Contains(strings.ToLower(export), "provider") {
			return "Context provider component"
		}
	}
	return defaultComponentPurpose
}

// apiFileRules are evaluated in order against the lowercased file name.
var apiFileRules = []struct {
	keywords []string
	purpose  string
}{
	{[]string{"auth"}, "Authentication and authorization"},
	{[]string{"user"}, "User management operations"},
	{[]string{"admin"}, "Administrative operations"},
	{[]string{"api", "route"}, "API route definitions"},
	{[]string{"controller"}, "Request handling logic"},
	{[]string{"service"}, "Business logic services"},
}

// GetAPIFilePurpose describes an API source file. The endpoint list is
// consulted only when no name rule matches.
func GetAPIFilePurpose(file string, endpoints []models.Endpoint) string {
	lower := strings.ToLower(file)
	for _, rule := range apiFileRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.purpose
			}
		}
	}
	if hasMethod(endpoints, "POST") {
		return "Data creation and updates"
	}
	if hasMethod(endpoints, "GET") {
		return "Data retrieval operations"
	}
	return defaultAPIFilePurpose
}

func hasMethod(endpoints []models.Endpoint, method string) bool {
	for _, ep := range endpoints {
		if strings.EqualFold(ep.Method, method) {
			return true
		}
	}
	return false
}

// GetEndpointPurpose describes a single HTTP endpoint from its method and
// path substring, in fixed priority order.
func GetEndpointPurpose(method, path string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	p := strings.ToLower(path)

	switch {
	case m == "GET" && strings.Contains(p, "list"):
		return "List data"
	case m == "GET" && strings.Contains(p, "search"):
		return "Search data"
	case m == "GET":
		return "Fetch data"
	case m == "POST" && strings.Contains(p, "login"):
		return "User login"
	case m == "POST" && strings.Contains(p, "register"):
		return "User registration"
	case m == "POST":
		return "Create data"
	case m == "PUT":
		return "Update data"
	case m == "DELETE":
		return "Remove item"
	}
	return defaultEndpointPurpose
}

// schemaRules are evaluated in order against the lowercased file name.
var schemaRules = []struct {
	keyword string
	purpose string
}{
	{"user", "User data storage"},
	{"product", "Product catalog storage"},
	{"order", "Order management storage"},
	{"migration", "Database schema migration"},
	{"seed", "Initial data seeding"},
}

// GetSchemaPurpose describes a database schema file. Table names and table
// count are consulted only when no name rule matches.
func GetSchemaPurpose(file string, tables []string) string {
	lower := strings.ToLower(file)
	for _, rule := range schemaRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.purpose
		}
	}
	for _, table := range tables {
		if strings.Contains(strings.ToLower(table), "user") {
			return "User-related data storage"
		}
	}
	if len(tables) > 5 {
		return "Complex relational schema"
	}
	return defaultSchemaPurpose
}

// DescribeArchitectureStructure summarizes how a project's files are laid
// out. Each predicate contributes one fragment independently; fragments are
// joined with a comma separator.
func DescribeArchitectureStructure(fileNames []string) string {
	if len(fileNames) == 0 {
		return noFilesSummary
	}

	var fragments []string

	predicates := []struct {
		keyword  string
		fragment string
	}{
		{"component", "Component-based structure"},
		{"service", "Service layer"},
		{"controller", "Controller layer"},
		{"model", "Data model layer"},
	}
	for _, pred := range predicates {
		if anyContains(fileNames, pred.keyword) {
			fragments = append(fragments, pred.fragment)
		}
	}

	if dirs := countTopLevelDirs(fileNames); dirs > 3 {
		fragments = append(fragments, fmt.Sprintf("%d main directories", dirs))
	}

	if len(fragments) == 0 {
		return flatStructureSummary
	}
	return strings.Join(fragments, ", ")
}

func anyContains(names []string, keyword string) bool {
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), keyword) {
			return true
		}
	}
	return false
}

// countTopLevelDirs counts distinct first path segments among file names
// that carry a directory component.
func countTopLevelDirs(names []string) int {
	seen := make(map[string]struct{})
	for _, name := range names {
		if idx := strings.Index(name, "/"); idx > 0 {
			seen[name[:idx]] = struct{}{}
		}
	}
	return len(seen)
}
