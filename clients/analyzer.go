package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"project-analyzer-web/config"
	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// AnalyzerAPI is the capability the controllers receive for talking to the
// analysis backend. One method per backend operation plus a health ping.
type AnalyzerAPI interface {
	AnalyzeFiles(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error)
	AnalyzeGitHub(ctx context.Context, githubURL string) (*models.AnalysisResult, error)
	GetRouteInfo(ctx context.Context, route models.Route, projectContext interface{}) (string, error)
	GetFlowDiagram(ctx context.Context, route models.Route, projectContext interface{}) (*models.FlowDiagramResponse, error)
	Query(ctx context.Context, query string, queryContext interface{}, route models.Route) (string, error)
	Health(ctx context.Context) (*models.BackendHealthResponse, error)
}

// AnalyzerClient implements AnalyzerAPI over HTTP.
type AnalyzerClient struct {
	config     *config.BackendConfig
	httpClient *http.Client
	retryer    *errors.Retryer
}

// NewAnalyzerClient creates a new analysis backend client.
func NewAnalyzerClient(cfg *config.BackendConfig) *AnalyzerClient {
	return &AnalyzerClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryer: errors.NewRetryer(errors.ExternalServiceRetryConfig()),
	}
}

// AnalyzeFiles uploads the selected files as multipart form data with a
// repeated "files" field. Analysis is expensive, so the request is issued
// exactly once: no automatic retries.
func (c *AnalyzerClient) AnalyzeFiles(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	if len(files) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeNoFiles, "no files selected", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeProcessingError,
				"Failed to build multipart request", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeProcessingError,
				"Failed to build multipart request", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeProcessingError,
			"Failed to build multipart request", err)
	}

	var result models.AnalysisResult
	err := c.do(ctx, "POST", "/api/analyze-files", &body, writer.FormDataContentType(), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeGitHub submits a repository URL for analysis. Issued exactly once.
func (c *AnalyzerClient) AnalyzeGitHub(ctx context.Context, githubURL string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(githubURL) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeNoURL, "no url provided", nil)
	}

	var result models.AnalysisResult
	err := c.doJSON(ctx, "/api/analyze-github", models.GitHubAnalysisRequest{GitHubURL: githubURL}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRouteInfo fetches backend-rendered content for one route. Read-only,
// so transient failures are retried.
func (c *AnalyzerClient) GetRouteInfo(ctx context.Context, route models.Route, projectContext interface{}) (string, error) {
	request := models.RouteInfoRequest{
		Route:          string(route),
		ProjectContext: projectContext,
	}

	var response models.RouteInfoResponse
	err := c.retryer.Execute(ctx, func() error {
		return c.doJSON(ctx, "/api/get-route-info", request, &response)
	})
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// GetFlowDiagram fetches the diagram description for the project. Read-only,
// so transient failures are retried.
func (c *AnalyzerClient) GetFlowDiagram(ctx context.Context, route models.Route, projectContext interface{}) (*models.FlowDiagramResponse, error) {
	request := models.RouteInfoRequest{
		Route:          string(route),
		ProjectContext: projectContext,
	}

	var response models.FlowDiagramResponse
	err := c.retryer.Execute(ctx, func() error {
		return c.doJSON(ctx, "/api/flow-diagram", request, &response)
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Query forwards a free-text question. Issued exactly once; queries are
// never retried automatically.
func (c *AnalyzerClient) Query(ctx context.Context, query string, queryContext interface{}, route models.Route) (string, error) {
	request := models.QueryRequest{
		Query:   query,
		Context: queryContext,
		Route:   string(route),
	}

	var response models.QueryResponse
	if err := c.doJSON(ctx, "/api/query", request, &response); err != nil {
		return "", err
	}
	return response.Response, nil
}

// Health pings the backend's health endpoint.
func (c *AnalyzerClient) Health(ctx context.Context) (*models.BackendHealthResponse, error) {
	var response models.BackendHealthResponse
	err := c.retryer.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/api/health", nil)
		if err != nil {
			return errors.NewInternalError(errors.ErrCodeProcessingError,
				"Failed to create HTTP request", err)
		}
		return c.execute(req, &response)
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// doJSON posts a JSON body to the given path and decodes the response.
func (c *AnalyzerClient) doJSON(ctx context.Context, path string, request interface{}, response interface{}) error {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSerializationError,
			"Failed to marshal backend request", err)
	}
	return c.do(ctx, "POST", path, bytes.NewReader(requestBody), "application/json", response)
}

// do executes one HTTP request against the backend.
func (c *AnalyzerClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, response interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeProcessingError,
			"Failed to create HTTP request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.execute(req, response)
}

// execute sends the request and decodes the success body into response.
func (c *AnalyzerClient) execute(req *http.Request, response interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeNetworkConnection,
			"Analysis backend request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeNetworkConnection,
			"Failed to read backend response", err)
	}

	if resp.StatusCode >= 400 {
		return c.handleHTTPError(resp.StatusCode, respBody)
	}

	if response == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, response); err != nil {
		return errors.NewInternalError(errors.ErrCodeSerializationError,
			"Failed to unmarshal backend response", err)
	}
	return nil
}

// handleHTTPError converts a non-success status into an AppError. Any detail
// message the backend includes is preserved for user display.
func (c *AnalyzerClient) handleHTTPError(statusCode int, body []byte) error {
	detail := extractDetail(body)
	cause := fmt.Errorf("HTTP %d: %s", statusCode, string(body))

	var appErr *errors.AppError
	switch {
	case statusCode == http.StatusNotFound:
		appErr = errors.NewNotFoundError(errors.ErrCodeAnalyzerAPIFailed,
			"Analysis backend endpoint not found", cause)
	case statusCode == http.StatusRequestTimeout:
		appErr = errors.NewTimeoutError(errors.ErrCodeNetworkTimeout,
			"Analysis backend timed out", cause)
	case statusCode >= 500:
		appErr = errors.NewExternalServiceError(errors.ErrCodeAnalyzerAPIFailed,
			"Analysis backend error", cause)
	default:
		appErr = errors.NewValidationError(errors.ErrCodeInvalidInput,
			"Analysis backend rejected the request", cause)
	}
	appErr.Details = detail
	appErr.StatusCode = statusCode
	return appErr
}

// extractDetail pulls the optional nested detail-message field from an error
// body. Non-JSON bodies yield an empty detail.
func extractDetail(body []byte) string {
	var parsed models.BackendErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Detail
}
