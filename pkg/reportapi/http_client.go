package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	chartbuilder "github.com/A3ON-Tecnologia/dashboard-bi/components/chartbuilder"
)

// HTTPConfig configures the HTTP reporting client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient is the REST implementation of ChartStore and DatasetSource.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var (
	_ chartbuilder.ChartStore    = (*HTTPClient)(nil)
	_ chartbuilder.DatasetSource = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client for a live reporting backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reportapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// ListCharts fetches and normalizes the workflow's chart rows.
func (c *HTTPClient) ListCharts(ctx context.Context, workflowID string) ([]chartbuilder.ChartDefinition, error) {
	var resp struct {
		Charts []map[string]any `json:"charts"`
	}
	path := fmt.Sprintf("/workflow/%s/charts", url.PathEscape(workflowID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return chartbuilder.NormalizeDefinitions(resp.Charts)
}

// CreateChart persists a new chart and returns the stored definition.
func (c *HTTPClient) CreateChart(ctx context.Context, workflowID string, def chartbuilder.ChartDefinition) (chartbuilder.ChartDefinition, error) {
	var row map[string]any
	path := fmt.Sprintf("/workflow/%s/charts", url.PathEscape(workflowID))
	if err := c.do(ctx, http.MethodPost, path, chartbuilder.SavePayload(def), &row); err != nil {
		return chartbuilder.ChartDefinition{}, err
	}
	return chartbuilder.NormalizeDefinition(row)
}

// UpdateChart replaces an existing chart.
func (c *HTTPClient) UpdateChart(ctx context.Context, workflowID, chartID string, def chartbuilder.ChartDefinition) (chartbuilder.ChartDefinition, error) {
	var row map[string]any
	path := fmt.Sprintf("/workflow/%s/charts/%s", url.PathEscape(workflowID), url.PathEscape(chartID))
	if err := c.do(ctx, http.MethodPut, path, chartbuilder.SavePayload(def), &row); err != nil {
		return chartbuilder.ChartDefinition{}, err
	}
	return chartbuilder.NormalizeDefinition(row)
}

// DeleteChart removes a chart. The backend answers 204.
func (c *HTTPClient) DeleteChart(ctx context.Context, workflowID, chartID string) error {
	path := fmt.Sprintf("/workflow/%s/charts/%s", url.PathEscape(workflowID), url.PathEscape(chartID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// BalanceteDataset fetches the workflow's indicator table.
func (c *HTTPClient) BalanceteDataset(ctx context.Context, workflowID string) (*chartbuilder.BalanceteDataset, error) {
	var ds chartbuilder.BalanceteDataset
	path := fmt.Sprintf("/workflow/%s/balancete", url.PathEscape(workflowID))
	if err := c.do(ctx, http.MethodGet, path, nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// AnaliseDataset fetches one category table of an analise_jp workflow.
func (c *HTTPClient) AnaliseDataset(ctx context.Context, workflowID, category string) (*chartbuilder.AnaliseDataset, error) {
	var ds chartbuilder.AnaliseDataset
	path := fmt.Sprintf("/workflow/%s/analise/%s", url.PathEscape(workflowID), url.PathEscape(category))
	if err := c.do(ctx, http.MethodGet, path, nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// AnaliseCategories lists the workflow's categories.
func (c *HTTPClient) AnaliseCategories(ctx context.Context, workflowID string) ([]chartbuilder.Category, error) {
	var resp struct {
		Categories []chartbuilder.Category `json:"categorias"`
	}
	path := fmt.Sprintf("/workflow/%s/analise/categorias", url.PathEscape(workflowID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// SetIndicatorKind retags one indicator's value kind.
func (c *HTTPClient) SetIndicatorKind(ctx context.Context, workflowID, indicator string, kind chartbuilder.ValueKind) error {
	payload := map[string]string{"tipo": string(kind)}
	path := fmt.Sprintf("/workflow/%s/indicadores/%s/tipo", url.PathEscape(workflowID), url.PathEscape(indicator))
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

// do runs one JSON round trip. Failures surface the backend's own error or
// message field when present, and a generic "Error <status>" otherwise. A
// 204 response leaves the target untouched.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("reportapi: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("reportapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reportapi: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("reportapi: decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)

	message := fmt.Sprintf("Error %d", resp.StatusCode)
	var body errorBody
	if err := json.Unmarshal(buf.Bytes(), &body); err == nil {
		switch {
		case body.Error != "":
			message = body.Error
		case body.Message != "":
			message = body.Message
		}
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
