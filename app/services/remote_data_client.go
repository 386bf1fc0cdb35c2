// Package services provides external service integrations and technical concerns like remote lookups and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/form"
	"github.com/amirphl/orochi-admin/config"
)

// DefaultRemoteErrorMessage is shown when the remote service gives no message of its own
const DefaultRemoteErrorMessage = "The remote service could not complete the request, please try again"

// QueryToken in an endpoint template is replaced with the escaped search text
const QueryToken = "{query}"

var remoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "remote_data_requests_total",
		Help: "Requests to the remote data service partitioned by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

// RemoteError is a failed call to the remote data service
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("remote data service returned %d: %s", e.Status, msg)
	}
	return "remote data service: " + msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user: the server's message when present
func (e *RemoteError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultRemoteErrorMessage
}

// IsRemoteError reports whether err is (or wraps) a RemoteError
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// RemoteDataClient fetches option lists and search results for form fields
type RemoteDataClient interface {
	FetchOptions(ctx context.Context, endpoint string) ([]string, error)
	Search(ctx context.Context, endpoint, text string) ([]form.SearchResult, error)
}

type httpRemoteDataClient struct {
	cfg    config.LookupConfig
	client *http.Client
}

// NewRemoteDataClient creates a client for the remote data service
func NewRemoteDataClient(cfg config.LookupConfig) RemoteDataClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpRemoteDataClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpRemoteDataClient) FetchOptions(ctx context.Context, endpoint string) ([]string, error) {
	target, err := c.resolve(endpoint, "")
	if err != nil {
		return nil, err
	}

	items, err := c.getList(ctx, "options", target)
	if err != nil {
		return nil, err
	}

	options := make([]string, 0, len(items))
	for _, item := range items {
		opt, err := optionValue(item)
		if err != nil {
			remoteRequestsTotal.WithLabelValues("options", "decode_error").Inc()
			return nil, &RemoteError{Message: "unexpected option format", Err: err}
		}
		options = append(options, opt)
	}
	return options, nil
}

func (c *httpRemoteDataClient) Search(ctx context.Context, endpoint, text string) ([]form.SearchResult, error) {
	target, err := c.resolve(endpoint, text)
	if err != nil {
		return nil, err
	}

	items, err := c.getList(ctx, "search", target)
	if err != nil {
		return nil, err
	}

	results := make([]form.SearchResult, 0, len(items))
	for _, item := range items {
		res, err := searchResult(item)
		if err != nil {
			remoteRequestsTotal.WithLabelValues("search", "decode_error").Inc()
			return nil, &RemoteError{Message: "unexpected search result format", Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

// resolve joins a relative endpoint with the base URL and places the search text
func (c *httpRemoteDataClient) resolve(endpoint, text string) (string, error) {
	if endpoint == "" {
		return "", &RemoteError{Message: "field has no api endpoint"}
	}

	withQuery := strings.Contains(endpoint, QueryToken)
	if withQuery {
		endpoint = strings.ReplaceAll(endpoint, QueryToken, url.QueryEscape(text))
	}

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", &RemoteError{Message: "invalid lookup base url", Err: err}
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", &RemoteError{Message: "invalid api endpoint", Err: err}
	}
	u := base.ResolveReference(ref)

	if text != "" && !withQuery {
		q := u.Query()
		q.Set("q", text)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *httpRemoteDataClient) getList(ctx context.Context, kind, target string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		remoteRequestsTotal.WithLabelValues(kind, "transport_error").Inc()
		return nil, &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		remoteRequestsTotal.WithLabelValues(kind, "transport_error").Inc()
		return nil, &RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteRequestsTotal.WithLabelValues(kind, "http_error").Inc()
		return nil, &RemoteError{Status: resp.StatusCode, Message: envelopeMessage(body)}
	}

	items, err := decodeList(body)
	if err != nil {
		remoteRequestsTotal.WithLabelValues(kind, "decode_error").Inc()
		return nil, err
	}
	remoteRequestsTotal.WithLabelValues(kind, "ok").Inc()
	return items, nil
}

// decodeList accepts a bare JSON array or an APIResponse envelope whose data is an array
// (optionally wrapped in an object with an items field)
func decodeList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &RemoteError{Message: "failed to decode list", Err: err}
		}
		return items, nil
	}

	var apiResp struct {
		dto.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &apiResp); err != nil {
		return nil, &RemoteError{Message: "failed to decode JSON into APIResponse", Err: err}
	}
	if !apiResp.Success {
		return nil, &RemoteError{Message: apiResp.Message}
	}

	data := bytes.TrimSpace(apiResp.Data)
	if len(data) == 0 || string(data) == "null" {
		return []json.RawMessage{}, nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, &RemoteError{Message: "failed to decode list", Err: err}
		}
		return wrapped.Items, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &RemoteError{Message: "failed to decode list", Err: err}
	}
	return items, nil
}

func envelopeMessage(body []byte) string {
	var apiResp dto.APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return ""
	}
	return apiResp.Message
}

type remoteItem struct {
	ID    json.RawMessage `json:"id"`
	Value string          `json:"value"`
	Label string          `json:"label"`
	Name  string          `json:"name"`
}

func optionValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var item remoteItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", err
	}
	for _, v := range []string{item.Value, item.Name, item.Label} {
		if v != "" {
			return v, nil
		}
	}
	return "", errors.New("option has no value, name or label")
}

func searchResult(raw json.RawMessage) (form.SearchResult, error) {
	var item remoteItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return form.SearchResult{}, err
	}
	id, err := scalarID(item.ID)
	if err != nil {
		return form.SearchResult{}, err
	}
	label := item.Label
	if label == "" {
		label = item.Name
	}
	return form.SearchResult{ID: id, Label: label}, nil
}

// scalarID accepts string and numeric ids
func scalarID(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", errors.New("search result has no id")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
