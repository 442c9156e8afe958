package ggrc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"github.com/secmon-lab/grc-risk/pkg/utils/safe"
)

// maxResponseSize bounds the bytes read from one response
const maxResponseSize = 8 << 20

// Client talks to the risk REST API. It implements interfaces.RiskAPI,
// interfaces.DocumentAPI and the stub resolvers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	descriptor *model.Descriptor
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithToken sends token as a bearer token on every request
func WithToken(token string) Option {
	return func(client *Client) {
		client.token = token
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, goerr.New("base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: NewHTTPClient(DefaultHTTPConfig()),
		descriptor: model.RiskDescriptor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type riskEnvelope struct {
	Risk *model.Risk `json:"risk"`
}

type risksEnvelope struct {
	Risks []*model.Risk `json:"risks"`
}

type documentsEnvelope struct {
	Documents []*model.Document `json:"documents"`
}

type personEnvelope struct {
	Person *model.Person `json:"person"`
}

type contextEnvelope struct {
	Context *model.Context `json:"context"`
}

type riskObjectEnvelope struct {
	RiskObject *model.RiskObject `json:"risk_object"`
}

func (c *Client) endpoint(op model.Operation, id int64) (string, string) {
	ep, _ := c.descriptor.Endpoint(op)
	return ep.Method, ep.Expand(id)
}

func (c *Client) List(ctx context.Context) ([]*model.Risk, error) {
	method, path := c.endpoint(model.OperationList, 0)

	var resp risksEnvelope
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Risks, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*model.Risk, error) {
	method, path := c.endpoint(model.OperationGet, id)

	var resp riskEnvelope
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Risk == nil {
		return nil, goerr.New("response has no risk", goerr.V(model.RiskIDKey, id))
	}
	return resp.Risk, nil
}

func (c *Client) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	method, path := c.endpoint(model.OperationCreate, 0)

	var resp riskEnvelope
	if err := c.do(ctx, method, path, riskEnvelope{Risk: risk}, &resp); err != nil {
		return nil, err
	}
	if resp.Risk == nil {
		return nil, goerr.New("response has no risk")
	}
	return resp.Risk, nil
}

func (c *Client) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	if risk.IsNew() {
		return nil, goerr.New("risk has no id")
	}
	method, path := c.endpoint(model.OperationUpdate, risk.ID)

	var resp riskEnvelope
	if err := c.do(ctx, method, path, riskEnvelope{Risk: risk}, &resp); err != nil {
		return nil, err
	}
	if resp.Risk == nil {
		return nil, goerr.New("response has no risk", goerr.V(model.RiskIDKey, risk.ID))
	}
	return resp.Risk, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	method, path := c.endpoint(model.OperationDelete, id)
	return c.do(ctx, method, path, nil, nil)
}

func (c *Client) ListDocuments(ctx context.Context, riskID int64) ([]*model.Document, error) {
	var resp documentsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/risks/"+strconv.FormatInt(riskID, 10)+"/documents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *Client) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	var resp personEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/people/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Person, nil
}

func (c *Client) GetContext(ctx context.Context, id int64) (*model.Context, error) {
	var resp contextEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/contexts/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Context, nil
}

func (c *Client) GetRiskObject(ctx context.Context, id int64) (*model.RiskObject, error) {
	var resp riskObjectEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/risk_objects/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return resp.RiskObject, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body", goerr.V("path", path))
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("method", method), goerr.V("path", path))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("path", path))
	}
	defer safe.Drain(ctx, resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return goerr.Wrap(err, "failed to read response body", goerr.V("method", method), goerr.V("path", path))
	}

	logging.From(ctx).Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return goerr.Wrap(err, "failed to decode response body", goerr.V("method", method), goerr.V("path", path))
	}
	return nil
}

type errorBody struct {
	Errors []model.FieldError `json:"errors"`
	Error  string             `json:"error"`
}

// statusError maps a non-2xx response to an error. Field errors of a 400 or
// 422 response are returned as *model.ValidationError.
func statusError(method, path string, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	values := []goerr.Option{
		goerr.V("method", method),
		goerr.V("path", path),
		goerr.V("status", status),
	}
	if body.Error != "" {
		values = append(values, goerr.V("message", body.Error))
	}

	switch {
	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) && len(body.Errors) > 0:
		return &model.ValidationError{Errors: body.Errors}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return goerr.Wrap(ErrBadRequest, "request rejected", values...)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return goerr.Wrap(ErrUnauthorized, "request not authorized", values...)
	case status == http.StatusNotFound:
		return goerr.Wrap(model.ErrNotFound, "resource not found", values...)
	case status == http.StatusConflict:
		return goerr.Wrap(model.ErrConflict, "resource conflict", values...)
	case status >= http.StatusInternalServerError:
		return goerr.Wrap(ErrServer, "server error", values...)
	default:
		return goerr.Wrap(ErrUnexpectedStatus, "unexpected response status", values...)
	}
}
