package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// HTTPClient invokes an external solver service over HTTP, the transport
// the orchestrator is wired to by default. Authoring the optimization
// algorithm itself is out of scope; this is only the wire adapter.
type HTTPClient struct {
	Endpoint string
	HTTP     *http.Client
}

// NewHTTPClient returns an HTTPClient posting to endpoint.
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{Endpoint: endpoint, HTTP: http.DefaultClient}
}

type invokeRequest struct {
	Network    []byte `json:"network"`
	Crac       []byte `json:"crac"`
	Parameters []byte `json:"parameters"`
}

// Invoke implements Solver.
func (c *HTTPClient) Invoke(ctx context.Context, network, crac, params []byte) (Result, error) {
	body, err := json.Marshal(invokeRequest{Network: network, Crac: crac, Parameters: params})
	if err != nil {
		return Result{}, fmt.Errorf("%w: marshal solver request: %v", models.ErrTransientIO, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: build solver request: %v", models.ErrTransientIO, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: solver request: %v", models.ErrTransientIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("%w: solver status %d", models.ErrTransientIO, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("%w: solver rejected request: status %d", models.ErrSchemaError, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: decode solver response: %v", models.ErrTransientIO, err)
	}
	return result, nil
}
