package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-nomad/internal/httpc"
	"github.com/teslashibe/go-nomad/internal/log"
)

// DefaultInvokeTimeout bounds one gateway call end to end.
const DefaultInvokeTimeout = 10 * time.Second

// HTTPGateway dispatches tool requests to the catalog service over HTTP.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// GatewayOption configures an HTTPGateway.
type GatewayOption func(*HTTPGateway)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *HTTPGateway) { g.http = c }
}

// WithInvokeTimeout sets the per-call timeout.
func WithInvokeTimeout(d time.Duration) GatewayOption {
	return func(g *HTTPGateway) { g.timeout = d }
}

// NewHTTPGateway creates a gateway targeting the catalog service at baseURL.
func NewHTTPGateway(baseURL string, opts ...GatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpc.Client,
		timeout: DefaultInvokeTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke validates the request locally and dispatches it to the catalog
// service. All failures are expressed in the Result.
func (g *HTTPGateway) Invoke(ctx context.Context, req Request) Result {
	if err := ValidateArgs(req.Tool, req.Args); err != nil {
		log.Warn("rejected tool call before dispatch", "tool", req.Tool, "error", err)
		return Failure(req, "invalid arguments: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(req.Args)
	if err != nil {
		return Failure(req, "encode arguments: "+err.Error())
	}

	url := fmt.Sprintf("%s/tools/%s", g.baseURL, req.Tool)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Failure(req, "build request: "+err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.http.Do(httpReq)
	if err != nil {
		log.Warn("tool call transport failure", "tool", req.Tool, "error", err)
		return Failure(req, "catalog service unreachable: "+err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Failure(req, "read response: "+err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		detail := parseErrorBody(payload)
		log.Warn("tool call rejected by catalog service",
			"tool", req.Tool, "status", resp.StatusCode, "detail", detail)
		return Failure(req, fmt.Sprintf("catalog service error %d: %s", resp.StatusCode, detail))
	}

	log.Debug("tool call complete",
		"tool", req.Tool, "latency_ms", time.Since(start).Milliseconds())
	return Success(req, payload)
}

// parseErrorBody extracts an error detail from a JSON error response,
// falling back to the raw body.
func parseErrorBody(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
