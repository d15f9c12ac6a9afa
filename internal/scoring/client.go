package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"compatibility-workers/internal/common/auth"
	apperrors "compatibility-workers/internal/common/errors"
	httpclient "compatibility-workers/internal/common/http"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/common/metrics"
	"compatibility-workers/internal/common/validation"
)

const (
	serviceName        = "scoring"
	DefaultAnalyzePath = "/api/compatibility/analyze"
	userAgent          = "compatibility-workers"
)

// responseSchema is the minimum shape a success body must have.
var responseSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["compatibility_score"],
	"properties": {
		"compatibility_score": {"type": ["number", "string", "null"]},
		"detailed_scores": {"type": ["object", "null"]},
		"recommendation": {"type": ["string", "null"]},
		"analysis_date": {"type": ["string", "null"]},
		"score_saved": {"type": ["boolean", "null"]}
	}
}`)

type Config struct {
	BaseURL     string
	AnalyzePath string
	Timeout     time.Duration
}

// Client calls the remote AI scoring service. It never retries; retry policy belongs to
// the job runner.
type Client struct {
	http     *httpclient.Client
	endpoint string
	tokens   auth.TokenSource
	logger   logger.Logger
}

// NewClient builds a scoring client. tokens may be nil for an unauthenticated service.
func NewClient(cfg Config, tokens auth.TokenSource, log logger.Logger) *Client {
	path := cfg.AnalyzePath
	if path == "" {
		path = DefaultAnalyzePath
	}
	return &Client{
		http:     httpclient.NewClient(cfg.Timeout).WithHeader("User-Agent", userAgent),
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/"),
		tokens:   tokens,
		logger:   log.WithFields(map[string]interface{}{"component": "scoring-client"}),
	}
}

// Score posts one candidate/offer pair and returns the decoded body.
func (c *Client) Score(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	headers := map[string]string{}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, c.transportError(ctx, err)
		}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	resp, err := c.http.PostJSON(ctx, c.endpoint, req, headers)
	if err != nil {
		metrics.ScoringRequests.WithLabelValues("transport_error").Inc()
		return nil, c.transportError(ctx, err)
	}
	metrics.ScoringRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug("scoring response received", map[string]interface{}{
		"requestId":   resp.RequestID,
		"statusCode":  resp.StatusCode,
		"candidateId": req.CandidateID,
		"offerId":     req.OfferID,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
				inv.Invalidate()
			}
		}
		return nil, statusError(resp.StatusCode, resp.Body)
	}

	return decodeResponse(resp)
}

func decodeResponse(resp *httpclient.Response) (*Response, error) {
	result, err := responseSchema.ValidateBytes(resp.Body)
	if err != nil {
		return nil, apperrors.NewServiceUnavailableError(serviceName, resp.StatusCode,
			fmt.Errorf("undecodable response body: %w", err))
	}
	if !result.Valid {
		return nil, apperrors.NewServiceUnavailableError(serviceName, resp.StatusCode,
			fmt.Errorf("unexpected response body: %s", strings.Join(result.GetErrorMessages(), "; ")))
	}

	var out Response
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperrors.NewServiceUnavailableError(serviceName, resp.StatusCode,
			fmt.Errorf("undecodable response body: %w", err))
	}
	return &out, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeoutError(serviceName, err)
	}
	return apperrors.NewServiceUnavailableError(serviceName, 0, err)
}

// statusError maps a non-2xx status onto the taxonomy.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.NewValidationError(errorMessage(body))
	case status == http.StatusUnauthorized:
		return apperrors.NewAuthenticationError(errorMessage(body))
	case status == http.StatusForbidden:
		return apperrors.NewAuthorizationError(errorMessage(body))
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError("candidate or offer", errorMessage(body))
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return apperrors.NewTimeoutError(serviceName, fmt.Errorf("status %d", status))
	case status == http.StatusTooManyRequests || status >= 500:
		return apperrors.NewServiceUnavailableError(serviceName, status, fmt.Errorf("status %d", status))
	default:
		return apperrors.NewValidationError(errorMessage(body))
	}
}

// errorMessage pulls the service's message out of an error body, falling back to the
// raw text.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch d := eb.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if raw, err := json.Marshal(d); err == nil {
				return string(raw)
			}
		}
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(body))
}
