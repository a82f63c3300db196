// Package aicontent is the client side of the pluggable AI text service
// (§6): it sends content-generation requests over NATS request/reply,
// enforces the hard per-call timeout, and degrades through a 3-tier
// health model to rule-based fallback content when the service is slow
// or unavailable (§7's timeout/transient-I/O recovery path).
package aicontent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"evochron/internal/ecoerrors"
	"evochron/internal/simconfig"
)

// ContentRequest is one content-generation ask: a new species description,
// a name, or an adaptation-advice prompt.
type ContentRequest struct {
	ID              string `json:"id"`
	Kind            string `json:"kind"` // "species_name", "description", "adaptation_advice"
	Prompt          string `json:"prompt"`
	ResponseSubject string `json:"-"`
}

// ContentResponse is the AI service's reply.
type ContentResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Error    string `json:"error,omitempty"`
}

// Publisher is the subset of *nats.Conn the client depends on, so tests
// can substitute an in-memory fake.
type Publisher interface {
	PublishRequest(subj, reply string, data []byte) error
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// Client sends content requests and awaits replies, subject to the
// configured hard timeout.
type Client struct {
	nc      Publisher
	subject string
	breaker *Breaker
}

// NewClient wires a Client against a live NATS connection and subject.
func NewClient(nc Publisher, subject string) *Client {
	return &Client{nc: nc, subject: subject, breaker: NewBreaker(simconfig.Cfg().AI.MaxConsecutiveErrors)}
}

// Generate sends one request and blocks until a reply arrives or the
// configured timeout elapses. On timeout or breaker-open, returns a
// KindTimeout SimError so the caller can fall back to rule-based content.
func (c *Client) Generate(ctx context.Context, req ContentRequest) (string, error) {
	if c.breaker.Open() {
		return "", ecoerrors.New(ecoerrors.KindTimeout, "ai content breaker open, skipping call")
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", ecoerrors.Wrap(ecoerrors.KindValidationFailure, "marshaling content request", err)
	}

	timeout := time.Duration(simconfig.Cfg().AI.TimeoutSeconds) * time.Second
	msg, err := c.nc.Request(c.subject, payload, timeout)
	if err != nil {
		c.breaker.RecordFailure()
		log.Warn().Err(err).Str("id", req.ID).Msg("ai content request timed out or failed")
		return "", ecoerrors.Wrap(ecoerrors.KindTimeout, "ai content request failed", err)
	}

	var resp ContentResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		c.breaker.RecordFailure()
		return "", ecoerrors.Wrap(ecoerrors.KindValidationFailure, "unmarshaling content response", err)
	}
	if resp.Error != "" {
		c.breaker.RecordFailure()
		return "", ecoerrors.New(ecoerrors.KindValidationFailure, fmt.Sprintf("ai content service error: %s", resp.Error))
	}

	c.breaker.RecordSuccess()
	return resp.Text, nil
}
