// Package httppush mirrors record mutations to an external HTTP
// endpoint. Delivery is best effort; callers fire and forget.
package httppush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// DefaultTimeout is the per-request timeout for push deliveries.
const DefaultTimeout = 15 * time.Second

// Config holds the outbound push endpoint settings.
type Config struct {
	// Endpoint is the URL push payloads are POSTed to.
	Endpoint string

	// BearerToken, when set, is sent as an Authorization header.
	BearerToken string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Pusher implements driven.OutboundPusher over HTTP.
type Pusher struct {
	endpoint string
	client   *http.Client
}

var _ driven.OutboundPusher = (*Pusher)(nil)

// New creates a pusher for the configured endpoint.
func New(config Config) *Pusher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: timeout}
	if config.BearerToken != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.BearerToken})
		client = oauth2.NewClient(context.Background(), source)
		client.Timeout = timeout
	}

	return &Pusher{
		endpoint: config.Endpoint,
		client:   client,
	}
}

// payload is the wire shape of one push delivery.
type payload struct {
	Action     string        `json:"action"`
	Collection string        `json:"collection"`
	Record     recordPayload `json:"record"`
}

type recordPayload struct {
	NaturalKey  string `json:"naturalKey"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Subject     string `json:"subject"`
	Assignee    string `json:"assignee"`
	Action      string `json:"action"`
	Resolution  string `json:"resolution"`
	Remark      string `json:"remark"`
	Timestamp   string `json:"timestamp"`
}

// Push delivers one record mutation to the endpoint.
func (p *Pusher) Push(ctx context.Context, collection domain.Collection, rec domain.Record, action domain.PushAction) error {
	body, err := json.Marshal(payload{
		Action:     string(action),
		Collection: string(collection),
		Record: recordPayload{
			NaturalKey:  rec.NaturalKey,
			Status:      rec.Status,
			Type:        rec.Type,
			Severity:    rec.Severity,
			Category:    rec.Category,
			SubCategory: rec.SubCategory,
			Subject:     rec.Subject,
			Assignee:    rec.Assignee,
			Action:      rec.Action,
			Resolution:  rec.Resolution,
			Remark:      rec.Remark,
			Timestamp:   rec.Timestamp.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver push: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
