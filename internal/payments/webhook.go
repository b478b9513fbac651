package payments

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/alugafacil/alugafacil-backend/pkg/mercadopago"
)

// WebhookEvent is a raw provider notification before any validation.
type WebhookEvent struct {
	Body      []byte
	Query     url.Values
	Signature string
	RequestID string
}

// WebhookOutcome reports how a webhook delivery was handled.
type WebhookOutcome string

const (
	// WebhookApplied means the payment was fetched and persisted.
	WebhookApplied WebhookOutcome = "applied"
	// WebhookIgnored means no payment or booking was resolvable. The
	// endpoint still answers 200 so the provider stops redelivering.
	WebhookIgnored WebhookOutcome = "ignored"
)

type webhookBody struct {
	ID       mercadopago.ID `json:"id"`
	Resource string         `json:"resource"`
	Data     struct {
		ID mercadopago.ID `json:"id"`
	} `json:"data"`
}

// ExtractPaymentID resolves the provider payment id from a webhook event.
// Lookup order: body data.id, body id, trailing segment of a resource URL,
// then query parameters. Empty string means the event is unrecognized.
func ExtractPaymentID(event WebhookEvent) string {
	if len(event.Body) > 0 {
		var body webhookBody
		if err := json.Unmarshal(event.Body, &body); err == nil {
			if id := strings.TrimSpace(body.Data.ID.String()); id != "" {
				return id
			}
			if id := strings.TrimSpace(body.ID.String()); id != "" {
				return id
			}
			if id := trailingSegment(body.Resource); id != "" {
				return id
			}
		}
	}

	for _, key := range []string{"data.id", "id", "resource_id"} {
		if id := strings.TrimSpace(event.Query.Get(key)); id != "" {
			return id
		}
	}
	return ""
}

func trailingSegment(resource string) string {
	resource = strings.TrimSpace(strings.TrimRight(resource, "/"))
	if resource == "" {
		return ""
	}
	if idx := strings.LastIndex(resource, "/"); idx >= 0 {
		return resource[idx+1:]
	}
	return ""
}
