package webhooks

import (
	"io"
	"net/http"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/internal/payments"
	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

// maxWebhookBody caps provider notification payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// MercadoPago handles payment notifications from Mercado Pago. The handler
// answers 200 for deliveries it cannot act on so the provider stops
// retrying; signature failures are the one case that returns an error
// status.
func MercadoPago(svc *payments.Service, guard *payments.IdempotencyGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable webhook body"))
			return
		}

		event := payments.WebhookEvent{
			Body:      body,
			Query:     r.URL.Query(),
			Signature: r.Header.Get("x-signature"),
			RequestID: r.Header.Get("x-request-id"),
		}

		paymentID := payments.ExtractPaymentID(event)
		if paymentID == "" {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "event", "webhook.mercadopago"), "webhook without a payment id; ignoring")
			}
			responses.WriteSuccess(w, map[string]string{"status": string(payments.WebhookIgnored)})
			return
		}

		// The provider notifies the same payment more than once as its
		// status moves (created, then approved), so the dedup marker keys
		// on the delivery's request id, never on the payment id. The
		// signature covers the request id, and a delivery without one
		// falls through to the idempotent upsert/finalize path.
		if event.RequestID != "" {
			seen, err := guard.CheckAndMark(ctx, event.RequestID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if seen {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
				return
			}
		}

		result, err := svc.HandleWebhook(ctx, event)
		if err != nil {
			// Release the marker so the provider's retry gets a clean run.
			if event.RequestID != "" {
				if delErr := guard.Delete(ctx, event.RequestID); delErr != nil && logg != nil {
					logg.Error(logg.WithField(ctx, "provider_payment_id", paymentID), "failed to clear webhook marker", delErr)
				}
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(result.Outcome)})
	}
}
