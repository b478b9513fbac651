package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	defaultPendingLimit  = 50
	defaultPendingMinAge = 2 * time.Minute
)

// paymentsReconciler is the slice of the payments service the job needs.
type paymentsReconciler interface {
	ListPendingOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]models.PaymentTransaction, error)
	Reconcile(ctx context.Context, transaction models.PaymentTransaction) (*models.PaymentTransaction, error)
}

// PaymentsJobParams configures the pending payment reconciliation job.
type PaymentsJobParams struct {
	Logger   *logger.Logger
	Payments paymentsReconciler
	MinAge   time.Duration
	Limit    int
}

// NewPaymentsJob builds a job that re-queries the payment provider for
// transactions that never received a terminal webhook.
func NewPaymentsJob(params PaymentsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultPendingMinAge
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	return &paymentsJob{
		logg:     params.Logger,
		payments: params.Payments,
		minAge:   minAge,
		limit:    limit,
	}, nil
}

type paymentsJob struct {
	logg     *logger.Logger
	payments paymentsReconciler
	minAge   time.Duration
	limit    int
}

func (j *paymentsJob) Name() string { return "payments-reconcile" }

func (j *paymentsJob) Run(ctx context.Context) error {
	pending, err := j.payments.ListPendingOlderThan(ctx, j.minAge, j.limit)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	var errs error
	settled := 0
	for i := range pending {
		updated, err := j.reconcileTransaction(ctx, pending[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if updated != nil && updated.Status == "approved" {
			settled++
		}
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(pending),
		"settled":    settled,
	})
	j.logg.Info(reportCtx, "payment reconcile loop complete")
	return errs
}

func (j *paymentsJob) reconcileTransaction(ctx context.Context, transaction models.PaymentTransaction) (*models.PaymentTransaction, error) {
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"payment_id": transaction.ID,
		"booking_id": transaction.BookingID,
	})
	updated, err := j.payments.Reconcile(logCtx, transaction)
	if err != nil {
		return nil, fmt.Errorf("reconcile transaction %s: %w", transaction.ID, err)
	}
	if updated.Status != transaction.Status {
		statusCtx := j.logg.WithFields(logCtx, map[string]any{
			"from": transaction.Status,
			"to":   updated.Status,
		})
		j.logg.Info(statusCtx, "payment status advanced")
	}
	return updated, nil
}
