// Package jobs runs the scheduled payment reconciliation sweep. Webhooks are
// at-least-once but can still be missed entirely; the sweep refreshes stale
// in-flight payments against the gateway so local state converges.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

// maxConcurrentRefreshes bounds how many gateway lookups one sweep runs at once.
const maxConcurrentRefreshes = 4

// Reconciler periodically refreshes payments stuck in processing or
// action_required against the gateway.
type Reconciler struct {
	paymentRepo    *repository.PaymentRepository
	paymentService *service.PaymentService
	staleAfter     time.Duration
}

// NewReconciler creates a reconciler that refreshes payments older than
// staleAfter.
func NewReconciler(paymentRepo *repository.PaymentRepository, paymentService *service.PaymentService, staleAfter time.Duration) *Reconciler {
	return &Reconciler{
		paymentRepo:    paymentRepo,
		paymentService: paymentService,
		staleAfter:     staleAfter,
	}
}

// Run executes one sweep: find stale payments and refresh each with bounded
// retry. One payment failing does not stop the others; the first error is
// returned after the sweep completes.
func (r *Reconciler) Run(ctx context.Context) error {
	stale, err := r.paymentRepo.FindStale(time.Now().UTC().Add(-r.staleAfter))
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	log.Printf("reconciliation sweep: refreshing %d stale payments", len(stale))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRefreshes)

	for _, payment := range stale {
		g.Go(func() error {
			return r.refresh(ctx, payment)
		})
	}

	return g.Wait()
}

// refresh reconciles one payment, retrying transient gateway failures with
// exponential backoff. This is the bounded-retry layer the collector itself
// does not provide.
func (r *Reconciler) refresh(ctx context.Context, payment model.Payment) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(2*time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := r.paymentService.UpdatePaymentStatus(ctx, payment.ID)
		if err != nil {
			log.Printf("failed to refresh payment %s: %v", payment.ID, err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Schedule registers the sweep with a cron runner on the given schedule and
// returns the runner; the caller owns Start/Stop.
func (r *Reconciler) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := r.Run(ctx); err != nil {
			log.Printf("reconciliation sweep failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}
