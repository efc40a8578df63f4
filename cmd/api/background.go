package main

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const reconcileBatch = 50

// startReconciler schedules reconcilePendingPayments every reconcile
// interval. The caller owns the returned scheduler and must shut it down.
func (app *application) startReconciler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(app.config.reconcile.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), app.config.reconcile.interval)
			defer cancel()
			app.reconcilePendingPayments(ctx)
		}),
		gocron.WithName("reconcile-pending-payments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	app.logger.Infow("payment reconciler scheduled", "interval", app.config.reconcile.interval.String())
	return s, nil
}

// reconcilePendingPayments re-verifies every payment attempt of a booking
// whose payer left the gateway without coming back, confirming the booking
// once PayU reports any of its attempts as paid.
func (app *application) reconcilePendingPayments(ctx context.Context) int {
	cutoff := app.now().Add(-app.config.reconcile.staleAfter)

	attempts, err := app.store.Payments.Transactions.ListPendingAttempts(ctx, cutoff, reconcileBatch)
	if err != nil {
		app.logger.Errorw("reconcile: list pending attempts", "error", err)
		return 0
	}

	confirmed := 0
	for _, attempt := range attempts {
		tx, err := app.verifier.Verify(ctx, attempt.TxnID)
		if err != nil {
			app.recordVerification(ctx, attempt.TxnID, tx, err)
			app.logger.Warnw("reconcile: verify failed", "booking_id", attempt.BookingID, "txnid", attempt.TxnID, "error", err)
			continue
		}
		if app.recordVerification(ctx, attempt.TxnID, tx, nil) {
			confirmed++
		}
	}

	if len(attempts) > 0 {
		app.logger.Infow("reconcile finished", "checked", len(attempts), "confirmed", confirmed, "at", time.Now().Format(time.RFC1123))
	}
	return confirmed
}
