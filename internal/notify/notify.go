// Package notify runs best-effort transactional email off the request path.
// Jobs are handed to a background worker pool and never awaited; a failed
// send is logged and dropped, never retried, never surfaced to the client.
package notify

import (
	"context"
	"log/slog"

	"github.com/tiendaf1/shop/internal/config"
	"github.com/tiendaf1/shop/internal/mailer"
)

// Sender is the transport the dispatcher hands jobs to. *mailer.Mailer
// satisfies it; tests substitute a recorder.
type Sender interface {
	Send(to []string, subject, htmlBody, textBody string) error
}

type job struct {
	name string
	run  func() error
}

type Dispatcher struct {
	sender    Sender
	enabled   bool
	adminList []string
	jobs      chan job
	log       *slog.Logger
}

func New(sender Sender, enabled bool, adminNotify string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		enabled:   enabled,
		adminList: config.SplitList(adminNotify),
		jobs:      make(chan job, 256),
		log:       log,
	}
}

// Start launches n workers that drain the job channel until ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go d.work(ctx)
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			if err := j.run(); err != nil {
				d.log.Error("notify: job failed", "job", j.name, "error", err)
				continue
			}
			d.log.Info("notify: job done", "job", j.name)
		}
	}
}

func (d *Dispatcher) enqueue(name string, run func() error) {
	if !d.enabled {
		d.log.Info("notify: mailer disabled, skipping", "job", name)
		return
	}
	select {
	case d.jobs <- job{name: name, run: run}:
	default:
		// Best-effort: a full queue drops the job rather than blocking a
		// request.
		d.log.Warn("notify: queue full, dropping job", "job", name)
	}
}

func (d *Dispatcher) Welcome(email string) {
	d.enqueue("welcome_email", func() error {
		subject, html, text := mailer.WelcomeEmail(email)
		return d.sender.Send([]string{email}, subject, html, text)
	})
}

func (d *Dispatcher) OrderCustomer(email string, sum mailer.OrderSummary) {
	d.enqueue("order_customer_email", func() error {
		subject, html, text := mailer.OrderCustomerEmail(sum)
		return d.sender.Send([]string{email}, subject, html, text)
	})
}

// OrderAdmin is a no-op when no admin recipient list is configured.
func (d *Dispatcher) OrderAdmin(sum mailer.OrderSummary) {
	if len(d.adminList) == 0 {
		return
	}
	to := d.adminList
	d.enqueue("order_admin_email", func() error {
		subject, html, text := mailer.OrderAdminEmail(sum)
		return d.sender.Send(to, subject, html, text)
	})
}
