package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaf1/shop/internal/mailer"
)

type sentMail struct {
	to      []string
	subject string
}

type recorderSender struct {
	mu   sync.Mutex
	sent []sentMail
	done chan struct{}
}

func newRecorder() *recorderSender {
	return &recorderSender{done: make(chan struct{}, 16)}
}

func (r *recorderSender) Send(to []string, subject, htmlBody, textBody string) error {
	r.mu.Lock()
	r.sent = append(r.sent, sentMail{to: to, subject: subject})
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recorderSender) wait(t *testing.T) sentMail {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no mail sent within deadline")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWelcomeDelivers(t *testing.T) {
	rec := newRecorder()
	d := New(rec, true, "", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx, 1)

	d.Welcome("buyer@example.com")

	mail := rec.wait(t)
	assert.Equal(t, []string{"buyer@example.com"}, mail.to)
	assert.Contains(t, mail.subject, "Welcome")
}

func TestDisabledDispatcherSkips(t *testing.T) {
	rec := newRecorder()
	d := New(rec, false, "", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx, 1)

	d.Welcome("buyer@example.com")

	select {
	case <-rec.done:
		t.Fatal("disabled dispatcher must not send")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOrderEmails(t *testing.T) {
	rec := newRecorder()
	d := New(rec, true, "owner@example.com, backup@example.com", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx, 1)

	sum := mailer.OrderSummary{
		OrderID:    3,
		Total:      59.98,
		Items:      []mailer.OrderLine{{Name: "Cap", Quantity: 2, Price: 29.99}},
		BuyerEmail: "buyer@example.com",
		BuyerPhone: "+1 555 123 4567",
	}

	d.OrderCustomer("buyer@example.com", sum)
	first := rec.wait(t)
	assert.Equal(t, []string{"buyer@example.com"}, first.to)
	assert.Contains(t, first.subject, "#3")

	d.OrderAdmin(sum)
	second := rec.wait(t)
	require.Equal(t, []string{"owner@example.com", "backup@example.com"}, second.to)
	assert.Contains(t, second.subject, "New purchase")
}

func TestOrderAdminNoRecipients(t *testing.T) {
	rec := newRecorder()
	d := New(rec, true, "", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx, 1)

	d.OrderAdmin(mailer.OrderSummary{OrderID: 1})

	select {
	case <-rec.done:
		t.Fatal("admin mail sent without a recipient list")
	case <-time.After(100 * time.Millisecond):
	}
}
