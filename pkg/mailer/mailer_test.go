package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	failures int
	calls    int
	last     *gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	f.last = m[0]
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return nil
}

func newTestMailer(d *fakeDialer) *SMTPMailer {
	return &SMTPMailer{from: "bookings@crewhub.test", dialer: d, backoff: time.Millisecond}
}

func TestSMTPMailer_Send(t *testing.T) {
	ctx := context.Background()
	email := Email{To: "ada@example.com", Subject: "Booking confirmed", Text: "hi", HTML: "<p>hi</p>"}

	t.Run("delivers first time", func(t *testing.T) {
		d := &fakeDialer{}
		require.NoError(t, newTestMailer(d).Send(ctx, email))
		assert.Equal(t, 1, d.calls)
		assert.Equal(t, []string{"ada@example.com"}, d.last.GetHeader("To"))
		assert.Equal(t, []string{"bookings@crewhub.test"}, d.last.GetHeader("From"))
	})

	t.Run("retries once", func(t *testing.T) {
		d := &fakeDialer{failures: 1}
		require.NoError(t, newTestMailer(d).Send(ctx, email))
		assert.Equal(t, 2, d.calls)
	})

	t.Run("gives up after one retry", func(t *testing.T) {
		d := &fakeDialer{failures: 5}
		err := newTestMailer(d).Send(ctx, email)
		require.Error(t, err)
		assert.Equal(t, 2, d.calls)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		d := &fakeDialer{}
		assert.Error(t, newTestMailer(d).Send(ctx, Email{Subject: "x"}))
		assert.Zero(t, d.calls)
	})
}

func TestNewSMTPMailer_RequiresConfig(t *testing.T) {
	_, err := NewSMTPMailer(Config{Host: "smtp.example.com"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 587, User: "u@example.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", m.from)
}

func TestSMTPMailer_ZeroBackoffUsesDefault(t *testing.T) {
	d := &fakeDialer{failures: 1}
	m := &SMTPMailer{from: "bookings@crewhub.test", dialer: d}
	require.NoError(t, m.Send(context.Background(), Email{To: "ada@example.com", Subject: "x", Text: "x"}))
	assert.Equal(t, 2, d.calls)
}
