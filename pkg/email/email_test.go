package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"portfolio-admin-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var passcode = domain.PasscodeEmail{
	ToEmail:  "admin@example.com",
	ToName:   "Admin",
	Passcode: "AB12CD",
	Time:     "Jan 2, 2026, 03:04 PM",
	Message:  "Your authentication code is: AB12CD. This code will expire in 15 minutes.",
}

func TestEmailJSMailer(t *testing.T) {
	t.Run("Should post the template params", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte("OK"))
		}))
		defer srv.Close()

		m := NewEmailJSMailer("pub", "", "svc", "tpl", srv.URL)
		require.NoError(t, m.SendPasscode(context.Background(), passcode))

		assert.Equal(t, "svc", got["service_id"])
		assert.Equal(t, "tpl", got["template_id"])
		assert.Equal(t, "pub", got["user_id"])
		assert.NotContains(t, got, "accessToken")
		params := got["template_params"].(map[string]any)
		assert.Equal(t, "admin@example.com", params["to_email"])
		assert.Equal(t, "Admin", params["to_name"])
		assert.Equal(t, "AB12CD", params["passcode"])
		assert.Equal(t, "Jan 2, 2026, 03:04 PM", params["time"])
	})

	t.Run("Should fail on a non 200 answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("The Public Key is invalid"))
		}))
		defer srv.Close()

		err := NewEmailJSMailer("bad", "", "svc", "tpl", srv.URL).SendPasscode(context.Background(), passcode)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Public Key is invalid")
	})

	t.Run("Should refuse to send without keys", func(t *testing.T) {
		err := NewEmailJSMailer("", "", "", "", "").SendPasscode(context.Background(), passcode)
		assert.Error(t, err)
	})
}

func TestSMTPMailer(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "login@example.com", "pw", "")
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.SendPasscode(context.Background(), passcode))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "login@example.com", gotFrom)
	assert.Equal(t, []string{"admin@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "AB12CD")
	assert.True(t, m.IsConfigured())
}

type stubMailer struct {
	err   error
	calls int
}

func (s *stubMailer) SendPasscode(context.Context, domain.PasscodeEmail) error {
	s.calls++
	return s.err
}

func TestChain(t *testing.T) {
	t.Run("Should fall through to the next mailer", func(t *testing.T) {
		first := &stubMailer{err: errors.New("down")}
		second := &stubMailer{}
		require.NoError(t, Chain{first, second}.SendPasscode(context.Background(), passcode))
		assert.Equal(t, 1, second.calls)
	})

	t.Run("Should join every failure", func(t *testing.T) {
		err := Chain{&stubMailer{err: errors.New("a")}, &stubMailer{err: errors.New("b")}}.SendPasscode(context.Background(), passcode)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
	})

	t.Run("Should report an empty chain", func(t *testing.T) {
		assert.ErrorIs(t, Chain{}.SendPasscode(context.Background(), passcode), ErrNoMailer)
	})
}
