package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-admin-backend/internal/domain"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSMailer sends the passcode through an EmailJS template.
type EmailJSMailer struct {
	PublicKey  string
	PrivateKey string
	ServiceID  string
	TemplateID string
	Endpoint   string
	HTTPClient *http.Client
}

func NewEmailJSMailer(publicKey, privateKey, serviceID, templateID, endpoint string) *EmailJSMailer {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEmailJSEndpoint
	}
	return &EmailJSMailer{
		PublicKey:  strings.TrimSpace(publicKey),
		PrivateKey: strings.TrimSpace(privateKey),
		ServiceID:  strings.TrimSpace(serviceID),
		TemplateID: strings.TrimSpace(templateID),
		Endpoint:   endpoint,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type emailJSSendRequest struct {
	ServiceID      string               `json:"service_id"`
	TemplateID     string               `json:"template_id"`
	UserID         string               `json:"user_id"`
	AccessToken    string               `json:"accessToken,omitempty"`
	TemplateParams domain.PasscodeEmail `json:"template_params"`
}

func (m *EmailJSMailer) SendPasscode(ctx context.Context, msg domain.PasscodeEmail) error {
	if m == nil {
		return fmt.Errorf("emailjs mailer not configured")
	}
	if m.PublicKey == "" || m.ServiceID == "" || m.TemplateID == "" {
		return fmt.Errorf("missing EMAILJS_PUBLIC_KEY, EMAILJS_SERVICE_ID or EMAILJS_TEMPLATE_ID")
	}

	b, err := json.Marshal(emailJSSendRequest{
		ServiceID:      m.ServiceID,
		TemplateID:     m.TemplateID,
		UserID:         m.PublicKey,
		AccessToken:    m.PrivateKey,
		TemplateParams: msg,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// EmailJS answers 200 with the body "OK".
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("emailjs send http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
