package email

import (
	"context"
	"errors"
	"fmt"

	"portfolio-admin-backend/internal/domain"
)

var ErrNoMailer = errors.New("no passcode mailer configured")

// Chain tries each mailer in order and stops at the first success.
type Chain []domain.Mailer

func (c Chain) SendPasscode(ctx context.Context, msg domain.PasscodeEmail) error {
	if len(c) == 0 {
		return ErrNoMailer
	}
	var errs []error
	for i, m := range c {
		err := m.SendPasscode(ctx, msg)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("mailer %d: %w", i, err))
	}
	return errors.Join(errs...)
}
