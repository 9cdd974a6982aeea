package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para el envio de codigos de invitacion.
type Sender interface {
	SendInviteCode(ctx context.Context, toEmail, teamName, code string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendInviteCode(_ context.Context, _, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
