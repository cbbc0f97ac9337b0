package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/events"
)

// NotificationService delivers out-of-band messages for auth events, most
// importantly the one-time codes of the reset and verification flows.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
	n.dispatcher.Subscribe(events.EventEmailVerificationRequested, n.handleEmailVerificationRequested)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("UserRegistered", zap.Int64("user_id", payload.UserID))
	n.sendEmailStub(ctx, payload.Email, "Welcome to HowsAir")
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PasswordResetRequested", zap.Int64("user_id", payload.UserID))
	n.sendEmailStub(ctx, payload.Email, "Your password reset code is "+payload.Code)
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PasswordChanged", zap.Int64("user_id", payload.UserID))
	return nil
}

func (n *NotificationService) handleEmailVerificationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EmailVerificationRequestedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("EmailVerificationRequested")
	n.sendEmailStub(ctx, payload.Email, "Your verification code is "+payload.Code)
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, to, body string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	// Codes are secrets; never log them.
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.Int("body_len", len(body)))
}
