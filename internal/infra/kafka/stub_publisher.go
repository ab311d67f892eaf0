package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, which is the normal single-practice deployment.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a log-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishLogin logs auth.login events.
func (p *StubPublisher) PublishLogin(_ context.Context, event domain.LoginEvent) error {
	p.logEvent("auth.login", event.AccountID, event.At, map[string]any{
		"username":   event.Username,
		"role":       event.Role,
		"session_id": event.SessionID,
		"ip":         event.IP,
	})
	return nil
}

// PublishLogout logs auth.logout events.
func (p *StubPublisher) PublishLogout(_ context.Context, event domain.LogoutEvent) error {
	p.logEvent("auth.logout", event.AccountID, event.At, map[string]any{
		"session_id": event.SessionID,
	})
	return nil
}

// PublishPasswordChanged logs auth.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent("auth.password_changed", event.AccountID, event.At, map[string]any{
		"changed_by": event.ChangedBy,
		"via":        event.Via,
	})
	return nil
}

// PublishAccountChanged logs account lifecycle events.
func (p *StubPublisher) PublishAccountChanged(_ context.Context, event domain.AccountChangedEvent) error {
	p.logEvent("account."+event.Action, event.AccountID, event.At, map[string]any{
		"username": event.Username,
		"role":     event.Role,
		"actor_id": event.ActorID,
	})
	return nil
}

// PublishCertificateIssued logs certificate.issued events.
func (p *StubPublisher) PublishCertificateIssued(_ context.Context, event domain.CertificateIssuedEvent) error {
	p.logEvent("certificate.issued", event.IssuedBy, event.At, map[string]any{
		"number":     event.Number,
		"patient_id": event.PatientID,
		"kind":       event.Kind,
	})
	return nil
}

// PublishStealthAccess logs stealth.accessed events.
func (p *StubPublisher) PublishStealthAccess(_ context.Context, event domain.StealthAccessEvent) error {
	p.logEvent("stealth.accessed", event.AccountID, event.At, map[string]any{
		"action": event.Action,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
