package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// EventPublisher publishes audit events to the message bus.
type EventPublisher interface {
	PublishLogin(ctx context.Context, event domain.LoginEvent) error
	PublishLogout(ctx context.Context, event domain.LogoutEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishAccountChanged(ctx context.Context, event domain.AccountChangedEvent) error
	PublishCertificateIssued(ctx context.Context, event domain.CertificateIssuedEvent) error
	PublishStealthAccess(ctx context.Context, event domain.StealthAccessEvent) error
}
