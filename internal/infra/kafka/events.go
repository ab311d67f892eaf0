package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed audit event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	AccountID string            `json:"account_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishLogin publishes plati.auth.login events.
func (p *EventPublisher) PublishLogin(ctx context.Context, event domain.LoginEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		SessionID string    `json:"session_id"`
		IP        string    `json:"ip,omitempty"`
		At        time.Time `json:"at"`
	}{
		AccountID: event.AccountID,
		Username:  event.Username,
		Role:      event.Role,
		SessionID: event.SessionID,
		IP:        event.IP,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login", event.AccountID, event.At, payload)
}

// PublishLogout publishes plati.auth.logout events.
func (p *EventPublisher) PublishLogout(ctx context.Context, event domain.LogoutEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		SessionID string    `json:"session_id"`
		At        time.Time `json:"at"`
	}{
		AccountID: event.AccountID,
		SessionID: event.SessionID,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.logout", event.AccountID, event.At, payload)
}

// PublishPasswordChanged publishes plati.auth.password_changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		ChangedBy string    `json:"changed_by"`
		Via       string    `json:"via"`
		At        time.Time `json:"at"`
	}{
		AccountID: event.AccountID,
		ChangedBy: event.ChangedBy,
		Via:       event.Via,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.password_changed", event.AccountID, event.At, payload)
}

// PublishAccountChanged publishes plati.account lifecycle events.
func (p *EventPublisher) PublishAccountChanged(ctx context.Context, event domain.AccountChangedEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		Action    string    `json:"action"`
		ActorID   string    `json:"actor_id"`
		At        time.Time `json:"at"`
	}{
		AccountID: event.AccountID,
		Username:  event.Username,
		Role:      event.Role,
		Action:    event.Action,
		ActorID:   event.ActorID,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "account."+event.Action, event.AccountID, event.At, payload)
}

// PublishCertificateIssued publishes plati.certificate.issued events.
func (p *EventPublisher) PublishCertificateIssued(ctx context.Context, event domain.CertificateIssuedEvent) error {
	payload := struct {
		Number    string    `json:"number"`
		PatientID string    `json:"patient_id"`
		Kind      string    `json:"kind"`
		IssuedBy  string    `json:"issued_by"`
		At        time.Time `json:"at"`
	}{
		Number:    event.Number,
		PatientID: event.PatientID,
		Kind:      event.Kind,
		IssuedBy:  event.IssuedBy,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "certificate.issued", event.IssuedBy, event.At, payload)
}

// PublishStealthAccess publishes plati.stealth.accessed events.
func (p *EventPublisher) PublishStealthAccess(ctx context.Context, event domain.StealthAccessEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		Action    string    `json:"action"`
		At        time.Time `json:"at"`
	}{
		AccountID: event.AccountID,
		Action:    event.Action,
		At:        event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "stealth.accessed", event.AccountID, event.At, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
