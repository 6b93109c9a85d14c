package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/fedwallet/walletgate/ports"
)

// Topics published by the gateway.
const (
	TopicLogin             = "walletgate.login"
	TopicDelegationChanged = "walletgate.delegation"
)

// LoginEvent announces a completed wallet login.
type LoginEvent struct {
	Address   string `json:"address"`
	Localpart string `json:"localpart"`
	UserID    string `json:"user_id"`
}

// DelegationEvent announces a directory change.
type DelegationEvent struct {
	Owner    string `json:"owner"`
	Endpoint string `json:"endpoint,omitempty"`
	Removed  bool   `json:"removed"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, addr, localpart, userID string) error {
	return p.publish(TopicLogin, LoginEvent{
		Address:   addr,
		Localpart: localpart,
		UserID:    userID,
	})
}

// PublishDelegationChanged publishes a directory change event
func (p *WatermillPublisher) PublishDelegationChanged(ctx context.Context, owner, endpoint string, removed bool) error {
	return p.publish(TopicDelegationChanged, DelegationEvent{
		Owner:    owner,
		Endpoint: endpoint,
		Removed:  removed,
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
