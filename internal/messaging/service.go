// Package messaging owns the append-only chat thread attached to an
// order. Each posted message is pushed to the order's room.
package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
)

// EventOrderMessage is the push kind for new chat messages.
const EventOrderMessage = "order_message"

type Service struct {
	store  store.Store
	broker hub.Broker
	log    zerolog.Logger
}

func NewService(st store.Store, b hub.Broker, log zerolog.Logger) *Service {
	return &Service{store: st, broker: b, log: log}
}

type PostInput struct {
	OrderID   string
	SenderID  string
	Text      string
	ClientRef string // optional correlation id, echoed back verbatim
}

// Post persists a message, resolves the sender's display name, and
// pushes the joined message to order:{order_id}.
func (s *Service) Post(ctx context.Context, in PostInput) (*domain.OrderMessage, error) {
	if in.SenderID == "" || in.Text == "" {
		return nil, domain.Validation("sender_id and text required")
	}

	msg, err := s.store.CreateMessage(ctx, store.CreateMessageInput{
		OrderID:   in.OrderID,
		SenderID:  in.SenderID,
		Text:      in.Text,
		ClientRef: in.ClientRef,
	})
	if err != nil {
		return nil, err
	}

	s.broker.Publish(hub.OrderTopic(msg.OrderID), EventOrderMessage, msg)
	s.log.Debug().Str("order_id", msg.OrderID).Str("message_id", msg.ID).Msg("message posted")
	return msg, nil
}

// List returns the thread oldest first.
func (s *Service) List(ctx context.Context, orderID string) ([]domain.OrderMessage, error) {
	return s.store.ListMessages(ctx, orderID)
}
