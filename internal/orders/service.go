// Package orders owns order creation and the status workflow. Every
// successful mutation is pushed to the vendor's room and the order's
// own room through the fan-out broker.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
)

// Event kinds pushed by this package.
const (
	EventNewOrder     = "new_order"
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
)

type Service struct {
	store  store.Store
	broker hub.Broker
	log    zerolog.Logger
}

func NewService(st store.Store, b hub.Broker, log zerolog.Logger) *Service {
	return &Service{store: st, broker: b, log: log}
}

type CreateInput struct {
	UserID      string
	VendorID    string
	ServiceID   string
	Total       float64
	ScheduledAt *time.Time
	Notes       *string
}

// Create places an order with status pending and pushes the joined
// record to vendor:{vendor_id} (new_order) and order:{id}
// (order_created). The payload is the joined shape so subscribers
// render it without a follow-up fetch.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if in.UserID == "" || in.VendorID == "" || in.ServiceID == "" {
		return nil, domain.Validation("user_id, vendor_id and service_id are required")
	}

	o, err := s.store.CreateOrder(ctx, store.CreateOrderInput{
		UserID:      in.UserID,
		VendorID:    in.VendorID,
		ServiceID:   in.ServiceID,
		Total:       in.Total,
		ScheduledAt: in.ScheduledAt,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.broker.Publish(hub.VendorTopic(o.VendorID), EventNewOrder, o)
	s.broker.Publish(hub.OrderTopic(o.ID), EventOrderCreated, o)
	s.log.Info().Str("order_id", o.ID).Str("vendor_id", o.VendorID).Msg("order created")
	return o, nil
}

// SetStatus applies a status transition and pushes order_updated to
// both rooms. Unknown statuses and illegal transitions are rejected.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if status == "" {
		return nil, domain.Validation("status is required")
	}
	if !domain.KnownStatus(status) {
		return nil, domain.Validation(fmt.Sprintf("unknown status %q", status))
	}

	current, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, status) {
		return nil, domain.Validation(fmt.Sprintf("cannot move order from %s to %s", current.Status, status))
	}

	o, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	s.broker.Publish(hub.VendorTopic(o.VendorID), EventOrderUpdated, o)
	s.broker.Publish(hub.OrderTopic(o.ID), EventOrderUpdated, o)
	s.log.Info().Str("order_id", o.ID).Str("status", status).Msg("order status updated")
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return s.store.ListOrdersByVendor(ctx, vendorID)
}
