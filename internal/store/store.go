// Package store is the persistence gateway: one contract over the
// durable entities, implemented by Postgres for deployments and by an
// in-memory store for tests and local development. Reads that join
// related entities return the same shape regardless of backend.
package store

import (
	"context"
	"time"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string // already hashed
}

type CreateVendorInput struct {
	UserID      string
	VendorName  string
	Description *string
	Location    *string
}

type CreateServiceInput struct {
	VendorID string
	Title    string
	Price    float64
	Duration string
	Category string
	ImageURL *string
}

type UpdateServiceInput struct {
	Title    string
	Price    float64
	Duration string
	Category string
	ImageURL *string
}

type CreateOrderInput struct {
	UserID      string
	VendorID    string
	ServiceID   string
	Total       float64
	ScheduledAt *time.Time
	Notes       *string
}

type CreateMessageInput struct {
	OrderID   string
	SenderID  string
	Text      string
	ClientRef string
}

// Store is the gateway contract. Creates reject invariant violations
// with domain.ErrNotFound (missing parent) or domain.ErrConflict
// (uniqueness); reads return joined shapes.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// CreateVendor inserts the profile and upgrades the owning user's
	// role to vendor in the same unit of work, returning both.
	CreateVendor(ctx context.Context, in CreateVendorInput) (*domain.Vendor, *domain.User, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	GetVendor(ctx context.Context, id string) (*domain.Vendor, error)

	CreateService(ctx context.Context, in CreateServiceInput) (*domain.Service, error)
	UpdateService(ctx context.Context, id string, in UpdateServiceInput) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListServicesByVendor(ctx context.Context, vendorID string) ([]domain.Service, error)

	CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListOrdersByVendor returns orders newest first.
	ListOrdersByVendor(ctx context.Context, vendorID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error)

	CreateMessage(ctx context.Context, in CreateMessageInput) (*domain.OrderMessage, error)
	// ListMessages returns the thread oldest first.
	ListMessages(ctx context.Context, orderID string) ([]domain.OrderMessage, error)
}
