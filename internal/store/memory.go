package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

var _ Store = (*Memory)(nil)

// Memory is the in-process backend. All access is serialized through
// one mutex, which also closes the check-then-insert races the
// Postgres backend closes with unique constraints.
type Memory struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	vendors  map[string]*domain.Vendor
	services map[string]*domain.Service
	orders   map[string]*domain.Order
	messages map[string][]domain.OrderMessage // keyed by order id, append-only
	seq      int64
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]*domain.User),
		vendors:  make(map[string]*domain.Vendor),
		services: make(map[string]*domain.Service),
		orders:   make(map[string]*domain.Order),
		messages: make(map[string][]domain.OrderMessage),
	}
}

// now returns a strictly increasing timestamp so list orderings are
// stable even when several writes land in the same wall-clock tick.
func (m *Memory) now() time.Time {
	m.seq++
	return time.Now().UTC().Add(time.Duration(m.seq) * time.Microsecond)
}

func (m *Memory) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == in.Email {
			return nil, domain.Conflict("email already registered")
		}
	}
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      domain.RoleUser,
		CreatedAt: m.now(),
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) CreateVendor(ctx context.Context, in CreateVendorInput) (*domain.Vendor, *domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[in.UserID]
	if !ok {
		return nil, nil, domain.NotFound("user not found")
	}
	for _, v := range m.vendors {
		if v.UserID == in.UserID {
			return nil, nil, domain.Conflict("user already has vendor profile")
		}
	}
	v := &domain.Vendor{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		VendorName:  in.VendorName,
		Description: in.Description,
		Location:    in.Location,
		CreatedAt:   m.now(),
	}
	m.vendors[v.ID] = v
	u.Role = domain.RoleVendor

	vcp := *v
	vcp.Email = u.Email
	ucp := *u
	return &vcp, &ucp, nil
}

func (m *Memory) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		cp := *v
		if u, ok := m.users[v.UserID]; ok {
			cp.Email = u.Email
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vendors[id]
	if !ok {
		return nil, domain.NotFound("Vendor not found")
	}
	cp := *v
	if u, ok := m.users[v.UserID]; ok {
		cp.Email = u.Email
	}
	return &cp, nil
}

func (m *Memory) CreateService(ctx context.Context, in CreateServiceInput) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vendors[in.VendorID]
	if !ok {
		return nil, domain.NotFound("Vendor not found")
	}
	s := &domain.Service{
		ID:        uuid.New().String(),
		VendorID:  in.VendorID,
		Title:     in.Title,
		Price:     in.Price,
		Duration:  in.Duration,
		Category:  in.Category,
		ImageURL:  in.ImageURL,
		CreatedAt: m.now(),
	}
	m.services[s.ID] = s
	cp := *s
	cp.VendorName = v.VendorName
	return &cp, nil
}

func (m *Memory) UpdateService(ctx context.Context, id string, in UpdateServiceInput) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.services[id]
	if !ok {
		return nil, domain.NotFound("Service not found")
	}
	s.Title = in.Title
	s.Price = in.Price
	s.Duration = in.Duration
	s.Category = in.Category
	if in.ImageURL != nil {
		s.ImageURL = in.ImageURL
	}
	cp := *s
	if v, ok := m.vendors[s.VendorID]; ok {
		cp.VendorName = v.VendorName
	}
	return &cp, nil
}

func (m *Memory) DeleteService(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.services[id]; !ok {
		return domain.NotFound("Service not found")
	}
	delete(m.services, id)
	return nil
}

func (m *Memory) ListServices(ctx context.Context) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		cp := *s
		if v, ok := m.vendors[s.VendorID]; ok {
			cp.VendorName = v.VendorName
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListServicesByVendor(ctx context.Context, vendorID string) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Service
	for _, s := range m.services {
		if s.VendorID != vendorID {
			continue
		}
		cp := *s
		if v, ok := m.vendors[s.VendorID]; ok {
			cp.VendorName = v.VendorName
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[in.UserID]; !ok {
		return nil, domain.NotFound("user not found")
	}
	v, ok := m.vendors[in.VendorID]
	if !ok {
		return nil, domain.NotFound("Vendor not found")
	}
	s, ok := m.services[in.ServiceID]
	if !ok {
		return nil, domain.NotFound("Service not found")
	}

	now := m.now()
	o := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		VendorID:    in.VendorID,
		ServiceID:   in.ServiceID,
		Date:        now,
		ScheduledAt: in.ScheduledAt,
		Notes:       in.Notes,
		Total:       in.Total,
		Status:      domain.StatusPending,
		UpdatedAt:   now,
	}
	m.orders[o.ID] = o
	cp := *o
	cp.Title = s.Title
	cp.VendorName = v.VendorName
	return &cp, nil
}

// joinOrder fills the joined fields. Caller holds the lock.
func (m *Memory) joinOrder(o *domain.Order) domain.Order {
	cp := *o
	if s, ok := m.services[o.ServiceID]; ok {
		cp.Title = s.Title
	}
	if v, ok := m.vendors[o.VendorID]; ok {
		cp.VendorName = v.VendorName
	}
	return cp
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, domain.NotFound("Order not found")
	}
	cp := m.joinOrder(o)
	return &cp, nil
}

func (m *Memory) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, m.joinOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ListOrdersByVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Order
	for _, o := range m.orders {
		if o.VendorID == vendorID {
			out = append(out, m.joinOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, domain.NotFound("Order not found")
	}
	o.Status = status
	o.UpdatedAt = m.now()
	cp := m.joinOrder(o)
	return &cp, nil
}

func (m *Memory) CreateMessage(ctx context.Context, in CreateMessageInput) (*domain.OrderMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[in.OrderID]; !ok {
		return nil, domain.NotFound("Order not found")
	}
	sender, ok := m.users[in.SenderID]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	msg := domain.OrderMessage{
		ID:         uuid.New().String(),
		OrderID:    in.OrderID,
		SenderID:   in.SenderID,
		Text:       in.Text,
		ClientRef:  in.ClientRef,
		SenderName: sender.Name,
		CreatedAt:  m.now(),
	}
	m.messages[in.OrderID] = append(m.messages[in.OrderID], msg)
	cp := msg
	return &cp, nil
}

func (m *Memory) ListMessages(ctx context.Context, orderID string) ([]domain.OrderMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[orderID]
	out := make([]domain.OrderMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
