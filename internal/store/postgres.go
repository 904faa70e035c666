package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

var _ Store = (*Postgres)(nil)

// Postgres backs the gateway with pgx. Uniqueness invariants are
// enforced by the UNIQUE constraints in the ensured schema, not by
// application-level pre-checks.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an initialized pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// isUniqueViolation reports a 23505 unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a 23503 foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (p *Postgres) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	u := domain.User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.Password, u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("email already registered")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE email = $1`, email))
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE id = $1`, id))
}

func (p *Postgres) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) CreateVendor(ctx context.Context, in CreateVendorInput) (*domain.Vendor, *domain.User, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	v := domain.Vendor{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		VendorName:  in.VendorName,
		Description: in.Description,
		Location:    in.Location,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO vendors (id, user_id, vendor_name, description, location, rating, created_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6)`,
		v.ID, v.UserID, v.VendorName, v.Description, v.Location, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.Conflict("user already has vendor profile")
		}
		if isForeignKeyViolation(err) {
			return nil, nil, domain.NotFound("user not found")
		}
		return nil, nil, fmt.Errorf("insert vendor: %w", err)
	}

	var u domain.User
	err = tx.QueryRow(ctx,
		`UPDATE users SET role = $1 WHERE id = $2
		 RETURNING id, name, email, password, role, created_at`,
		domain.RoleVendor, in.UserID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("upgrade role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	v.Email = u.Email
	return &v, &u, nil
}

const vendorJoin = `SELECT v.id, v.user_id, v.vendor_name, v.description, v.location, v.rating, v.created_at, u.email
	FROM vendors v LEFT JOIN users u ON v.user_id = u.id`

func (p *Postgres) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := p.pool.Query(ctx, vendorJoin+` ORDER BY v.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var out []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.UserID, &v.VendorName, &v.Description, &v.Location, &v.Rating, &v.CreatedAt, &v.Email); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *Postgres) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	var v domain.Vendor
	err := p.pool.QueryRow(ctx, vendorJoin+` WHERE v.id = $1`, id).
		Scan(&v.ID, &v.UserID, &v.VendorName, &v.Description, &v.Location, &v.Rating, &v.CreatedAt, &v.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

func (p *Postgres) CreateService(ctx context.Context, in CreateServiceInput) (*domain.Service, error) {
	var vendorName string
	err := p.pool.QueryRow(ctx, `SELECT vendor_name FROM vendors WHERE id = $1`, in.VendorID).Scan(&vendorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}

	s := domain.Service{
		ID:         uuid.New().String(),
		VendorID:   in.VendorID,
		Title:      in.Title,
		Price:      in.Price,
		Duration:   in.Duration,
		Category:   in.Category,
		ImageURL:   in.ImageURL,
		VendorName: vendorName,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO services (id, vendor_id, title, price, duration, category, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.VendorID, s.Title, s.Price, s.Duration, s.Category, s.ImageURL, s.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return &s, nil
}

const serviceJoin = `SELECT s.id, s.vendor_id, s.title, s.price, s.duration, s.category, s.image_url, s.created_at, COALESCE(v.vendor_name, '')
	FROM services s LEFT JOIN vendors v ON s.vendor_id = v.id`

func (p *Postgres) UpdateService(ctx context.Context, id string, in UpdateServiceInput) (*domain.Service, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE services SET title = $1, price = $2, duration = $3, category = $4,
		 image_url = COALESCE($5, image_url) WHERE id = $6`,
		in.Title, in.Price, in.Duration, in.Category, in.ImageURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NotFound("Service not found")
	}
	return p.getService(ctx, id)
}

func (p *Postgres) getService(ctx context.Context, id string) (*domain.Service, error) {
	var s domain.Service
	err := p.pool.QueryRow(ctx, serviceJoin+` WHERE s.id = $1`, id).
		Scan(&s.ID, &s.VendorID, &s.Title, &s.Price, &s.Duration, &s.Category, &s.ImageURL, &s.CreatedAt, &s.VendorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Service not found")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &s, nil
}

func (p *Postgres) DeleteService(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Service not found")
	}
	return nil
}

func (p *Postgres) ListServices(ctx context.Context) ([]domain.Service, error) {
	return p.queryServices(ctx, serviceJoin+` ORDER BY s.created_at ASC`)
}

func (p *Postgres) ListServicesByVendor(ctx context.Context, vendorID string) ([]domain.Service, error) {
	return p.queryServices(ctx, serviceJoin+` WHERE s.vendor_id = $1 ORDER BY s.created_at ASC`, vendorID)
}

func (p *Postgres) queryServices(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.VendorID, &s.Title, &s.Price, &s.Duration, &s.Category, &s.ImageURL, &s.CreatedAt, &s.VendorName); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	// Resolve join fields up front; the FK constraints still back the
	// existence checks against a concurrent delete.
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, in.UserID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.NotFound("user not found")
	}
	var vendorName string
	err := p.pool.QueryRow(ctx, `SELECT vendor_name FROM vendors WHERE id = $1`, in.VendorID).Scan(&vendorName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	var title string
	err = p.pool.QueryRow(ctx, `SELECT title FROM services WHERE id = $1`, in.ServiceID).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Service not found")
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	now := time.Now().UTC()
	o := domain.Order{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		VendorID:    in.VendorID,
		ServiceID:   in.ServiceID,
		Date:        now,
		ScheduledAt: in.ScheduledAt,
		Notes:       in.Notes,
		Total:       in.Total,
		Status:      domain.StatusPending,
		Title:       title,
		VendorName:  vendorName,
		UpdatedAt:   now,
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, vendor_id, service_id, date, scheduled_at, notes, total, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.UserID, o.VendorID, o.ServiceID, o.Date, o.ScheduledAt, o.Notes, o.Total, o.Status, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("referenced entity not found")
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

const orderJoin = `SELECT o.id, o.user_id, o.vendor_id, o.service_id, o.date, o.scheduled_at, o.notes, o.total, o.status, o.updated_at,
	s.title, v.vendor_name
	FROM orders o
	JOIN services s ON o.service_id = s.id
	JOIN vendors v ON o.vendor_id = v.id`

func (p *Postgres) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := p.pool.QueryRow(ctx, orderJoin+` WHERE o.id = $1`, id).Scan(
		&o.ID, &o.UserID, &o.VendorID, &o.ServiceID, &o.Date, &o.ScheduledAt, &o.Notes,
		&o.Total, &o.Status, &o.UpdatedAt, &o.Title, &o.VendorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("Order not found")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (p *Postgres) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return p.queryOrders(ctx, orderJoin+` WHERE o.user_id = $1 ORDER BY o.date ASC`, userID)
}

func (p *Postgres) ListOrdersByVendor(ctx context.Context, vendorID string) ([]domain.Order, error) {
	return p.queryOrders(ctx, orderJoin+` WHERE o.vendor_id = $1 ORDER BY o.date DESC`, vendorID)
}

func (p *Postgres) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.VendorID, &o.ServiceID, &o.Date, &o.ScheduledAt, &o.Notes,
			&o.Total, &o.Status, &o.UpdatedAt, &o.Title, &o.VendorName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NotFound("Order not found")
	}
	return p.GetOrder(ctx, id)
}

func (p *Postgres) CreateMessage(ctx context.Context, in CreateMessageInput) (*domain.OrderMessage, error) {
	var senderName string
	err := p.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, in.SenderID).Scan(&senderName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("get sender: %w", err)
	}

	msg := domain.OrderMessage{
		ID:         uuid.New().String(),
		OrderID:    in.OrderID,
		SenderID:   in.SenderID,
		Text:       in.Text,
		ClientRef:  in.ClientRef,
		SenderName: senderName,
		CreatedAt:  time.Now().UTC(),
	}
	var clientRef *string
	if in.ClientRef != "" {
		clientRef = &in.ClientRef
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO order_messages (id, order_id, sender_id, text, client_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.OrderID, msg.SenderID, msg.Text, clientRef, msg.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("Order not found")
		}
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (p *Postgres) ListMessages(ctx context.Context, orderID string) ([]domain.OrderMessage, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT m.id, m.order_id, m.sender_id, m.text, COALESCE(m.client_ref, ''), m.created_at, COALESCE(u.name, '')
		 FROM order_messages m LEFT JOIN users u ON m.sender_id = u.id
		 WHERE m.order_id = $1 ORDER BY m.created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderMessage
	for rows.Next() {
		var m domain.OrderMessage
		if err := rows.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.Text, &m.ClientRef, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
