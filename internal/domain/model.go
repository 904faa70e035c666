package domain

import "time"

// User is an account holder. Role starts as "user" and is upgraded to
// "vendor" when a vendor profile is created for it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never returned
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleUser   = "user"
	RoleVendor = "vendor"
)

// Vendor is a service provider profile owned by exactly one user.
// Email is joined from the owning user on reads.
type Vendor struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	VendorName  string    `json:"vendor_name"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Rating      float64   `json:"rating"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service is a listing owned by a vendor. VendorName is joined on
// reads so clients render cards without a follow-up fetch.
type Service struct {
	ID         string    `json:"id"`
	VendorID   string    `json:"vendor_id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	Duration   string    `json:"duration"`
	Category   string    `json:"category"`
	ImageURL   *string   `json:"image_url"`
	VendorName string    `json:"vendor_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Order references a buyer, a vendor and a service. Title and
// VendorName are always joined; pushed events carry the same shape.
type Order struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	VendorID    string     `json:"vendor_id"`
	ServiceID   string     `json:"service_id"`
	Date        time.Time  `json:"date"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       *string    `json:"notes"`
	Total       float64    `json:"total"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	VendorName  string     `json:"vendor_name"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderMessage is one append-only chat entry in an order thread.
// ClientRef echoes the correlation id a client sent with the message
// so optimistic local copies can be reconciled.
type OrderMessage struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	SenderID   string    `json:"sender_id"`
	Text       string    `json:"text"`
	ClientRef  string    `json:"client_ref,omitempty"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}
