package sync

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

// VendorOrders mirrors the vendor dashboard: the vendor's order list,
// newest first, kept current by new_order and order_updated pushes.
type VendorOrders struct {
	vendorID string
	httpc    *http.Client
	conn     *websocket.Conn

	mu     sync.Mutex
	orders []domain.Order

	done chan struct{}
}

// OpenVendorOrders fetches the current list, then subscribes to the
// vendor's room.
func OpenVendorOrders(baseURL, vendorID string) (*VendorOrders, error) {
	v := &VendorOrders{
		vendorID: vendorID,
		httpc:    defaultHTTPClient(),
		done:     make(chan struct{}),
	}

	if err := getJSON(v.httpc, baseURL+"/api/vendors/"+vendorID+"/orders", &v.orders); err != nil {
		return nil, fmt.Errorf("fetch vendor orders: %w", err)
	}

	conn, err := dialSocket(baseURL, "join_vendor", vendorID)
	if err != nil {
		return nil, err
	}
	v.conn = conn
	go v.readLoop()
	return v, nil
}

func (v *VendorOrders) readLoop() {
	defer close(v.done)
	for {
		var evt apiEvent
		if err := v.conn.ReadJSON(&evt); err != nil {
			return
		}
		var o domain.Order
		if json.Unmarshal(evt.Data, &o) != nil {
			continue
		}
		switch evt.Type {
		case "new_order":
			v.prepend(o)
		case "order_updated":
			v.replaceByID(o)
		}
	}
}

func (v *VendorOrders) prepend(o domain.Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, existing := range v.orders {
		if existing.ID == o.ID {
			return
		}
	}
	v.orders = append([]domain.Order{o}, v.orders...)
}

func (v *VendorOrders) replaceByID(o domain.Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.orders {
		if existing.ID == o.ID {
			v.orders[i] = o
			return
		}
	}
}

// Orders returns a copy of the current list.
func (v *VendorOrders) Orders() []domain.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// Close drops the live subscription.
func (v *VendorOrders) Close() {
	v.conn.Close()
	<-v.done
}
