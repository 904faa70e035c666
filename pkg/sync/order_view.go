package sync

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
)

// OrderView mirrors one order-detail page: the order record plus its
// chat thread, kept current by pushed order_updated and order_message
// events. Sent messages are appended optimistically and reconciled by
// client_ref once the server copy arrives.
type OrderView struct {
	base    string
	orderID string
	httpc   *http.Client
	conn    *websocket.Conn

	mu       sync.Mutex
	order    domain.Order
	messages []domain.OrderMessage
	seen     map[string]struct{} // server-assigned message ids

	done chan struct{}
}

// OpenOrderView fetches the order and its messages, then subscribes
// to the order's room.
func OpenOrderView(baseURL, orderID string) (*OrderView, error) {
	v := &OrderView{
		base:    baseURL,
		orderID: orderID,
		httpc:   defaultHTTPClient(),
		seen:    make(map[string]struct{}),
		done:    make(chan struct{}),
	}

	if err := getJSON(v.httpc, baseURL+"/api/orders/order/"+orderID, &v.order); err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	if err := getJSON(v.httpc, baseURL+"/api/orders/"+orderID+"/messages", &v.messages); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	for _, m := range v.messages {
		v.seen[m.ID] = struct{}{}
	}

	conn, err := dialSocket(baseURL, "join_order", orderID)
	if err != nil {
		return nil, err
	}
	v.conn = conn
	go v.readLoop()
	return v, nil
}

func (v *OrderView) readLoop() {
	defer close(v.done)
	for {
		var evt apiEvent
		if err := v.conn.ReadJSON(&evt); err != nil {
			return
		}
		switch evt.Type {
		case "order_message":
			var msg domain.OrderMessage
			if json.Unmarshal(evt.Data, &msg) == nil {
				v.mergeMessage(msg)
			}
		case "order_updated", "order_created":
			var o domain.Order
			if json.Unmarshal(evt.Data, &o) == nil {
				v.mu.Lock()
				if o.ID == v.order.ID {
					v.order = o
				}
				v.mu.Unlock()
			}
		}
	}
}

// mergeMessage appends a pushed message unless it is already present,
// replacing an optimistic local entry that carries the same
// client_ref.
func (v *OrderView) mergeMessage(msg domain.OrderMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[msg.ID]; ok {
		return
	}
	if msg.ClientRef != "" {
		for i, m := range v.messages {
			if m.ClientRef == msg.ClientRef {
				v.messages[i] = msg
				v.seen[msg.ID] = struct{}{}
				return
			}
		}
	}
	v.messages = append(v.messages, msg)
	v.seen[msg.ID] = struct{}{}
}

// Send appends the message locally before the REST call resolves,
// then reconciles with the server copy.
func (v *OrderView) Send(senderID, text string) error {
	ref := uuid.New().String()

	v.mu.Lock()
	v.messages = append(v.messages, domain.OrderMessage{
		OrderID:   v.orderID,
		SenderID:  senderID,
		Text:      text,
		ClientRef: ref,
		CreatedAt: time.Now().UTC(),
	})
	v.mu.Unlock()

	var saved domain.OrderMessage
	err := postJSON(v.httpc, v.base+"/api/orders/"+v.orderID+"/messages", map[string]string{
		"sender_id":  senderID,
		"text":       text,
		"client_ref": ref,
	}, &saved)
	if err != nil {
		// Roll back the optimistic entry; prior state stays intact.
		v.mu.Lock()
		for i, m := range v.messages {
			if m.ClientRef == ref && m.ID == "" {
				v.messages = append(v.messages[:i], v.messages[i+1:]...)
				break
			}
		}
		v.mu.Unlock()
		return err
	}
	v.mergeByRef(saved)
	return nil
}

// mergeByRef swaps the optimistic entry for the saved server copy,
// unless the pushed event already did.
func (v *OrderView) mergeByRef(saved domain.OrderMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[saved.ID]; ok {
		return
	}
	for i, m := range v.messages {
		if m.ClientRef == saved.ClientRef {
			v.messages[i] = saved
			v.seen[saved.ID] = struct{}{}
			return
		}
	}
	v.messages = append(v.messages, saved)
	v.seen[saved.ID] = struct{}{}
}

// Order returns the current order snapshot.
func (v *OrderView) Order() domain.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.order
}

// Messages returns a copy of the current thread.
func (v *OrderView) Messages() []domain.OrderMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.OrderMessage, len(v.messages))
	copy(out, v.messages)
	return out
}

// Close drops the live subscription.
func (v *OrderView) Close() {
	v.conn.Close()
	<-v.done
}
