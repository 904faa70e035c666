package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/config"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
)

type testEnv struct {
	srv *httptest.Server
	hub *hub.Hub
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Env: "development", Name: "moveandclean"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpHours: 1},
		Upload: config.UploadConfig{Dir: t.TempDir()},
	}
	h := hub.New(zerolog.Nop())
	e := New(Deps{Cfg: cfg, Store: store.NewMemory(), Hub: h, Log: zerolog.Nop()})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, hub: h}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, env.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func (env *testEnv) register(t *testing.T, name, email string) domain.User {
	t.Helper()
	var resp struct {
		User domain.User `json:"user"`
	}
	code := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": name, "email": email, "password": "secret123",
	}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, resp.User.ID)
	return resp.User
}

func (env *testEnv) onboardVendor(t *testing.T, userID, name string) domain.Vendor {
	t.Helper()
	var resp struct {
		Vendor domain.Vendor `json:"vendor"`
		User   domain.User   `json:"user"`
	}
	code := env.do(t, http.MethodPost, "/api/vendors", map[string]string{
		"user_id": userID, "vendor_name": name,
	}, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.RoleVendor, resp.User.Role)
	return resp.Vendor
}

func (env *testEnv) dialWS(t *testing.T, joinType, id, topic string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.WriteJSON(map[string]string{"type": joinType, "id": id}))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && env.hub.Subscribers(topic) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	require.NotZero(t, env.hub.Subscribers(topic), "join never registered")
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&evt))
	return evt.Type, evt.Data
}

func TestMarketplaceFlow(t *testing.T) {
	env := newEnv(t)

	owner := env.register(t, "Ana", "ana@example.com")
	vendor := env.onboardVendor(t, owner.ID, "Ana Moving")

	var svc domain.Service
	code := env.do(t, http.MethodPost, "/api/services", map[string]any{
		"vendor_id": vendor.ID,
		"title":     "Full apartment move",
		"price":     100000,
		"category":  "moving",
	}, &svc)
	require.Equal(t, http.StatusOK, code)

	buyer := env.register(t, "Ben", "ben@example.com")

	// Vendor dashboard listens before the order lands.
	vendorConn := env.dialWS(t, "join_vendor", vendor.ID, hub.VendorTopic(vendor.ID))

	var created struct {
		Success bool         `json:"success"`
		Order   domain.Order `json:"order"`
	}
	code = env.do(t, http.MethodPost, "/api/orders", map[string]string{
		"user_id":    buyer.ID,
		"vendor_id":  vendor.ID,
		"service_id": svc.ID,
	}, &created)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, created.Success)
	assert.Equal(t, domain.StatusPending, created.Order.Status)
	assert.Zero(t, created.Order.Total)
	assert.Equal(t, "Full apartment move", created.Order.Title)
	assert.Equal(t, "Ana Moving", created.Order.VendorName)

	kind, data := readWS(t, vendorConn)
	assert.Equal(t, "new_order", kind)
	var pushed domain.Order
	require.NoError(t, json.Unmarshal(data, &pushed))
	assert.Equal(t, created.Order.ID, pushed.ID)

	// Buyer's order list shows the joined shape.
	var mine []domain.Order
	code = env.do(t, http.MethodGet, "/api/orders/"+buyer.ID, nil, &mine)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, mine, 1)
	assert.Equal(t, "Full apartment move", mine[0].Title)
	assert.Equal(t, "Ana Moving", mine[0].VendorName)

	// Chat: both sides in the order room.
	orderConn := env.dialWS(t, "join_order", created.Order.ID, hub.OrderTopic(created.Order.ID))

	var msg domain.OrderMessage
	code = env.do(t, http.MethodPost, "/api/orders/"+created.Order.ID+"/messages", map[string]string{
		"sender_id": buyer.ID,
		"text":      "hi, is tomorrow ok?",
	}, &msg)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ben", msg.SenderName)

	kind, data = readWS(t, orderConn)
	assert.Equal(t, "order_message", kind)
	var pushedMsg domain.OrderMessage
	require.NoError(t, json.Unmarshal(data, &pushedMsg))
	assert.Equal(t, msg.ID, pushedMsg.ID)
	assert.Equal(t, "hi, is tomorrow ok?", pushedMsg.Text)

	var thread []domain.OrderMessage
	code = env.do(t, http.MethodGet, "/api/orders/"+created.Order.ID+"/messages", nil, &thread)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, thread, 1)

	// Vendor accepts; both rooms hear about it.
	var updated domain.Order
	code = env.do(t, http.MethodPut, "/api/orders/"+created.Order.ID, map[string]string{
		"status": "accepted",
	}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.StatusAccepted, updated.Status)

	kind, _ = readWS(t, vendorConn)
	assert.Equal(t, "order_updated", kind)
	kind, _ = readWS(t, orderConn)
	assert.Equal(t, "order_updated", kind)
}

func TestVendorOnboardingOncePerUser(t *testing.T) {
	env := newEnv(t)
	owner := env.register(t, "Ana", "ana@example.com")
	env.onboardVendor(t, owner.ID, "Ana Moving")

	var resp struct {
		Message string `json:"message"`
	}
	code := env.do(t, http.MethodPost, "/api/vendors", map[string]string{
		"user_id": owner.ID, "vendor_name": "Ana Moving Again",
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, resp.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newEnv(t)
	env.register(t, "Ana", "ana@example.com")

	var resp struct {
		Message string `json:"message"`
	}
	code := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Other", "email": "ana@example.com", "password": "secret123",
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLoginAndMe(t *testing.T) {
	env := newEnv(t)
	u := env.register(t, "Ana", "ana@example.com")

	var login struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	code := env.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	}, &login)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, u.ID, login.User.ID)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
	assert.Equal(t, u.ID, me.User.ID)

	// Wrong password and missing token are both rejected.
	code = env.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = env.do(t, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestServiceCRUD(t *testing.T) {
	env := newEnv(t)
	owner := env.register(t, "Ana", "ana@example.com")
	vendor := env.onboardVendor(t, owner.ID, "Ana Cleaning")

	var svc domain.Service
	code := env.do(t, http.MethodPost, "/api/services", map[string]any{
		"vendor_id": vendor.ID, "title": "Deep clean", "price": 50000,
	}, &svc)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ana Cleaning", svc.VendorName)

	var updated domain.Service
	code = env.do(t, http.MethodPut, "/api/services/"+svc.ID, map[string]any{
		"title": "Deep clean plus", "price": 60000,
	}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Deep clean plus", updated.Title)
	assert.Equal(t, float64(60000), updated.Price)

	var listed []domain.Service
	code = env.do(t, http.MethodGet, "/api/vendors/"+vendor.ID+"/services", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, listed, 1)

	var del struct {
		Success bool `json:"success"`
	}
	code = env.do(t, http.MethodDelete, "/api/services/"+svc.ID, nil, &del)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, del.Success)

	code = env.do(t, http.MethodGet, "/api/services", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, listed)
}

func TestOrderLookupNotFound(t *testing.T) {
	env := newEnv(t)

	var resp struct {
		Message string `json:"message"`
	}
	code := env.do(t, http.MethodGet, "/api/orders/order/missing", nil, &resp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", resp.Message)
}

func TestUploadRoundtrip(t *testing.T) {
	env := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	res, err := http.Post(env.srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	require.True(t, strings.HasPrefix(resp.URL, "/uploads/"), "got %q", resp.URL)

	got, err := http.Get(env.srv.URL + resp.URL)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(body))
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	var resp map[string]string
	code := env.do(t, http.MethodGet, "/health", nil, &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
}

func TestVendorOrdersNewestFirst(t *testing.T) {
	env := newEnv(t)
	owner := env.register(t, "Ana", "ana@example.com")
	vendor := env.onboardVendor(t, owner.ID, "Ana Moving")

	var svc domain.Service
	code := env.do(t, http.MethodPost, "/api/services", map[string]any{
		"vendor_id": vendor.ID, "title": "Small move", "price": 40000,
	}, &svc)
	require.Equal(t, http.StatusOK, code)

	buyer := env.register(t, "Ben", "ben@example.com")
	var ids []string
	for i := 0; i < 3; i++ {
		var created struct {
			Order domain.Order `json:"order"`
		}
		code = env.do(t, http.MethodPost, "/api/orders", map[string]string{
			"user_id": buyer.ID, "vendor_id": vendor.ID, "service_id": svc.ID,
		}, &created)
		require.Equal(t, http.StatusOK, code, fmt.Sprintf("order %d", i))
		ids = append(ids, created.Order.ID)
	}

	var listed []domain.Order
	code = env.do(t, http.MethodGet, "/api/vendors/"+vendor.ID+"/orders", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, listed, 3)
	for i := range ids {
		assert.Equal(t, ids[len(ids)-1-i], listed[i].ID)
	}
}
