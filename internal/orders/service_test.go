package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/domain"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
)

type published struct {
	Topic   string
	Kind    string
	Payload any
}

// recordingBroker captures publishes instead of delivering them.
type recordingBroker struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBroker) Publish(topic, kind string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{Topic: topic, Kind: kind, Payload: payload})
}

func (b *recordingBroker) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]published, len(b.events))
	copy(out, b.events)
	return out
}

type fixture struct {
	svc    *Service
	broker *recordingBroker
	store  *store.Memory
	buyer  *domain.User
	vendor *domain.Vendor
	listed *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	owner, err := m.CreateUser(ctx, store.CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "x"})
	require.NoError(t, err)
	v, _, err := m.CreateVendor(ctx, store.CreateVendorInput{UserID: owner.ID, VendorName: "Ana Moving"})
	require.NoError(t, err)
	s, err := m.CreateService(ctx, store.CreateServiceInput{VendorID: v.ID, Title: "Full move", Price: 100000})
	require.NoError(t, err)
	buyer, err := m.CreateUser(ctx, store.CreateUserInput{Name: "Ben", Email: "ben@x.com", Password: "x"})
	require.NoError(t, err)

	b := &recordingBroker{}
	return &fixture{
		svc:    NewService(m, b, zerolog.Nop()),
		broker: b,
		store:  m,
		buyer:  buyer,
		vendor: v,
		listed: s,
	}
}

func TestCreateEmitsToBothRooms(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID:    f.buyer.ID,
		VendorID:  f.vendor.ID,
		ServiceID: f.listed.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Zero(t, o.Total)

	events := f.broker.all()
	require.Len(t, events, 2)
	assert.Equal(t, hub.VendorTopic(f.vendor.ID), events[0].Topic)
	assert.Equal(t, EventNewOrder, events[0].Kind)
	assert.Equal(t, hub.OrderTopic(o.ID), events[1].Topic)
	assert.Equal(t, EventOrderCreated, events[1].Kind)

	// Payloads are the joined order so subscribers render without a
	// follow-up fetch.
	for _, evt := range events {
		payload, ok := evt.Payload.(*domain.Order)
		require.True(t, ok)
		assert.Equal(t, o.ID, payload.ID)
		assert.Equal(t, "Full move", payload.Title)
		assert.Equal(t, "Ana Moving", payload.VendorName)
	}
}

func TestCreateMissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: f.buyer.ID, VendorID: f.vendor.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.broker.all())
}

func TestCreateUnknownVendorEmitsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:    f.buyer.ID,
		VendorID:  "00000000-0000-0000-0000-000000000000",
		ServiceID: f.listed.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.broker.all())
}

func TestSetStatusEmitsOrderUpdated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, CreateInput{UserID: f.buyer.ID, VendorID: f.vendor.ID, ServiceID: f.listed.ID})
	require.NoError(t, err)

	updated, err := f.svc.SetStatus(ctx, o.ID, domain.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, updated.Status)

	events := f.broker.all()
	require.Len(t, events, 4) // 2 from create, 2 from update
	assert.Equal(t, hub.VendorTopic(f.vendor.ID), events[2].Topic)
	assert.Equal(t, EventOrderUpdated, events[2].Kind)
	assert.Equal(t, hub.OrderTopic(o.ID), events[3].Topic)
	assert.Equal(t, EventOrderUpdated, events[3].Kind)
}

func TestSetStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, CreateInput{UserID: f.buyer.ID, VendorID: f.vendor.ID, ServiceID: f.listed.ID})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, o.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SetStatus(ctx, o.ID, "shipped")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// completed is not reachable straight from pending
	_, err = f.svc.SetStatus(ctx, o.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SetStatus(ctx, "missing", domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusWorkflowToCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, CreateInput{UserID: f.buyer.ID, VendorID: f.vendor.ID, ServiceID: f.listed.ID})
	require.NoError(t, err)

	for _, status := range []string{domain.StatusAccepted, domain.StatusInProgress, domain.StatusCompleted} {
		o, err = f.svc.SetStatus(ctx, o.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, o.Status)
	}

	// Terminal: nothing moves out of completed.
	_, err = f.svc.SetStatus(ctx, o.ID, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, prep := range [][]string{
		{},
		{domain.StatusAccepted},
		{domain.StatusAccepted, domain.StatusInProgress},
	} {
		o, err := f.svc.Create(ctx, CreateInput{UserID: f.buyer.ID, VendorID: f.vendor.ID, ServiceID: f.listed.ID})
		require.NoError(t, err)
		for _, status := range prep {
			_, err = f.svc.SetStatus(ctx, o.ID, status)
			require.NoError(t, err)
		}
		got, err := f.svc.SetStatus(ctx, o.ID, domain.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
	}
}
