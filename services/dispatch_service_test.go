package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto-supply/models"
)

const testSender = "orders@resto-supply.local"

func newTestDispatchService() (*DispatchService, *memStore, *fakeTransport) {
	store := newMemStore()
	directory := &fakeDirectory{emails: map[int]string{
		1: "manager@trattoria.example",
		2: "manager@osteria.example",
	}}
	transport := &fakeTransport{failTo: map[string]bool{}}
	svc := NewDispatchService(store, directory, transport, testSender)
	return svc, store, transport
}

// seedOrder stores an unsent order with dispatch-ready lines and returns its id.
func seedOrder(t *testing.T, store *memStore, ownerID, restaurantID int, lines []models.OrderLine) int {
	t.Helper()

	var id int
	err := store.InTx(context.Background(), func(tx OrderTx) error {
		order := &models.Order{
			UserID:         ownerID,
			RestaurantID:   restaurantID,
			RestaurantName: "Trattoria",
			CreatedAt:      time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		}
		if err := tx.InsertOrder(context.Background(), order); err != nil {
			return err
		}
		total := 0.0
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := tx.InsertLine(context.Background(), &lines[i]); err != nil {
				return err
			}
			total += lines[i].Subtotal()
		}
		id = order.ID
		return tx.SetOrderTotal(context.Background(), order.ID, total)
	})
	require.NoError(t, err)
	return id
}

func twoSupplierLines() []models.OrderLine {
	return []models.OrderLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 5, ProductName: "Tomatoes", SupplierID: 100, SupplierEmail: "fresh@sup.example"},
		{ProductID: 2, Quantity: 1, UnitPrice: 3, ProductName: "Basil", SupplierID: 100, SupplierEmail: "fresh@sup.example"},
		{ProductID: 3, Quantity: 4, UnitPrice: 7, ProductName: "Flour", SupplierID: 200, SupplierEmail: "dry@sup.example"},
	}
}

func TestSendOneGroupsLinesPerSupplier(t *testing.T) {
	svc, store, transport := newTestDispatchService()
	id := seedOrder(t, store, 1, 7, twoSupplierLines())

	require.NoError(t, svc.SendOne(context.Background(), id))

	require.Len(t, transport.sent, 3, "one summary plus one message per supplier")

	summary := transport.sent[0]
	assert.Equal(t, "manager@trattoria.example", summary.to)
	assert.Equal(t, testSender, summary.from)
	assert.Contains(t, summary.body, "Tomatoes")
	assert.Contains(t, summary.body, "Flour")
	assert.Contains(t, summary.body, "41.00")

	fresh := transport.sent[1]
	assert.Equal(t, "fresh@sup.example", fresh.to)
	assert.Equal(t, "manager@trattoria.example", fresh.from, "supplier mail carries the manager as sender")
	assert.Contains(t, fresh.body, "Tomatoes")
	assert.Contains(t, fresh.body, "Basil")
	assert.NotContains(t, fresh.body, "Flour")

	dry := transport.sent[2]
	assert.Equal(t, "dry@sup.example", dry.to)
	assert.Contains(t, dry.body, "Flour")

	assert.True(t, store.orders[id].Sent)
}

func TestSendOneIsAllOrNothing(t *testing.T) {
	svc, store, transport := newTestDispatchService()
	id := seedOrder(t, store, 1, 7, twoSupplierLines())
	transport.failTo["dry@sup.example"] = true

	err := svc.SendOne(context.Background(), id)

	var terr *models.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "dry@sup.example", terr.Recipient)
	assert.False(t, store.orders[id].Sent, "a failed recipient must leave the order unsent")
}

func TestSendOneUnknownOrAlreadySent(t *testing.T) {
	svc, store, _ := newTestDispatchService()
	id := seedOrder(t, store, 1, 7, twoSupplierLines())

	assert.True(t, models.IsNotFound(svc.SendOne(context.Background(), 999)))

	require.NoError(t, svc.SendOne(context.Background(), id))
	assert.True(t, models.IsNotFound(svc.SendOne(context.Background(), id)))
}

func TestFlushAllIsolatesFailingOrders(t *testing.T) {
	svc, store, transport := newTestDispatchService()
	ctx := context.Background()

	failing := seedOrder(t, store, 1, 7, twoSupplierLines())
	healthy := seedOrder(t, store, 2, 8, []models.OrderLine{
		{ProductID: 3, Quantity: 1, UnitPrice: 7, ProductName: "Flour", SupplierID: 200, SupplierEmail: "dry2@sup.example"},
	})
	transport.failTo["dry@sup.example"] = true

	sent, err := svc.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.False(t, store.orders[failing].Sent)
	assert.True(t, store.orders[healthy].Sent)

	// Next flush retries the failed order from scratch: every recipient gets
	// the message again.
	transport.failTo = map[string]bool{}
	transport.sent = nil

	sent, err = svc.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, store.orders[failing].Sent)
	require.Len(t, transport.sent, 3)
}

// blockingTransport parks the first send until released and records every
// delivery, so a flush can be held mid-run while another call arrives.
type blockingTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (t *blockingTransport) Send(to, from, subject, body string) error {
	t.once.Do(func() {
		close(t.started)
		<-t.release
	})
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentMessage{to: to, from: from, subject: subject, body: body})
	return nil
}

func TestFlushAllCollapsesOverlappingCalls(t *testing.T) {
	store := newMemStore()
	directory := &fakeDirectory{emails: map[int]string{1: "manager@trattoria.example"}}
	transport := &blockingTransport{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewDispatchService(store, directory, transport, testSender)

	id := seedOrder(t, store, 1, 7, twoSupplierLines())

	type outcome struct {
		sent int
		err  error
	}
	out := make(chan outcome, 2)
	flush := func() {
		n, err := svc.FlushAll(context.Background())
		out <- outcome{sent: n, err: err}
	}

	go flush()
	<-transport.started
	// The first flush is parked inside its first send; a second call arriving
	// now must join that run instead of starting its own.
	go flush()
	time.Sleep(50 * time.Millisecond)
	close(transport.release)

	for i := 0; i < 2; i++ {
		o := <-out
		require.NoError(t, o.err)
		assert.Equal(t, 1, o.sent)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	assert.Len(t, transport.sent, 3, "overlapping flushes must share one set of sends")
	assert.True(t, store.orders[id].Sent)
}

func TestFlushAllEmpty(t *testing.T) {
	svc, _, transport := newTestDispatchService()

	sent, err := svc.FlushAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, transport.sent)
}
