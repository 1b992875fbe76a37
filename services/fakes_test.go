package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"resto-supply/models"
)

// fakeClock reports a fixed instant that tests move explicitly.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// memStore is an in-memory OrderStore. It applies tx writes directly, which is
// enough for these tests: the services under test never write after a step
// that can fail, so no rollback path is exercised. The aggregation lock is a
// real mutex held until the transaction ends, like the advisory lock it
// stands in for.
type memStore struct {
	orders      map[int]*models.Order
	nextOrderID int
	nextLineID  int
	orphans     int64
	writes      int
	sentRows    []models.SentOrderRow

	aggMu     sync.Mutex
	lockCalls int
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[int]*models.Order), nextOrderID: 1, nextLineID: 1}
}

func (s *memStore) InTx(_ context.Context, fn func(tx OrderTx) error) error {
	tx := &memTx{s: s}
	err := fn(tx)
	if tx.locked {
		s.aggMu.Unlock()
	}
	return err
}

func (s *memStore) UnsentOrderIDs(context.Context) ([]int, error) {
	ids := []int{}
	for id, o := range s.orders {
		if !o.Sent {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *memStore) SentOrderRows(context.Context, []int) ([]models.SentOrderRow, error) {
	return s.sentRows, nil
}

func (s *memStore) unsentCount() int {
	n := 0
	for _, o := range s.orders {
		if !o.Sent {
			n++
		}
	}
	return n
}

type memTx struct {
	s      *memStore
	locked bool
}

func (t *memTx) LockAggregation(context.Context, int, int) error {
	t.s.aggMu.Lock()
	t.locked = true
	t.s.lockCalls++
	return nil
}

func (t *memTx) UnsentOrders(_ context.Context, ownerID, restaurantID int) ([]models.Order, error) {
	if !t.locked {
		return nil, fmt.Errorf("unsent orders read without holding the aggregation lock")
	}
	ids := []int{}
	for id, o := range t.s.orders {
		if !o.Sent && o.UserID == ownerID && o.RestaurantID == restaurantID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, *t.s.orders[id])
	}
	return orders, nil
}

func (t *memTx) LatestUnsentByOwner(_ context.Context, ownerID int) (*models.Order, error) {
	var latest *models.Order
	for _, o := range t.s.orders {
		if o.Sent || o.UserID != ownerID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	if latest == nil {
		return nil, &models.NotFoundError{Resource: "order"}
	}
	cp := *latest
	cp.Lines = append([]models.OrderLine(nil), latest.Lines...)
	return &cp, nil
}

func (t *memTx) UnsentOrderForDispatch(_ context.Context, orderID int) (*models.Order, error) {
	o, ok := t.s.orders[orderID]
	if !ok || o.Sent {
		return nil, &models.NotFoundError{Resource: "unsent order", ID: orderID}
	}
	cp := *o
	cp.Lines = append([]models.OrderLine(nil), o.Lines...)
	return &cp, nil
}

func (t *memTx) InsertOrder(_ context.Context, o *models.Order) error {
	t.s.writes++
	o.ID = t.s.nextOrderID
	t.s.nextOrderID++
	cp := *o
	t.s.orders[o.ID] = &cp
	return nil
}

func (t *memTx) InsertLine(_ context.Context, l *models.OrderLine) error {
	t.s.writes++
	o, ok := t.s.orders[l.OrderID]
	if !ok {
		return fmt.Errorf("no order %d", l.OrderID)
	}
	l.ID = t.s.nextLineID
	t.s.nextLineID++
	o.Lines = append(o.Lines, *l)
	return nil
}

func (t *memTx) UpdateLineQuantity(_ context.Context, lineID int, quantity float64) error {
	t.s.writes++
	for _, o := range t.s.orders {
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				o.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return fmt.Errorf("no line %d", lineID)
}

func (t *memTx) DeleteLine(_ context.Context, lineID int) error {
	t.s.writes++
	for _, o := range t.s.orders {
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("no line %d", lineID)
}

func (t *memTx) SetOrderTotal(_ context.Context, orderID int, total float64) error {
	t.s.writes++
	o, ok := t.s.orders[orderID]
	if !ok {
		return fmt.Errorf("no order %d", orderID)
	}
	o.Total = total
	return nil
}

func (t *memTx) DeleteOrder(_ context.Context, orderID int) error {
	t.s.writes++
	o, ok := t.s.orders[orderID]
	if !ok {
		return fmt.Errorf("no order %d", orderID)
	}
	// Mirrors the schema's ON DELETE SET NULL: the deleted order's lines
	// linger as parentless rows until the cleanup pass sweeps them.
	t.s.orphans += int64(len(o.Lines))
	delete(t.s.orders, orderID)
	return nil
}

func (t *memTx) DeleteOrphanLines(context.Context) (int64, error) {
	n := t.s.orphans
	t.s.orphans = 0
	return n, nil
}

func (t *memTx) MarkSent(_ context.Context, orderID int) error {
	t.s.writes++
	o, ok := t.s.orders[orderID]
	if !ok {
		return fmt.Errorf("no order %d", orderID)
	}
	o.Sent = true
	return nil
}

// fakeCatalog resolves product ids from a fixed map. Prices can be changed
// mid-test to check snapshot behavior.
type fakeCatalog struct {
	entries map[int]models.CatalogEntry
}

func (c *fakeCatalog) Lookup(_ context.Context, productID int) (*models.CatalogEntry, error) {
	e, ok := c.entries[productID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "product", ID: productID}
	}
	cp := e
	return &cp, nil
}

type fakeMembers struct {
	memberships map[int][]models.Restaurant
}

func (m *fakeMembers) IsMember(_ context.Context, userID, restaurantID int) (bool, error) {
	for _, r := range m.memberships[userID] {
		if r.ID == restaurantID {
			return true, nil
		}
	}
	return false, nil
}

func (m *fakeMembers) RestaurantsOf(_ context.Context, userID int) ([]models.Restaurant, error) {
	return m.memberships[userID], nil
}

type fakeDirectory struct {
	emails map[int]string
}

func (d *fakeDirectory) UserEmail(_ context.Context, userID int) (string, error) {
	email, ok := d.emails[userID]
	if !ok {
		return "", &models.NotFoundError{Resource: "user", ID: userID}
	}
	return email, nil
}

type sentMessage struct {
	to, from, subject, body string
}

// fakeTransport records every send and fails deliveries to addresses listed
// in failTo.
type fakeTransport struct {
	sent   []sentMessage
	failTo map[string]bool
}

func (t *fakeTransport) Send(to, from, subject, body string) error {
	if t.failTo[to] {
		return fmt.Errorf("smtp refused %s", to)
	}
	t.sent = append(t.sent, sentMessage{to: to, from: from, subject: subject, body: body})
	return nil
}
