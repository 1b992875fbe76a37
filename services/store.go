package services

import (
	"context"

	"resto-supply/models"
)

// OrderStore is the persistence boundary of the ordering core. InTx runs fn
// inside one database transaction: fn's writes either all commit or none do.
type OrderStore interface {
	InTx(ctx context.Context, fn func(tx OrderTx) error) error

	// UnsentOrderIDs lists every order with sent=false, for the dispatch flush.
	UnsentOrderIDs(ctx context.Context) ([]int, error)

	// SentOrderRows flattens sent orders for the given restaurants into
	// per-line report rows, newest order first.
	SentOrderRows(ctx context.Context, restaurantIDs []int) ([]models.SentOrderRow, error)
}

// OrderTx is the transaction scope handed to one logical mutation (an
// aggregation, a line edit, or a single order's dispatch).
type OrderTx interface {
	// LockAggregation serializes aggregations for one (owner, restaurant)
	// pair for the lifetime of the transaction.
	LockAggregation(ctx context.Context, ownerID, restaurantID int) error

	// UnsentOrders returns every unsent order for the pair, lines included,
	// locked for update, oldest first.
	UnsentOrders(ctx context.Context, ownerID, restaurantID int) ([]models.Order, error)

	// LatestUnsentByOwner returns the most recent unsent order for the owner
	// regardless of restaurant, lines included, locked for update. Returns a
	// NotFoundError when the owner has none.
	LatestUnsentByOwner(ctx context.Context, ownerID int) (*models.Order, error)

	// UnsentOrderForDispatch loads one unsent order with its lines enriched
	// with product names and supplier contacts, plus the restaurant name,
	// locked for update. Returns a NotFoundError when the order is missing or
	// already sent.
	UnsentOrderForDispatch(ctx context.Context, orderID int) (*models.Order, error)

	InsertOrder(ctx context.Context, o *models.Order) error
	InsertLine(ctx context.Context, l *models.OrderLine) error
	UpdateLineQuantity(ctx context.Context, lineID int, quantity float64) error
	DeleteLine(ctx context.Context, lineID int) error
	SetOrderTotal(ctx context.Context, orderID int, total float64) error
	DeleteOrder(ctx context.Context, orderID int) error

	// DeleteOrphanLines removes line rows whose parent order no longer
	// exists, reporting how many were removed.
	DeleteOrphanLines(ctx context.Context) (int64, error)

	MarkSent(ctx context.Context, orderID int) error
}

// ProductCatalog resolves a product to its current price and its supplier's
// contact address.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID int) (*models.CatalogEntry, error)
}

// MembershipStore answers which restaurants a user belongs to.
type MembershipStore interface {
	IsMember(ctx context.Context, userID, restaurantID int) (bool, error)
	RestaurantsOf(ctx context.Context, userID int) ([]models.Restaurant, error)
}

// Directory resolves a user id to an email address.
type Directory interface {
	UserEmail(ctx context.Context, userID int) (string, error)
}

// MessageTransport delivers one outbound message. A failure surfaces as an
// error; it is never swallowed.
type MessageTransport interface {
	Send(to, from, subject, body string) error
}
