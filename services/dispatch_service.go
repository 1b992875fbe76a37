package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"

	"resto-supply/models"
)

// DispatchService fans an aggregate order out as one summary message to the
// ordering manager plus one message per supplier, and flips the order to sent
// only when every message went through.
type DispatchService struct {
	store        OrderStore
	directory    Directory
	transport    MessageTransport
	systemSender string
	flights      singleflight.Group
}

func NewDispatchService(store OrderStore, directory Directory, transport MessageTransport, systemSender string) *DispatchService {
	return &DispatchService{
		store:        store,
		directory:    directory,
		transport:    transport,
		systemSender: systemSender,
	}
}

// FlushAll dispatches every unsent order. Orders are processed independently:
// one order's failed send is logged and leaves that order unsent for the next
// flush, without touching the others. Overlapping calls collapse into the
// in-flight run. Returns the number of orders marked sent.
func (s *DispatchService) FlushAll(ctx context.Context) (int, error) {
	v, err, _ := s.flights.Do("flush", func() (interface{}, error) {
		ids, err := s.store.UnsentOrderIDs(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list unsent orders: %w", err)
		}

		sent := 0
		for _, id := range ids {
			if err := s.dispatchOne(ctx, id); err != nil {
				if models.IsNotFound(err) {
					// Deleted or sent by someone else since listing.
					continue
				}
				log.Printf("dispatch: order %d left unsent: %v", id, err)
				continue
			}
			sent++
		}
		log.Printf("dispatch: %d order(s) sent, %d pending", sent, len(ids)-sent)
		return sent, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// SendOne dispatches a single order synchronously, outside the scheduled
// flush. Returns a NotFoundError when the order does not exist or was already
// sent.
func (s *DispatchService) SendOne(ctx context.Context, orderID int) error {
	return s.dispatchOne(ctx, orderID)
}

// dispatchOne sends all messages for one order and marks it sent, inside a
// single transaction. The read, the sends and the sent flip share the
// transaction boundary, so a concurrent edit either lands in the messages or
// is cleanly excluded.
func (s *DispatchService) dispatchOne(ctx context.Context, orderID int) error {
	return s.store.InTx(ctx, func(tx OrderTx) error {
		order, err := tx.UnsentOrderForDispatch(ctx, orderID)
		if err != nil {
			return err
		}

		ownerEmail, err := s.directory.UserEmail(ctx, order.UserID)
		if err != nil {
			return err
		}

		subject, body := composeSummary(order)
		if err := s.transport.Send(ownerEmail, s.systemSender, subject, body); err != nil {
			return &models.TransportError{Recipient: ownerEmail, Err: err}
		}

		// Supplier messages go out with the owner's address as sender so
		// replies route back to the requester.
		for _, group := range groupBySupplier(order.Lines) {
			subject, body := composeSupplier(order, group.lines)
			if err := s.transport.Send(group.email, ownerEmail, subject, body); err != nil {
				return &models.TransportError{Recipient: group.email, Err: err}
			}
		}

		return tx.MarkSent(ctx, order.ID)
	})
}

type supplierGroup struct {
	supplierID int
	email      string
	lines      []models.OrderLine
}

// groupBySupplier splits an order's lines per supplier, preserving line
// order within each group and first-seen supplier order overall.
func groupBySupplier(lines []models.OrderLine) []supplierGroup {
	index := make(map[int]int)
	groups := []supplierGroup{}
	for _, line := range lines {
		i, ok := index[line.SupplierID]
		if !ok {
			i = len(groups)
			index[line.SupplierID] = i
			groups = append(groups, supplierGroup{supplierID: line.SupplierID, email: line.SupplierEmail})
		}
		groups[i].lines = append(groups[i].lines, line)
	}
	return groups
}

func composeSummary(o *models.Order) (subject, body string) {
	subject = fmt.Sprintf("Aggregate order confirmation #%d", o.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d summary - Restaurant %s\n\n", o.ID, o.RestaurantName)
	for _, line := range o.Lines {
		b.WriteString(formatLine(line))
	}
	fmt.Fprintf(&b, "\nAggregate order total: %.2f€", o.Total)
	return subject, b.String()
}

func composeSupplier(o *models.Order, lines []models.OrderLine) (subject, body string) {
	subject = fmt.Sprintf("New order #%d", o.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Order from restaurant %s (#%d):\n", o.RestaurantName, o.ID)
	for _, line := range lines {
		b.WriteString(formatLine(line))
	}
	return subject, b.String()
}

func formatLine(l models.OrderLine) string {
	return fmt.Sprintf("- %s x %g = %.2f€\n", l.ProductName, l.Quantity, l.Subtotal())
}
