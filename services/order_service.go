package services

import (
	"context"
	"log"
	"time"

	"resto-supply/models"
)

const aggregateNote = "Daily aggregate order"

// OrderService owns the ordering core: draft intake, consolidation of drafts
// into one aggregate order per (owner, restaurant) pair, and edits to the
// current unsent aggregate.
type OrderService struct {
	store   OrderStore
	catalog ProductCatalog
	members MembershipStore
	clock   Clock
	cutoff  TimeOfDay
}

func NewOrderService(store OrderStore, catalog ProductCatalog, members MembershipStore, clock Clock, cutoff TimeOfDay) *OrderService {
	return &OrderService{
		store:   store,
		catalog: catalog,
		members: members,
		clock:   clock,
		cutoff:  cutoff,
	}
}

// checkCutoff reads the live clock at call time: a request at or after the
// cutoff instant is rejected, one strictly before it is allowed.
func (s *OrderService) checkCutoff() error {
	now := s.clock.Now()
	if !now.Before(s.cutoff.On(now)) {
		return models.ErrCutoffExceeded
	}
	return nil
}

// Submit validates and persists one draft order, then immediately folds it
// into the day's aggregate for the (owner, restaurant) pair.
func (s *OrderService) Submit(ctx context.Context, ownerID int, req models.SubmitOrderRequest) (*models.Order, error) {
	if err := s.checkCutoff(); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, &models.ValidationError{Reason: "order must contain at least one line"}
	}

	member, err := s.members.IsMember(ctx, ownerID, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, &models.ValidationError{Reason: "you are not associated with this restaurant"}
	}

	// Prices for draft lines are read live from the catalog at intake time and
	// stored as snapshots on the lines.
	entries := make([]*models.CatalogEntry, len(req.Lines))
	for i, in := range req.Lines {
		entry, err := s.catalog.Lookup(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}

	err = s.store.InTx(ctx, func(tx OrderTx) error {
		draft := &models.Order{
			UserID:       ownerID,
			RestaurantID: req.RestaurantID,
			CreatedAt:    s.clock.Now(),
			Sent:         false,
		}
		if req.Note != "" {
			note := req.Note
			draft.Note = &note
		}
		if err := tx.InsertOrder(ctx, draft); err != nil {
			return err
		}

		total := 0.0
		for i, in := range req.Lines {
			line := &models.OrderLine{
				OrderID:   draft.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: entries[i].UnitPrice,
			}
			if err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
			total += line.Subtotal()
		}
		return tx.SetOrderTotal(ctx, draft.ID, total)
	})
	if err != nil {
		return nil, err
	}

	agg, err := s.Aggregate(ctx, ownerID, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, &models.ValidationError{Reason: "the resulting aggregate order is empty"}
	}
	return agg, nil
}

// Aggregate merges every unsent order for the (owner, restaurant) pair into a
// single aggregate order and deletes the consumed drafts, all inside one
// transaction. It returns nil when there is nothing to merge, and never
// leaves an empty or zero-value aggregate behind.
func (s *OrderService) Aggregate(ctx context.Context, ownerID, restaurantID int) (*models.Order, error) {
	var result *models.Order

	err := s.store.InTx(ctx, func(tx OrderTx) error {
		if err := tx.LockAggregation(ctx, ownerID, restaurantID); err != nil {
			return err
		}

		drafts, err := tx.UnsentOrders(ctx, ownerID, restaurantID)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return nil
		}

		note := aggregateNote
		agg := &models.Order{
			UserID:       ownerID,
			RestaurantID: restaurantID,
			CreatedAt:    s.clock.Now(),
			Note:         &note,
			Sent:         false,
		}
		if err := tx.InsertOrder(ctx, agg); err != nil {
			return err
		}

		// Merge keyed by product id. Quantities sum; the unit price is the one
		// of the first line seen for that product, so later submissions at a
		// different snapshot price do not move it.
		type mergedLine struct {
			quantity  float64
			unitPrice float64
		}
		merged := make(map[int]*mergedLine)
		productOrder := []int{}

		for _, draft := range drafts {
			for _, line := range draft.Lines {
				if m, ok := merged[line.ProductID]; ok {
					m.quantity += line.Quantity
					continue
				}
				merged[line.ProductID] = &mergedLine{quantity: line.Quantity, unitPrice: line.UnitPrice}
				productOrder = append(productOrder, line.ProductID)
			}
			if err := tx.DeleteOrder(ctx, draft.ID); err != nil {
				return err
			}
		}

		total := 0.0
		for _, productID := range productOrder {
			m := merged[productID]
			if m.quantity <= 0 {
				continue
			}
			line := &models.OrderLine{
				OrderID:   agg.ID,
				ProductID: productID,
				Quantity:  m.quantity,
				UnitPrice: m.unitPrice,
			}
			if err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
			agg.Lines = append(agg.Lines, *line)
			total += line.Subtotal()
		}

		agg.Total = total
		if err := tx.SetOrderTotal(ctx, agg.ID, total); err != nil {
			return err
		}

		// Repair pass: line rows orphaned by a previously interrupted run are
		// removed here rather than surfaced to the caller.
		if removed, err := tx.DeleteOrphanLines(ctx); err != nil {
			return err
		} else if removed > 0 {
			log.Printf("aggregation cleanup: removed %d orphaned order line(s)", removed)
		}

		if total <= 0 || len(agg.Lines) == 0 {
			return tx.DeleteOrder(ctx, agg.ID)
		}

		result = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetCurrentAggregate returns the owner's aggregate for a restaurant,
// re-merging any pending unsent orders first. Nil means there is no current
// aggregate.
func (s *OrderService) GetCurrentAggregate(ctx context.Context, ownerID, restaurantID int) (*models.Order, error) {
	return s.Aggregate(ctx, ownerID, restaurantID)
}

// UpdateCurrentAggregate applies (product, quantity) edits to the owner's
// most recent unsent order. The order is looked up by owner only, not by
// restaurant. Existing lines keep their price snapshot; new lines take the
// product's current catalog price; quantity <= 0 deletes the line; unknown
// products are skipped. The order is kept even when it ends up empty, only
// aggregation prunes empties.
func (s *OrderService) UpdateCurrentAggregate(ctx context.Context, ownerID int, inputs []models.LineInput) (*models.Order, error) {
	if err := s.checkCutoff(); err != nil {
		return nil, err
	}

	var result *models.Order
	err := s.store.InTx(ctx, func(tx OrderTx) error {
		order, err := tx.LatestUnsentByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		byProduct := make(map[int]*models.OrderLine, len(order.Lines))
		for i := range order.Lines {
			byProduct[order.Lines[i].ProductID] = &order.Lines[i]
		}
		deleted := make(map[int]bool)
		var added []*models.OrderLine

		for _, in := range inputs {
			if existing, ok := byProduct[in.ProductID]; ok {
				if in.Quantity > 0 {
					if err := tx.UpdateLineQuantity(ctx, existing.ID, in.Quantity); err != nil {
						return err
					}
					existing.Quantity = in.Quantity
				} else {
					if err := tx.DeleteLine(ctx, existing.ID); err != nil {
						return err
					}
					deleted[existing.ID] = true
				}
				continue
			}

			if in.Quantity <= 0 {
				continue
			}
			entry, err := s.catalog.Lookup(ctx, in.ProductID)
			if err != nil {
				if models.IsNotFound(err) {
					continue
				}
				return err
			}
			line := &models.OrderLine{
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: entry.UnitPrice,
			}
			if err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
			added = append(added, line)
			byProduct[in.ProductID] = line
		}

		total := 0.0
		survivors := make([]models.OrderLine, 0, len(order.Lines)+len(added))
		for i := range order.Lines {
			if !deleted[order.Lines[i].ID] {
				survivors = append(survivors, order.Lines[i])
				total += order.Lines[i].Subtotal()
			}
		}
		for _, line := range added {
			survivors = append(survivors, *line)
			total += line.Subtotal()
		}

		if err := tx.SetOrderTotal(ctx, order.ID, total); err != nil {
			return err
		}
		order.Lines = survivors
		order.Total = total
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListSentOrders returns the flattened report rows for sent orders of the
// given restaurants.
func (s *OrderService) ListSentOrders(ctx context.Context, restaurantIDs []int) ([]models.SentOrderRow, error) {
	if len(restaurantIDs) == 0 {
		return []models.SentOrderRow{}, nil
	}
	return s.store.SentOrderRows(ctx, restaurantIDs)
}

// MyRestaurants lists the restaurants the user belongs to.
func (s *OrderService) MyRestaurants(ctx context.Context, userID int) ([]models.Restaurant, error) {
	return s.members.RestaurantsOf(ctx, userID)
}

// CutoffInstant reports today's cutoff for a given reference time. Exposed
// for handlers that want to tell callers when ordering closes.
func (s *OrderService) CutoffInstant(ref time.Time) time.Time {
	return s.cutoff.On(ref)
}
