package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/beemanhoney/shop/internal/domain/user"
)

// CreateOrderRequest carries the checkout input for a single order.
// Tax and ShippingCost default to zero when absent from the request.
type CreateOrderRequest struct {
	Lines           []CartLine
	PromoCode       string
	ShippingAddress string
	BillingAddress  string
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
}

// Service drives the order workflow: pricing, inventory mutation and ledger
// commit as one transaction, followed by best-effort event dispatch.
type Service struct {
	tx     Transactor
	orders Ledger
	users  user.Repository
	pricer *Pricer
	events EventDispatcher
	now    func() time.Time
}

func NewService(tx Transactor, orders Ledger, users user.Repository, events EventDispatcher) *Service {
	return &Service{
		tx:     tx,
		orders: orders,
		users:  users,
		pricer: NewPricer(time.Now),
		events: events,
		now:    time.Now,
	}
}

// CreateOrder validates, prices and commits an order for the principal.
//
// Pricing runs inside the same transaction as the mutations, so the stock and
// promo state it validated is the state being decremented. The conditional
// stock and usage updates re-check their guards at write time; losing a race
// surfaces as the same conflict a plain shortage would. On any failure the
// transaction rolls back and no partial state persists.
func (s *Service) CreateOrder(ctx context.Context, p user.Principal, req CreateOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	var committed *Order
	err := s.tx.InTx(ctx, func(stores TxStores) error {
		cart, err := s.pricer.PriceCart(ctx, stores.Products, stores.Promos, req.Lines, PriceOpts{
			PromoCode:    req.PromoCode,
			Tax:          req.Tax,
			ShippingCost: req.ShippingCost,
		})
		if err != nil {
			return err
		}
		for _, line := range cart.Lines {
			if err := stores.Products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return errors.Wrapf(err, "decrement stock for %s", line.ProductID)
			}
		}
		if cart.Promo != nil {
			if err := stores.Promos.IncrementUses(ctx, cart.Promo.Code); err != nil {
				return errors.Wrapf(err, "redeem promo %s", cart.Promo.Code)
			}
		}

		o := &Order{
			ID:              uuid.NewString(),
			UserID:          p.ID,
			Status:          StatusPending,
			TotalAmount:     cart.Total,
			ShippingCost:    req.ShippingCost,
			Tax:             req.Tax,
			Discount:        cart.Discount,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			CreatedAt:       s.now(),
		}
		if cart.Promo != nil {
			o.PromoCode = cart.Promo.Code
		}
		for _, line := range cart.Lines {
			o.Items = append(o.Items, Item{
				ID:              uuid.NewString(),
				OrderID:         o.ID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				PriceAtPurchase: line.PriceAtPurchase,
			})
		}
		committed, err = stores.Orders.Commit(ctx, o)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, LifecycleEvent{
		OrderID:   committed.ID,
		UserEmail: p.Email,
		UserName:  p.Name,
		Status:    committed.Status,
		Total:     committed.TotalAmount,
		ItemCount: len(committed.Items),
	})
	return committed, nil
}

// UpdateStatus moves an order to the given status. Admin only. Entering
// shipped or delivered stamps the corresponding timestamp. Any status may
// follow any other; see Status.
func (s *Service) UpdateStatus(ctx context.Context, p user.Principal, orderID string, st Status) (*Order, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if !st.Valid() {
		return nil, &InvalidStatusError{Status: string(st)}
	}

	var shippedAt, deliveredAt *time.Time
	now := s.now()
	switch st {
	case StatusShipped:
		shippedAt = &now
	case StatusDelivered:
		deliveredAt = &now
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, st, shippedAt, deliveredAt)
	if err != nil {
		return nil, err
	}

	ev := LifecycleEvent{
		OrderID:   updated.ID,
		Status:    updated.Status,
		Total:     updated.TotalAmount,
		ItemCount: len(updated.Items),
	}
	if owner, err := s.users.GetByID(ctx, updated.UserID); err != nil {
		zctx.From(ctx).Warn("Owner lookup for notification failed",
			zap.String("order_id", updated.ID),
			zap.Error(err),
		)
	} else {
		ev.UserEmail = owner.Email
		ev.UserName = owner.FullName
	}
	s.dispatch(ctx, ev)
	return updated, nil
}

// GetOrder returns the order if the principal owns it or is an admin.
func (s *Service) GetOrder(ctx context.Context, p user.Principal, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != p.ID && !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListUserOrders returns the principal's own orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, p user.Principal) ([]Order, error) {
	return s.orders.ListByUser(ctx, p.ID)
}

func (s *Service) dispatch(ctx context.Context, ev LifecycleEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, ev); err != nil {
		zctx.From(ctx).Warn("Lifecycle event dispatch failed",
			zap.String("order_id", ev.OrderID),
			zap.String("status", string(ev.Status)),
			zap.Error(err),
		)
	}
}
