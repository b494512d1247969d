package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"time"
)

type OrderRepository struct {
	store *Store
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.store.do(ctx, func(st *state) error {
		order.ID = st.next("orders")
		for idx := range order.Lines {
			order.Lines[idx].ID = st.next("order_lines")
			order.Lines[idx].OrderID = order.ID
		}
		st.orders[order.ID] = copyOrder(*order)
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.orders[orderID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceOrder, orderID)
		}
		order = copyOrder(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.orders[orderID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceOrder, orderID)
		}
		existing.Status = status
		existing.SetUpdatedAt(time.Now())
		st.orders[orderID] = existing
		return nil
	})
}
