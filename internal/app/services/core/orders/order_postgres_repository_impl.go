package orders

import (
	"context"
	"database/sql"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
)

type orderPostgresRepository struct {
	DB *sql.DB
}

func NewOrderPostgresRepository(db *sql.DB) contracts.OrderRepository {
	return &orderPostgresRepository{
		DB: db,
	}
}

// Create inserts the order and its lines. Callers wrap it in a transaction.
func (repo *orderPostgresRepository) Create(ctx context.Context, order *models.Order) error {
	executor := database.Executor(ctx, repo.DB)
	err := executor.QueryRowContext(ctx, queries.CreateOrder,
		order.PatientID,
		order.PharmacistID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "CreateOrder")
	}

	for idx := range order.Lines {
		line := &order.Lines[idx]
		line.OrderID = order.ID
		err := executor.QueryRowContext(ctx, queries.CreateOrderLine,
			line.OrderID,
			line.Medicine,
			line.Quantity,
			line.UnitPrice,
		).Scan(&line.ID)
		if err != nil {
			return exceptions.ErrSQLQuery(err, "CreateOrderLine")
		}
	}
	return nil
}

func (repo *orderPostgresRepository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	executor := database.Executor(ctx, repo.DB)

	var order models.Order
	err := executor.QueryRowContext(ctx, queries.GetOrderByID, orderID).Scan(
		&order.ID,
		&order.PatientID,
		&order.PharmacistID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exceptions.ErrNotFound(err, constvars.ResourceOrder, orderID)
		}
		return nil, exceptions.ErrSQLQuery(err, "GetOrderByID")
	}

	rows, err := executor.QueryContext(ctx, queries.ListOrderLines, orderID)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, "ListOrderLines")
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.Medicine, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, exceptions.ErrSQLScan(err, "ListOrderLines")
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, "ListOrderLines")
	}
	return &order, nil
}

func (repo *orderPostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdateOrderStatus, orderID, status)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdateOrderStatus")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdateOrderStatus")
	}
	if affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourceOrder, orderID)
	}
	return nil
}
