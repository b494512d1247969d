package queries

const (
	CreateOrder = `
		INSERT INTO orders (
			patient_id,
			pharmacist_id,
			status,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	CreateOrderLine = `
		INSERT INTO order_lines (
			order_id,
			medicine,
			quantity,
			unit_price
		) VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	GetOrderByID = `
		SELECT
			id,
			patient_id,
			pharmacist_id,
			status,
			created_at,
			updated_at
		FROM orders
		WHERE id = $1
	`

	ListOrderLines = `
		SELECT
			id,
			order_id,
			medicine,
			quantity,
			unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	UpdateOrderStatus = `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
)
