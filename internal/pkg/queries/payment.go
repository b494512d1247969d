package queries

const paymentColumns = `
			id,
			transaction_id,
			COALESCE(receipt_number, ''),
			invoice_id,
			patient_id,
			amount,
			method,
			status,
			payment_date,
			COALESCE(card_last_four, ''),
			COALESCE(reference_number, ''),
			COALESCE(bank_slip_path, ''),
			notes,
			verification_notes,
			verified_by,
			verified_at,
			created_at,
			updated_at
`

const (
	CreatePayment = `
		INSERT INTO payments (
			transaction_id,
			receipt_number,
			invoice_id,
			patient_id,
			amount,
			method,
			status,
			payment_date,
			card_last_four,
			reference_number,
			bank_slip_path,
			notes,
			created_at,
			updated_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
		RETURNING id
	`

	UpdatePayment = `
		UPDATE payments
		SET
			receipt_number = NULLIF($2, ''),
			amount = $3,
			status = $4,
			payment_date = $5,
			bank_slip_path = NULLIF($6, ''),
			notes = $7,
			verification_notes = $8,
			verified_by = $9,
			verified_at = $10,
			updated_at = $11
		WHERE id = $1
	`

	GetPaymentByID = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	GetPaymentByIDForUpdate = GetPaymentByID + ` FOR UPDATE`

	ListPaymentsByInvoice = `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY id`

	ListPaymentsByStatusAndMethod = `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 AND method = $2 ORDER BY id`

	ListPaymentsByDateRange = `SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		ORDER BY payment_date, id
	`

	SumCompletedPayments = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'COMPLETED' AND payment_date >= $1 AND payment_date < $2
	`
)
