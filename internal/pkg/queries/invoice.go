package queries

const invoiceColumns = `
			id,
			COALESCE(invoice_number, ''),
			patient_id,
			appointment_id,
			order_id,
			issue_date,
			due_date,
			subtotal,
			tax,
			discount,
			total,
			amount_paid,
			balance_due,
			status,
			description,
			notes,
			created_at,
			updated_at
`

const (
	CreateInvoice = `
		INSERT INTO invoices (
			patient_id,
			appointment_id,
			order_id,
			issue_date,
			due_date,
			subtotal,
			tax,
			discount,
			total,
			amount_paid,
			balance_due,
			status,
			description,
			notes,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`

	UpdateInvoiceNumber = `UPDATE invoices SET invoice_number = $2 WHERE id = $1`

	UpdateInvoice = `
		UPDATE invoices
		SET
			subtotal = $2,
			tax = $3,
			discount = $4,
			total = $5,
			amount_paid = $6,
			balance_due = $7,
			status = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1
	`

	GetInvoiceByID = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	GetInvoiceByIDForUpdate = GetInvoiceByID + ` FOR UPDATE`

	GetInvoiceByAppointmentID = `SELECT ` + invoiceColumns + ` FROM invoices WHERE appointment_id = $1`

	ListInvoicesByPatient = `SELECT ` + invoiceColumns + ` FROM invoices WHERE patient_id = $1 ORDER BY id`

	ListInvoicesByStatuses = `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = ANY($1) ORDER BY id`

	CreateInvoiceItem = `
		INSERT INTO invoice_items (
			invoice_id,
			description,
			quantity,
			unit_price,
			line_total
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	ListInvoiceItems = `
		SELECT
			id,
			invoice_id,
			description,
			quantity,
			unit_price,
			line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id
	`
)
