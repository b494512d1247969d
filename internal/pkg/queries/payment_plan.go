package queries

const paymentPlanColumns = `
			id,
			plan_number,
			invoice_id,
			patient_id,
			total_amount,
			monthly_payment,
			number_of_payments,
			interest_rate,
			start_date,
			end_date,
			status,
			payments_made,
			amount_paid,
			remaining_balance,
			next_payment_date,
			payment_method,
			notes,
			created_at,
			updated_at
`

const installmentColumns = `
			id,
			plan_id,
			installment_number,
			due_date,
			amount,
			amount_paid,
			status,
			payment_id,
			paid_at,
			reminder_sent
`

const (
	CreatePaymentPlan = `
		INSERT INTO payment_plans (
			plan_number,
			invoice_id,
			patient_id,
			total_amount,
			monthly_payment,
			number_of_payments,
			interest_rate,
			start_date,
			end_date,
			status,
			payments_made,
			amount_paid,
			remaining_balance,
			next_payment_date,
			payment_method,
			notes,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`

	UpdatePaymentPlan = `
		UPDATE payment_plans
		SET
			monthly_payment = $2,
			number_of_payments = $3,
			end_date = $4,
			status = $5,
			payments_made = $6,
			amount_paid = $7,
			remaining_balance = $8,
			next_payment_date = $9,
			notes = $10,
			updated_at = $11
		WHERE id = $1
	`

	GetPaymentPlanByID = `SELECT ` + paymentPlanColumns + ` FROM payment_plans WHERE id = $1`

	GetPaymentPlanByIDForUpdate = GetPaymentPlanByID + ` FOR UPDATE`

	GetPaymentPlanByInvoiceID = `SELECT ` + paymentPlanColumns + ` FROM payment_plans WHERE invoice_id = $1`

	CountPaymentPlans = `SELECT COUNT(*) FROM payment_plans`

	ListPaymentPlansByStatus = `SELECT ` + paymentPlanColumns + ` FROM payment_plans WHERE status = $1 ORDER BY id`

	CreateInstallment = `
		INSERT INTO payment_plan_installments (
			plan_id,
			installment_number,
			due_date,
			amount,
			amount_paid,
			status,
			payment_id,
			paid_at,
			reminder_sent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	UpdateInstallment = `
		UPDATE payment_plan_installments
		SET
			amount = $2,
			amount_paid = $3,
			status = $4,
			payment_id = $5,
			paid_at = $6,
			reminder_sent = $7
		WHERE id = $1
	`

	DeleteInstallmentsByPlan = `DELETE FROM payment_plan_installments WHERE plan_id = $1`

	ListInstallmentsByPlan = `SELECT ` + installmentColumns + `
		FROM payment_plan_installments
		WHERE plan_id = $1
		ORDER BY installment_number
	`

	ListInstallmentsDueBefore = `SELECT ` + installmentColumns + `
		FROM payment_plan_installments
		WHERE status = ANY($1) AND due_date < $2
		ORDER BY due_date, id
	`
)
