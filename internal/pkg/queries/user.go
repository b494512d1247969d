package queries

const (
	CreateUser = `
		INSERT INTO users (
			role,
			first_name,
			last_name,
			email,
			phone,
			active,
			specialization,
			license_number,
			consultation_fee,
			date_of_birth,
			blood_group,
			address,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	GetUserByID = `
		SELECT
			id,
			role,
			first_name,
			last_name,
			email,
			COALESCE(phone, ''),
			active,
			specialization,
			license_number,
			consultation_fee,
			date_of_birth,
			blood_group,
			address,
			created_at,
			updated_at
		FROM users
		WHERE id = $1
	`
)
