package queries

const availabilityColumns = `
			id,
			doctor_id,
			date,
			start_time,
			end_time,
			max_slots,
			booked_count,
			available,
			template_id,
			created_at,
			updated_at
`

const (
	CreateAvailability = `
		INSERT INTO doctor_availability (
			doctor_id,
			date,
			start_time,
			end_time,
			max_slots,
			booked_count,
			available,
			template_id,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	GetAvailabilityByID = `SELECT ` + availabilityColumns + ` FROM doctor_availability WHERE id = $1`

	GetAvailabilityByDoctorAndDate = `SELECT ` + availabilityColumns + ` FROM doctor_availability WHERE doctor_id = $1 AND date = $2`

	// GetAvailabilityByDoctorAndDateForUpdate holds the row lock until commit.
	GetAvailabilityByDoctorAndDateForUpdate = GetAvailabilityByDoctorAndDate + ` FOR UPDATE`

	ListAvailabilityByDoctor = `SELECT ` + availabilityColumns + `
		FROM doctor_availability
		WHERE doctor_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	UpdateAvailabilityBookedCount = `
		UPDATE doctor_availability
		SET booked_count = $2, updated_at = NOW()
		WHERE id = $1
	`

	UpdateAvailabilityAvailable = `
		UPDATE doctor_availability
		SET available = $2, updated_at = NOW()
		WHERE id = $1
	`

	CreateAvailabilityTemplate = `
		INSERT INTO availability_templates (
			doctor_id,
			weekday,
			start_time,
			end_time,
			max_slots,
			active,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	ListActiveAvailabilityTemplates = `
		SELECT
			id,
			doctor_id,
			weekday,
			start_time,
			end_time,
			max_slots,
			active,
			created_at,
			updated_at
		FROM availability_templates
		WHERE active = TRUE
		ORDER BY id
	`
)
