package queries

const appointmentColumns = `
			id,
			patient_id,
			doctor_id,
			date,
			time,
			reason,
			status,
			medical_record_id,
			created_at,
			updated_at
`

const (
	CreateAppointment = `
		INSERT INTO appointments (
			patient_id,
			doctor_id,
			date,
			time,
			reason,
			status,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	GetAppointmentByID = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	GetAppointmentByIDForUpdate = GetAppointmentByID + ` FOR UPDATE`

	ListActiveAppointmentsByDoctorAndDate = `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'CANCELLED'
		ORDER BY time
	`

	ListAppointmentsByPatient = `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date, time
	`

	UpdateAppointmentStatus = `
		UPDATE appointments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
)
