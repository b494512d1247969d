package requests

type CreateAvailability struct {
	DoctorID  int64  `json:"doctor_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,time_of_day"`
	EndTime   string `json:"end_time" validate:"required,time_of_day"`
	MaxSlots  int    `json:"max_slots" validate:"required,min=1"`
}

type SetAvailability struct {
	Available *bool `json:"available" validate:"required"`
}

// CreateAvailabilityTemplate uses 0 for Sunday through 6 for Saturday.
type CreateAvailabilityTemplate struct {
	DoctorID  int64  `json:"doctor_id" validate:"required,gt=0"`
	Weekday   *int   `json:"weekday" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,time_of_day"`
	EndTime   string `json:"end_time" validate:"required,time_of_day"`
	MaxSlots  int    `json:"max_slots" validate:"required,min=1"`
}
