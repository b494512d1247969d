package requests

type BookAppointment struct {
	PatientID int64  `json:"patient_id" validate:"omitempty,gt=0"`
	DoctorID  int64  `json:"doctor_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,time_of_day"`
	Reason    string `json:"reason" validate:"max=500"`
}
