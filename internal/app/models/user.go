package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleDoctor       Role = "DOCTOR"
	RolePatient      Role = "PATIENT"
	RolePharmacist   Role = "PHARMACIST"
	RoleAccountant   Role = "ACCOUNTANT"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleAdmin        Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient, RolePharmacist, RoleAccountant, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}

// User is a single record tagged by Role. Exactly the profile matching Role is set.
type User struct {
	ID         int64              `json:"id"`
	Role       Role               `json:"role"`
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone,omitempty"`
	Active     bool               `json:"active"`
	Doctor     *DoctorProfile     `json:"doctor,omitempty"`
	Patient    *PatientProfile    `json:"patient,omitempty"`
	Pharmacist *PharmacistProfile `json:"pharmacist,omitempty"`
	TimeModel
}

type DoctorProfile struct {
	Specialization  string          `json:"specialization"`
	LicenseNumber   string          `json:"licenseNumber,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultationFee"`
}

type PatientProfile struct {
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	BloodGroup  string     `json:"bloodGroup,omitempty"`
	Address     string     `json:"address,omitempty"`
}

type PharmacistProfile struct {
	LicenseNumber string `json:"licenseNumber,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor && u.Doctor != nil }
func (u *User) IsPatient() bool { return u.Role == RolePatient && u.Patient != nil }

// Caller is the authenticated principal resolved from the bearer token.
type Caller struct {
	UserID int64
	Role   Role
}

func (c Caller) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}
