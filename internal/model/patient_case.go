package model

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// CaseStatus is a closed set; any status may follow any other.
type CaseStatus string

const (
	CaseStatusPending  CaseStatus = "pending"
	CaseStatusInReview CaseStatus = "in_review"
	CaseStatusReviewed CaseStatus = "reviewed"
	CaseStatusClosed   CaseStatus = "closed"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusPending, CaseStatusInReview, CaseStatusReviewed, CaseStatusClosed:
		return true
	}
	return false
}

// DefaultAIRecommendation is shown until a doctor has reviewed the case.
const DefaultAIRecommendation = "Please wait for doctor review."

type PatientCase struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	PatientID            *string    `json:"patient_id" db:"patient_id"`
	Name                 string     `json:"name" db:"name"`
	Age                  int        `json:"age" db:"age"`
	Gender               string     `json:"gender" db:"gender"`
	Severity             Severity   `json:"severity" db:"severity"`
	Symptoms             []string   `json:"symptoms" db:"-"`
	MedicalHistory       string     `json:"medical_history,omitempty" db:"medical_history"`
	AIRecommendation     string     `json:"ai_recommendation" db:"ai_recommendation"`
	Status               CaseStatus `json:"status" db:"status"`
	DoctorID             *string    `json:"doctor_id" db:"doctor_id"`
	DoctorNotes          *string    `json:"doctor_notes" db:"doctor_notes"`
	DoctorRecommendation *string    `json:"doctor_recommendation" db:"doctor_recommendation"`
	CreatedAt            time.Time  `json:"timestamp" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// CaseFilter narrows a case listing. A nil PatientID lists every case.
type CaseFilter struct {
	PatientID *string
	Status    *CaseStatus
	Limit     int
	Offset    int
}

// ListCasesQuery is the query string of a case listing.
type ListCasesQuery struct {
	Status CaseStatus `form:"status" json:"status" binding:"omitempty,case_status"`
	Limit  int        `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Offset int        `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

type CreatePatientCaseRequest struct {
	Name           string   `json:"name" binding:"required,max=200"`
	Age            int      `json:"age" binding:"min=0,max=150"`
	Gender         string   `json:"gender" binding:"required,max=50"`
	Symptoms       []string `json:"symptoms" binding:"required,min=1,dive,required,max=200"`
	MedicalHistory string   `json:"medical_history" binding:"max=10000"`
	Severity       Severity `json:"severity" binding:"omitempty,severity"`
}

// UpdatePatientCaseRequest is a doctor's patch to a case.
type UpdatePatientCaseRequest struct {
	Status               *CaseStatus `json:"status" binding:"omitempty,case_status"`
	Severity             *Severity   `json:"severity" binding:"omitempty,severity"`
	DoctorNotes          *string     `json:"doctor_notes" binding:"omitempty,max=10000"`
	DoctorRecommendation *string     `json:"doctor_recommendation" binding:"omitempty,max=10000"`
	DoctorID             *string     `json:"doctor_id"`
}

// TouchesReview reports whether the patch changes review fields, which
// assigns the case to the reviewing doctor.
func (r *UpdatePatientCaseRequest) TouchesReview() bool {
	return r.Status != nil || r.Severity != nil || r.DoctorNotes != nil || r.DoctorRecommendation != nil
}
