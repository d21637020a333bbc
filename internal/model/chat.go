package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an immutable entry in a case thread.
type ChatMessage struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CaseID     uuid.UUID  `json:"patient_case_id" db:"case_id"`
	SenderID   string     `json:"sender_id" db:"sender_id"`
	SenderType SenderType `json:"sender_type" db:"sender_type"`
	Content    string     `json:"content" db:"content"`
	CreatedAt  time.Time  `json:"timestamp" db:"created_at"`
}

type PostMessageRequest struct {
	CaseID     uuid.UUID  `json:"patient_case_id" binding:"required"`
	SenderType SenderType `json:"sender_type" binding:"required,sender_type"`
	Content    string     `json:"content" binding:"max=10000"`
}

// AdviceRequest asks the AI assistant about a patient.
type AdviceRequest struct {
	Prompt          string   `json:"prompt" binding:"required,max=4000"`
	PatientSymptoms []string `json:"patient_symptoms" binding:"dive,max=200"`
	PatientHistory  string   `json:"patient_history" binding:"max=10000"`
}

type AdviceResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}
