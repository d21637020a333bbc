package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// Domain event types, also used as broker channel names.
const (
	EventCaseCreated       = "case.created"
	EventCaseUpdated       = "case.updated"
	EventChatMessagePosted = "chat.message_posted"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"-" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// CaseEvent is the payload of case.created and case.updated.
type CaseEvent struct {
	CaseID    uuid.UUID  `json:"case_id"`
	PatientID *string    `json:"patient_id,omitempty"`
	DoctorID  *string    `json:"doctor_id,omitempty"`
	Name      string     `json:"name"`
	Severity  Severity   `json:"severity"`
	Status    CaseStatus `json:"status"`
	ActorID   string     `json:"actor_id,omitempty"`
}

// ChatEvent is the payload of chat.message_posted.
type ChatEvent struct {
	MessageID  uuid.UUID  `json:"message_id"`
	CaseID     uuid.UUID  `json:"case_id"`
	SenderID   string     `json:"sender_id"`
	SenderType SenderType `json:"sender_type"`
}
