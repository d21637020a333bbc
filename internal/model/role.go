package model

// Role is the fixed role a user registers with.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient:
		return true
	}
	return false
}

// SenderType labels the author of a chat message.
type SenderType string

const (
	SenderDoctor  SenderType = "doctor"
	SenderPatient SenderType = "patient"
	SenderAI      SenderType = "ai"
)

func (s SenderType) Valid() bool {
	switch s {
	case SenderDoctor, SenderPatient, SenderAI:
		return true
	}
	return false
}

// CanSendAs reports whether a user with role r may post as sender type s.
// Doctors relay AI output into a thread, patients only speak for themselves.
func (r Role) CanSendAs(s SenderType) bool {
	switch r {
	case RoleDoctor:
		return s == SenderDoctor || s == SenderAI
	case RolePatient:
		return s == SenderPatient
	}
	return false
}
