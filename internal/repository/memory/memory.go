// Package memory implements the repositories in process memory. It backs
// tests and the "memory" database driver.
package memory

import (
	"time"

	"github.com/jwalitptl/careline-api/internal/repository"
)

// New returns in-memory implementations of every repository.
func New() *repository.Repositories {
	return &repository.Repositories{
		Users:          NewUserRepository(),
		DoctorProfiles: NewDoctorProfileRepository(),
		Cases:          NewPatientCaseRepository(),
		Chats:          NewChatRepository(),
		Outbox:         NewOutboxRepository(),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
