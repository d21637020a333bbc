package model

import "time"

// NotificationChannel is a delivery channel for a notification topic.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelInApp NotificationChannel = "in_app"
)

// NotificationTopic groups the notifications a doctor can opt into.
type NotificationTopic string

const (
	TopicNewCases    NotificationTopic = "new_cases"
	TopicCaseUpdates NotificationTopic = "case_updates"
	TopicSystem      NotificationTopic = "system"
)

// NotificationPrefs maps each topic to the channels it is delivered on.
type NotificationPrefs struct {
	NewCases    []NotificationChannel `json:"new_cases"`
	CaseUpdates []NotificationChannel `json:"case_updates"`
	System      []NotificationChannel `json:"system"`
}

// DefaultNotificationPrefs mirrors the defaults of the doctor account page.
func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{
		NewCases:    []NotificationChannel{ChannelEmail, ChannelInApp},
		CaseUpdates: []NotificationChannel{ChannelEmail, ChannelInApp},
		System:      []NotificationChannel{ChannelEmail},
	}
}

func (p NotificationPrefs) Wants(topic NotificationTopic, channel NotificationChannel) bool {
	var channels []NotificationChannel
	switch topic {
	case TopicNewCases:
		channels = p.NewCases
	case TopicCaseUpdates:
		channels = p.CaseUpdates
	case TopicSystem:
		channels = p.System
	}
	for _, c := range channels {
		if c == channel {
			return true
		}
	}
	return false
}

// DoctorProfile holds the professional details of a doctor. Its ID is the
// owning user's ID.
type DoctorProfile struct {
	ID                string            `json:"id" db:"id"`
	FullName          string            `json:"full_name" db:"full_name"`
	Specialization    string            `json:"specialization" db:"specialization"`
	Hospital          string            `json:"hospital" db:"hospital"`
	YearsExperience   int               `json:"years_experience" db:"years_experience"`
	Biography         string            `json:"biography" db:"biography"`
	Email             string            `json:"email" db:"email"`
	Phone             string            `json:"phone" db:"phone"`
	NotificationPrefs NotificationPrefs `json:"notification_prefs" db:"-"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

type CreateDoctorProfileRequest struct {
	FullName          string             `json:"full_name" binding:"max=200"`
	Specialization    string             `json:"specialization" binding:"required,max=200"`
	Hospital          string             `json:"hospital" binding:"max=200"`
	YearsExperience   int                `json:"years_experience" binding:"min=0,max=80"`
	Biography         string             `json:"biography" binding:"max=5000"`
	Email             string             `json:"email" binding:"omitempty,email"`
	Phone             string             `json:"phone" binding:"max=50"`
	NotificationPrefs *NotificationPrefs `json:"notification_prefs"`
}

// UpdateDoctorProfileRequest applies patch semantics: nil fields are left alone.
type UpdateDoctorProfileRequest struct {
	FullName          *string            `json:"full_name" binding:"omitempty,max=200"`
	Specialization    *string            `json:"specialization" binding:"omitempty,max=200"`
	Hospital          *string            `json:"hospital" binding:"omitempty,max=200"`
	YearsExperience   *int               `json:"years_experience" binding:"omitempty,min=0,max=80"`
	Biography         *string            `json:"biography" binding:"omitempty,max=5000"`
	Email             *string            `json:"email" binding:"omitempty,email"`
	Phone             *string            `json:"phone" binding:"omitempty,max=50"`
	NotificationPrefs *NotificationPrefs `json:"notification_prefs"`
}

// Apply copies the non-nil fields of r onto p.
func (r *UpdateDoctorProfileRequest) Apply(p *DoctorProfile) {
	if r.FullName != nil {
		p.FullName = *r.FullName
	}
	if r.Specialization != nil {
		p.Specialization = *r.Specialization
	}
	if r.Hospital != nil {
		p.Hospital = *r.Hospital
	}
	if r.YearsExperience != nil {
		p.YearsExperience = *r.YearsExperience
	}
	if r.Biography != nil {
		p.Biography = *r.Biography
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.NotificationPrefs != nil {
		p.NotificationPrefs = *r.NotificationPrefs
	}
}

// NewDoctorProfile builds the profile for owner, falling back to the
// owner's name and email when the request leaves them blank.
func NewDoctorProfile(owner *User, req *CreateDoctorProfileRequest) *DoctorProfile {
	p := &DoctorProfile{
		ID:                owner.ID,
		FullName:          req.FullName,
		Specialization:    req.Specialization,
		Hospital:          req.Hospital,
		YearsExperience:   req.YearsExperience,
		Biography:         req.Biography,
		Email:             req.Email,
		Phone:             req.Phone,
		NotificationPrefs: DefaultNotificationPrefs(),
	}
	if p.FullName == "" {
		p.FullName = owner.FullName
	}
	if p.Email == "" {
		p.Email = owner.Email
	}
	if p.Phone == "" {
		p.Phone = owner.Phone
	}
	if req.NotificationPrefs != nil {
		p.NotificationPrefs = *req.NotificationPrefs
	}
	return p
}
