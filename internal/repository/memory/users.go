package memory

import (
	"context"
	"sync"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]model.User)}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}

	t := now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = t
	}
	user.UpdatedAt = t

	stored := *user
	stored.DoctorProfile = nil
	r.users[user.ID] = stored
	return nil
}

func (r *userRepository) Get(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Email = user.Email
	existing.FullName = user.FullName
	existing.Phone = user.Phone
	existing.Disabled = user.Disabled
	existing.UpdatedAt = now()
	r.users[user.ID] = existing

	user.UpdatedAt = existing.UpdatedAt
	return nil
}

type doctorProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]model.DoctorProfile
}

func NewDoctorProfileRepository() repository.DoctorProfileRepository {
	return &doctorProfileRepository{profiles: make(map[string]model.DoctorProfile)}
}

func cloneProfile(p model.DoctorProfile) *model.DoctorProfile {
	prefs := p.NotificationPrefs
	prefs.NewCases = append([]model.NotificationChannel(nil), prefs.NewCases...)
	prefs.CaseUpdates = append([]model.NotificationChannel(nil), prefs.CaseUpdates...)
	prefs.System = append([]model.NotificationChannel(nil), prefs.System...)
	p.NotificationPrefs = prefs
	return &p
}

func (r *doctorProfileRepository) Create(_ context.Context, p *model.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.ID]; ok {
		return repository.ErrDuplicate
	}
	t := now()
	p.CreatedAt, p.UpdatedAt = t, t
	r.profiles[p.ID] = *cloneProfile(*p)
	return nil
}

func (r *doctorProfileRepository) Get(_ context.Context, id string) (*model.DoctorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *doctorProfileRepository) Update(_ context.Context, p *model.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	r.profiles[p.ID] = *cloneProfile(*p)
	return nil
}

func (r *doctorProfileRepository) List(_ context.Context) ([]*model.DoctorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*model.DoctorProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, cloneProfile(p))
	}
	sortProfiles(profiles)
	return profiles, nil
}
