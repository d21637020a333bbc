package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

type doctorProfileRepository struct {
	BaseRepository
}

func NewDoctorProfileRepository(base BaseRepository) repository.DoctorProfileRepository {
	return &doctorProfileRepository{base}
}

type doctorProfileRow struct {
	model.DoctorProfile
	Prefs []byte `db:"notification_prefs"`
}

func (row *doctorProfileRow) toModel() (*model.DoctorProfile, error) {
	p := row.DoctorProfile
	if len(row.Prefs) > 0 {
		if err := json.Unmarshal(row.Prefs, &p.NotificationPrefs); err != nil {
			return nil, fmt.Errorf("failed to decode notification prefs: %w", err)
		}
	}
	return &p, nil
}

const doctorProfileColumns = `id, full_name, specialization, hospital, years_experience, biography,
	email, phone, notification_prefs, created_at, updated_at`

func (r *doctorProfileRepository) Create(ctx context.Context, p *model.DoctorProfile) error {
	prefs, err := json.Marshal(p.NotificationPrefs)
	if err != nil {
		return fmt.Errorf("failed to encode notification prefs: %w", err)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO doctor_profiles (` + doctorProfileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.FullName, p.Specialization, p.Hospital, p.YearsExperience, p.Biography,
		p.Email, p.Phone, prefs, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor profile: %w", mapError(err))
	}
	return nil
}

func (r *doctorProfileRepository) Get(ctx context.Context, id string) (*model.DoctorProfile, error) {
	var row doctorProfileRow
	query := `SELECT ` + doctorProfileColumns + ` FROM doctor_profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", mapError(err))
	}
	return row.toModel()
}

func (r *doctorProfileRepository) Update(ctx context.Context, p *model.DoctorProfile) error {
	prefs, err := json.Marshal(p.NotificationPrefs)
	if err != nil {
		return fmt.Errorf("failed to encode notification prefs: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE doctor_profiles
		SET full_name = $1, specialization = $2, hospital = $3, years_experience = $4,
			biography = $5, email = $6, phone = $7, notification_prefs = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		p.FullName, p.Specialization, p.Hospital, p.YearsExperience,
		p.Biography, p.Email, p.Phone, prefs, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", mapError(err))
	}
	return requireAffected(result, "doctor profile")
}

func (r *doctorProfileRepository) List(ctx context.Context) ([]*model.DoctorProfile, error) {
	var rows []doctorProfileRow
	query := `SELECT ` + doctorProfileColumns + ` FROM doctor_profiles ORDER BY full_name, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list doctor profiles: %w", mapError(err))
	}

	profiles := make([]*model.DoctorProfile, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
