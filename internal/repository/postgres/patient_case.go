package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

type patientCaseRepository struct {
	BaseRepository
}

func NewPatientCaseRepository(base BaseRepository) repository.PatientCaseRepository {
	return &patientCaseRepository{base}
}

// caseRow carries symptoms as a native TEXT[] column.
type caseRow struct {
	model.PatientCase
	SymptomList pq.StringArray `db:"symptoms"`
}

func (row *caseRow) toModel() *model.PatientCase {
	c := row.PatientCase
	c.Symptoms = []string(row.SymptomList)
	if c.Symptoms == nil {
		c.Symptoms = []string{}
	}
	return &c
}

const caseColumns = `id, patient_id, name, age, gender, severity, symptoms, medical_history,
	ai_recommendation, status, doctor_id, doctor_notes, doctor_recommendation, created_at, updated_at`

func (r *patientCaseRepository) Create(ctx context.Context, c *model.PatientCase) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
		INSERT INTO patient_cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.PatientID, c.Name, c.Age, c.Gender, c.Severity, pq.StringArray(c.Symptoms),
		c.MedicalHistory, c.AIRecommendation, c.Status, c.DoctorID, c.DoctorNotes,
		c.DoctorRecommendation, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient case: %w", mapError(err))
	}
	return nil
}

func (r *patientCaseRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientCase, error) {
	var row caseRow
	query := `SELECT ` + caseColumns + ` FROM patient_cases WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient case: %w", mapError(err))
	}
	return row.toModel(), nil
}

func (r *patientCaseRepository) Update(ctx context.Context, c *model.PatientCase) error {
	c.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE patient_cases
		SET severity = $1, status = $2, doctor_id = $3, doctor_notes = $4,
			doctor_recommendation = $5, ai_recommendation = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Severity, c.Status, c.DoctorID, c.DoctorNotes,
		c.DoctorRecommendation, c.AIRecommendation, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient case: %w", mapError(err))
	}
	return requireAffected(result, "patient case")
}

func (r *patientCaseRepository) List(ctx context.Context, filter model.CaseFilter) ([]*model.PatientCase, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + caseColumns + ` FROM patient_cases`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []caseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patient cases: %w", mapError(err))
	}

	cases := make([]*model.PatientCase, 0, len(rows))
	for i := range rows {
		cases = append(cases, rows[i].toModel())
	}
	return cases, nil
}

func (r *patientCaseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patient_cases`); err != nil {
		return 0, fmt.Errorf("failed to count patient cases: %w", err)
	}
	return n, nil
}
