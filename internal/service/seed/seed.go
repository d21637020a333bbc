// Package seed loads the demonstration cases into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

// SampleCases are ownerless cases used for demos and local development.
func SampleCases() []*model.PatientCase {
	return []*model.PatientCase{
		{
			Name:             "John Doe",
			Age:              45,
			Gender:           "Male",
			Severity:         model.SeverityHigh,
			Symptoms:         []string{"Chest pain", "Shortness of breath", "Fatigue"},
			AIRecommendation: "Urgent cardiac evaluation recommended. Possible angina or myocardial infarction.",
			Status:           model.CaseStatusPending,
		},
		{
			Name:             "Jane Smith",
			Age:              32,
			Gender:           "Female",
			Severity:         model.SeverityMedium,
			Symptoms:         []string{"Headache", "Dizziness", "Nausea"},
			AIRecommendation: "Neurological assessment advised. Consider migraine or vestibular disorder.",
			Status:           model.CaseStatusPending,
		},
		{
			Name:             "Robert Johnson",
			Age:              58,
			Gender:           "Male",
			Severity:         model.SeverityLow,
			Symptoms:         []string{"Joint pain", "Stiffness", "Reduced mobility"},
			AIRecommendation: "Rheumatological evaluation recommended. Possible osteoarthritis.",
			Status:           model.CaseStatusPending,
		},
	}
}

type Seeder struct {
	cases repository.PatientCaseRepository
}

func NewSeeder(cases repository.PatientCaseRepository) *Seeder {
	return &Seeder{cases: cases}
}

// Run inserts the sample cases when the store holds none and reports how
// many were written.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	n, err := s.cases.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	if n > 0 {
		log.Debug().Int("existing", n).Msg("case store not empty, skipping seed")
		return 0, nil
	}

	written := 0
	for _, c := range SampleCases() {
		if err := s.cases.Create(ctx, c); err != nil {
			return written, fmt.Errorf("failed to seed case %q: %w", c.Name, err)
		}
		written++
	}
	log.Info().Int("cases", written).Msg("seeded sample cases")
	return written, nil
}
