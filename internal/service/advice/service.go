package advice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
	"github.com/jwalitptl/careline-api/pkg/llm"
)

const (
	promptPreamble = "You are a medical AI assistant helping a doctor review a patient case. " +
		"Please provide concise,\nprofessional medical information based on your medical knowledge."
	promptClosing = "Please provide a medically accurate response. " +
		"If you're uncertain, indicate the limitations of your knowledge."
)

// Service forwards a doctor's question to the text generator. A nil
// generator means no credential is configured.
type Service struct {
	generator llm.Generator
	auditor   *audit.Service
}

func NewService(generator llm.Generator, auditor *audit.Service) *Service {
	return &Service{generator: generator, auditor: auditor}
}

// BuildPrompt renders the fixed advisory template.
func BuildPrompt(question string, symptoms []string, history string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nPATIENT INFORMATION:\n- Symptoms: ")
	b.WriteString(strings.Join(symptoms, ", "))
	b.WriteString("\n")
	if history != "" {
		b.WriteString("- Medical History: ")
		b.WriteString(history)
		b.WriteString("\n")
	}
	b.WriteString("\nDOCTOR'S QUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(promptClosing)
	return b.String()
}

// RequestAdvice returns the generated text unmodified.
func (s *Service) RequestAdvice(ctx context.Context, requester *model.User, req *model.AdviceRequest) (*model.AdviceResponse, error) {
	if !requester.IsDoctor() {
		return nil, apperrors.Forbidden("only doctors can use the AI assistant")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.InvalidInput("prompt is required", nil)
	}
	if s.generator == nil {
		return nil, apperrors.UpstreamUnavailable("AI assistant is not configured", nil)
	}

	prompt := BuildPrompt(req.Prompt, req.PatientSymptoms, req.PatientHistory)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, apperrors.UpstreamFailed(
			fmt.Sprintf("failed to generate AI response (model %s)", s.generator.Model()), err)
	}

	s.auditor.Log(ctx, requester.ID, "advice.request", "ai_assistant", s.generator.Model(),
		zap.Int("prompt_chars", len(prompt)),
	)
	return &model.AdviceResponse{Response: text, Model: s.generator.Model()}, nil
}
