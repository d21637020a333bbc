package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/pkg/email"
	"github.com/jwalitptl/careline-api/pkg/logger"
	"github.com/jwalitptl/careline-api/pkg/messaging"
	"github.com/jwalitptl/careline-api/pkg/metrics"
)

// NotifierChannels are the broker channels the notifier consumes.
var NotifierChannels = []string{
	model.EventCaseCreated,
	model.EventCaseUpdated,
	model.EventChatMessagePosted,
}

// Notifier turns published domain events into e-mails. Doctors are mailed
// according to their notification preferences; patients are mailed when a
// doctor touches their case or replies in its thread.
type Notifier struct {
	broker   messaging.Broker
	users    repository.UserRepository
	profiles repository.DoctorProfileRepository
	cases    repository.PatientCaseRepository
	mailer   email.Sender
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewNotifier(
	broker messaging.Broker,
	repos *repository.Repositories,
	mailer email.Sender,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Notifier {
	return &Notifier{
		broker:   broker,
		users:    repos.Users,
		profiles: repos.DoctorProfiles,
		cases:    repos.Cases,
		mailer:   mailer,
		logger:   logger.With("notifier"),
		metrics:  metrics,
	}
}

// Run consumes events until ctx is cancelled or the subscription closes.
func (n *Notifier) Run(ctx context.Context) error {
	msgs, err := n.broker.Subscribe(ctx, NotifierChannels...)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.logger.Info("notifier listening", "channels", strings.Join(NotifierChannels, ","))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := n.Handle(ctx, msg); err != nil {
				n.logger.Error(err, "failed to handle event", "channel", msg.Channel)
			}
		}
	}
}

// Handle processes a single broker message.
func (n *Notifier) Handle(ctx context.Context, msg messaging.Message) error {
	switch msg.Channel {
	case model.EventCaseCreated:
		var ev model.CaseEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Channel, err)
		}
		return n.caseCreated(ctx, &ev)
	case model.EventCaseUpdated:
		var ev model.CaseEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Channel, err)
		}
		return n.caseUpdated(ctx, &ev)
	case model.EventChatMessagePosted:
		var ev model.ChatEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Channel, err)
		}
		return n.messagePosted(ctx, &ev)
	default:
		n.logger.Debug("ignoring event", "channel", msg.Channel)
		return nil
	}
}

func (n *Notifier) caseCreated(ctx context.Context, ev *model.CaseEvent) error {
	profiles, err := n.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list doctor profiles: %w", err)
	}

	var to []string
	for _, p := range profiles {
		if p.Email != "" && p.NotificationPrefs.Wants(model.TopicNewCases, model.ChannelEmail) {
			to = append(to, p.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	return n.send(ctx, model.EventCaseCreated, email.Message{
		To:      to,
		Subject: fmt.Sprintf("New %s severity case: %s", ev.Severity, ev.Name),
		TextBody: fmt.Sprintf("A new patient case was submitted.\n\nPatient: %s\nSeverity: %s\nCase: %s\n",
			ev.Name, ev.Severity, ev.CaseID),
	})
}

func (n *Notifier) caseUpdated(ctx context.Context, ev *model.CaseEvent) error {
	if ev.PatientID == nil {
		return nil
	}
	patient, err := n.lookupUser(ctx, *ev.PatientID)
	if err != nil || patient == nil || patient.Email == "" {
		return err
	}

	return n.send(ctx, model.EventCaseUpdated, email.Message{
		To:      []string{patient.Email},
		Subject: "Your case has been updated",
		TextBody: fmt.Sprintf("A doctor has updated your case.\n\nStatus: %s\nCase: %s\n",
			ev.Status, ev.CaseID),
	})
}

func (n *Notifier) messagePosted(ctx context.Context, ev *model.ChatEvent) error {
	pc, err := n.cases.Get(ctx, ev.CaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load case: %w", err)
	}

	var to string
	switch ev.SenderType {
	case model.SenderPatient:
		if pc.DoctorID == nil {
			return nil
		}
		profile, err := n.profiles.Get(ctx, *pc.DoctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load doctor profile: %w", err)
		}
		if !profile.NotificationPrefs.Wants(model.TopicCaseUpdates, model.ChannelEmail) {
			return nil
		}
		to = profile.Email
	case model.SenderDoctor, model.SenderAI:
		if pc.PatientID == nil {
			return nil
		}
		patient, err := n.lookupUser(ctx, *pc.PatientID)
		if err != nil || patient == nil {
			return err
		}
		to = patient.Email
	}
	if to == "" {
		return nil
	}

	return n.send(ctx, model.EventChatMessagePosted, email.Message{
		To:       []string{to},
		Subject:  fmt.Sprintf("New message on case %s", pc.Name),
		TextBody: fmt.Sprintf("There is a new message on case %s.\n", pc.ID),
	})
}

func (n *Notifier) lookupUser(ctx context.Context, id string) (*model.User, error) {
	u, err := n.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (n *Notifier) send(ctx context.Context, eventType string, m email.Message) error {
	err := n.mailer.Send(ctx, m)
	switch {
	case errors.Is(err, email.ErrDisabled):
		n.metrics.NotificationsSent.WithLabelValues(eventType, "disabled").Inc()
		return nil
	case err != nil:
		n.metrics.NotificationsSent.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.metrics.NotificationsSent.WithLabelValues(eventType, "sent").Inc()
	return nil
}
