package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/repository/memory"
	"github.com/jwalitptl/careline-api/pkg/email"
	"github.com/jwalitptl/careline-api/pkg/logger"
	"github.com/jwalitptl/careline-api/pkg/messaging"
	"github.com/jwalitptl/careline-api/pkg/metrics"
)

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (o *fakeMailer) Send(_ context.Context, m email.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m)
	return nil
}

type chanBroker struct {
	ch chan messaging.Message
}

func (b *chanBroker) Publish(context.Context, string, []byte) error { return nil }

func (b *chanBroker) Subscribe(context.Context, ...string) (<-chan messaging.Message, error) {
	return b.ch, nil
}

func (b *chanBroker) Close() error { return nil }

func strPtr(s string) *string { return &s }

type fixture struct {
	repos    *repository.Repositories
	mailer   *fakeMailer
	notifier *Notifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.New()

	require.NoError(t, repos.Users.Create(ctx, &model.User{ID: "uid-john", Username: "john", Email: "john@example.com", Role: model.RolePatient}))
	require.NoError(t, repos.Users.Create(ctx, &model.User{ID: "uid-house", Username: "dr_house", Email: "house@example.com", Role: model.RoleDoctor}))

	require.NoError(t, repos.DoctorProfiles.Create(ctx, &model.DoctorProfile{
		ID:    "uid-house",
		Email: "house@example.com",
		NotificationPrefs: model.NotificationPrefs{
			NewCases:    []model.NotificationChannel{model.ChannelEmail},
			CaseUpdates: []model.NotificationChannel{model.ChannelEmail},
		},
	}))
	require.NoError(t, repos.DoctorProfiles.Create(ctx, &model.DoctorProfile{
		ID:    "uid-wilson",
		Email: "wilson@example.com",
		NotificationPrefs: model.NotificationPrefs{
			NewCases: []model.NotificationChannel{model.ChannelInApp},
		},
	}))

	mailer := &fakeMailer{}
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())
	return &fixture{
		repos:    repos,
		mailer:   mailer,
		notifier: NewNotifier(&chanBroker{}, repos, mailer, logger.Nop(), m),
		metrics:  m,
	}
}

func message(t *testing.T, channel string, payload interface{}) messaging.Message {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return messaging.Message{Channel: channel, Payload: b}
}

func TestNotifier_CaseCreatedMailsOptedInDoctors(t *testing.T) {
	f := newFixture(t)

	err := f.notifier.Handle(context.Background(), message(t, model.EventCaseCreated, model.CaseEvent{
		CaseID:   uuid.New(),
		Name:     "John Doe",
		Severity: model.SeverityHigh,
		Status:   model.CaseStatusPending,
	}))
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"house@example.com"}, f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Subject, "high")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotificationsSent.WithLabelValues(model.EventCaseCreated, "sent")))
}

func TestNotifier_CaseUpdatedMailsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.notifier.Handle(ctx, message(t, model.EventCaseUpdated, model.CaseEvent{
		CaseID:    uuid.New(),
		PatientID: strPtr("uid-john"),
		Status:    model.CaseStatusReviewed,
	})))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"john@example.com"}, f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].TextBody, "reviewed")

	// ownerless intake cases have nobody to notify
	require.NoError(t, f.notifier.Handle(ctx, message(t, model.EventCaseUpdated, model.CaseEvent{CaseID: uuid.New()})))
	assert.Len(t, f.mailer.sent, 1)
}

func TestNotifier_MessagePosted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pc := &model.PatientCase{
		Name:      "John Doe",
		PatientID: strPtr("uid-john"),
		DoctorID:  strPtr("uid-house"),
		Severity:  model.SeverityLow,
		Status:    model.CaseStatusInReview,
		Symptoms:  []string{"cough"},
	}
	require.NoError(t, f.repos.Cases.Create(ctx, pc))

	require.NoError(t, f.notifier.Handle(ctx, message(t, model.EventChatMessagePosted, model.ChatEvent{
		MessageID: uuid.New(), CaseID: pc.ID, SenderID: "uid-john", SenderType: model.SenderPatient,
	})))
	require.NoError(t, f.notifier.Handle(ctx, message(t, model.EventChatMessagePosted, model.ChatEvent{
		MessageID: uuid.New(), CaseID: pc.ID, SenderID: "uid-house", SenderType: model.SenderAI,
	})))

	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, []string{"house@example.com"}, f.mailer.sent[0].To)
	assert.Equal(t, []string{"john@example.com"}, f.mailer.sent[1].To)
}

func TestNotifier_DisabledMailerIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = email.ErrDisabled

	err := f.notifier.Handle(context.Background(), message(t, model.EventCaseCreated, model.CaseEvent{CaseID: uuid.New()}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotificationsSent.WithLabelValues(model.EventCaseCreated, "disabled")))

	f.mailer.err = errors.New("smtp down")
	err = f.notifier.Handle(context.Background(), message(t, model.EventCaseCreated, model.CaseEvent{CaseID: uuid.New()}))
	assert.Error(t, err)
}

func TestNotifier_RejectsMalformedPayload(t *testing.T) {
	f := newFixture(t)
	err := f.notifier.Handle(context.Background(), messaging.Message{Channel: model.EventCaseCreated, Payload: []byte("{")})
	assert.Error(t, err)
}

func TestNotifier_RunConsumesUntilClosed(t *testing.T) {
	f := newFixture(t)
	ch := make(chan messaging.Message, 1)
	f.notifier.broker = &chanBroker{ch: ch}

	ch <- message(t, model.EventCaseCreated, model.CaseEvent{CaseID: uuid.New(), Name: "Jane"})
	close(ch)

	require.NoError(t, f.notifier.Run(context.Background()))
	assert.Len(t, f.mailer.sent, 1)
}

func TestOutboxCleanupWorker_PurgesProcessed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	m := metrics.NewMetrics("test", "worker", prometheus.NewRegistry())

	done := &model.OutboxEvent{EventType: model.EventCaseCreated, Payload: []byte(`{}`)}
	pending := &model.OutboxEvent{EventType: model.EventCaseUpdated, Payload: []byte(`{}`)}
	require.NoError(t, repo.Create(ctx, done))
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.UpdateStatus(ctx, done.ID, model.OutboxStatusProcessed, nil))

	w := NewOutboxCleanupWorker(repo, time.Hour, time.Minute, logger.Nop(), m)

	rows, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, rows, "processed event is still inside the retention window")

	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	rows, err = w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsPurged))

	claimed, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, pending.ID, claimed[0].ID)
}
