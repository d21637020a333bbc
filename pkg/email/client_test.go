package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("careline <noreply@careline.local>", Message{
		To:       []string{" house@example.com ", ""},
		Subject:  "New patient case",
		TextBody: "A new case was submitted.",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"house@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"New patient case"}, msg.GetHeader("Subject"))
}

func TestBuildMessage_Validation(t *testing.T) {
	_, err := buildMessage("", Message{To: []string{"a@b.c"}, Subject: "s"})
	assert.Error(t, err)

	_, err = buildMessage("from@b.c", Message{Subject: "s"})
	assert.Error(t, err)

	_, err = buildMessage("from@b.c", Message{To: []string{"a@b.c"}})
	assert.Error(t, err)
}

func TestClient_SendDisabled(t *testing.T) {
	c := New(Config{Enabled: false})
	err := c.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s"})
	assert.ErrorIs(t, err, ErrDisabled)
}
