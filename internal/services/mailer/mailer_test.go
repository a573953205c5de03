package mailer

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/models"
)

func testConfig() common.MailConfig {
	return common.MailConfig{
		Host: "smtp.x.test",
		Port: 587,
		From: "site@x.test",
		To:   "owner@x.test",
	}
}

func TestSend_BuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := NewService(testConfig(), nil).WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	err := svc.Send(context.Background(), &models.ContactMessage{
		ID:      "m1",
		Name:    "Visitor",
		Email:   "visitor@y.test",
		Subject: "Hi there",
		Body:    "Nice blog.",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.x.test:587", gotAddr)
	assert.Equal(t, "site@x.test", gotFrom)
	assert.Equal(t, []string{"owner@x.test"}, gotTo)
	assert.Contains(t, string(gotMsg), "Reply-To: Visitor <visitor@y.test>")
	assert.Contains(t, string(gotMsg), "Subject: Hi there")
	assert.Contains(t, string(gotMsg), "Nice blog.")
}

func TestSend_StripsHeaderInjection(t *testing.T) {
	var gotMsg []byte
	svc := NewService(testConfig(), nil).WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	})

	err := svc.Send(context.Background(), &models.ContactMessage{
		ID:      "m2",
		Name:    "Evil",
		Email:   "evil@y.test",
		Subject: "Hello\r\nBcc: everyone@y.test",
		Body:    "x",
	})
	require.NoError(t, err)
	// The CRLF is flattened so "Bcc:" can never start a header line.
	assert.NotContains(t, string(gotMsg), "\r\nBcc:")
	assert.Contains(t, string(gotMsg), "Subject: Hello  Bcc: everyone@y.test")
}

func TestSend_NotConfigured(t *testing.T) {
	svc := NewService(common.MailConfig{}, nil)

	err := svc.Send(context.Background(), &models.ContactMessage{ID: "m3", Email: "a@y.test", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
