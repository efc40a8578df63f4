package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRegistrationConfirmed(t *testing.T) {
	subject, body, err := Render(RegistrationConfirmedTemplate, map[string]any{
		"Username":     "Asha",
		"TeamName":     "Smash <Sisters>",
		"EventName":    "City Open",
		"CategoryName": "Juniors (10-14 years) - Girls",
		"BookingID":    "BTABC123",
		"Player1":      "Asha",
		"Player2":      "Meera",
		"Amount":       "200",
		"TxnID":        "PAYU_MONEY_77",
	})
	require.NoError(t, err)

	assert.Equal(t, "Registration confirmed: City Open (BTABC123)", subject)
	assert.Contains(t, body, "PAYU_MONEY_77")
	assert.Contains(t, body, "Smash &lt;Sisters&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("missing.tmpl", nil)
	assert.Error(t, err)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer("", 587, "", "", "noreply@example.com")
	assert.Error(t, err)
}
