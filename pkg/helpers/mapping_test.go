package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/member-directory/pkg/mailer"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.EmailJob{To: "a@example.com"}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "a@example.com", job.Data["Email"])
	assert.Equal(t, "a@example.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "a@example.com", Data: map[string]any{"Email": "b@example.com"}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "b@example.com", job.Data["Email"])
}

func TestFallbackSubject(t *testing.T) {
	assert.Equal(t, "Your directory verification code", FallbackSubject(mailer.EmailJob{Template: "MEMBER_OTP"}))
	assert.Equal(t, "Notification", FallbackSubject(mailer.EmailJob{}))
}
