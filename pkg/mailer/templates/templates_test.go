package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/member-directory/config"
)

func TestRenderMemberOTP(t *testing.T) {
	cfg := &config.Config{AppName: "member-directory", DirectorySiteLabel: "Temple Directory", CompanyName: "Example Mandir"}
	exp := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)
	data := NewMemberOTPData(cfg, "Amit", "amit@example.com", "123456", WithExpiresAt(exp), WithLocation("Columbia, Maryland"))

	subject, text, html, err := Render(MemberOTP, data)
	require.NoError(t, err)

	assert.Equal(t, "Temple Directory verification code: 123456", strings.TrimSpace(subject))
	assert.Contains(t, text, "123456")
	assert.Contains(t, text, "01 March 2026, 09:10")
	assert.Contains(t, text, "Columbia, Maryland")
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "Hello Amit")
}

func TestRenderMemberOTPDefaults(t *testing.T) {
	data := NewMemberOTPData(&config.Config{}, "", "x@example.com", "000111")
	subject, _, html, err := Render(MemberOTP, data)
	require.NoError(t, err)
	assert.Contains(t, subject, "Member Directory")
	assert.Contains(t, html, "Hello there")
}

func TestFormatGeo(t *testing.T) {
	assert.Equal(t, "Columbia, Maryland, United States", FormatGeo(Geo{City: "Columbia", Region: "Maryland", Country: "United States"}))
	assert.Equal(t, "Maryland", FormatGeo(Geo{Region: " Maryland "}))
}
