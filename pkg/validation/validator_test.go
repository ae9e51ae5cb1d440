package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberForm struct {
	Zip      string `json:"zip" validate:"required,zip5"`
	Laxmi    string `json:"laxmi" validate:"omitempty,mailpref"`
	Relation string `json:"relation" validate:"required,relation"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestDirectoryTags(t *testing.T) {
	v := newValidator(t)

	ok := []memberForm{
		{Zip: "21044", Relation: "W"},
		{Zip: "21044-1234", Laxmi: "Email", Relation: " s "},
		{Zip: " 210441234", Laxmi: "Do Not Mail", Relation: "f"},
	}
	for _, f := range ok {
		assert.NoError(t, v.Struct(f), "%+v", f)
	}

	err := v.Struct(memberForm{Zip: "2104", Laxmi: "Fax", Relation: "?"})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Equal(t, "must start with a 5 digit zip code", details["zip"])
	assert.Equal(t, "must be one of: Do Not Mail, Mail, Email", details["laxmi"])
	assert.Equal(t, "must be one of: W, H, S, D, F, M", details["relation"])

	err = v.Struct(memberForm{Zip: "2104a-0000", Relation: "W", Email: "nope"})
	details = ToDetails(err)
	assert.Contains(t, details, "zip")
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestToDetailsInvalidJSON(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	var target map[string]any
	err := json.Unmarshal([]byte("{"), &target)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestInitRegistersBindingTags(t *testing.T) {
	assert.NotPanics(t, Init)
}

type codeForm struct {
	Code string `json:"code" validate:"required,max=4"`
	Pin  string `json:"pin" validate:"required,len=4"`
}

func TestFieldMessages(t *testing.T) {
	v := newValidator(t)
	details := ToDetails(v.Struct(codeForm{Code: "123456", Pin: "1"}))
	assert.Equal(t, "must be at most 4 characters long", details["code"])
	assert.Equal(t, "validation failed for 'len' with parameter '4'", details["pin"])

	details = ToDetails(v.Struct(codeForm{}))
	assert.Equal(t, "is required", details["code"])
	assert.Equal(t, "is required", details["pin"])
}
