package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/member-directory/internal/domain/entity"
)

func TestPatchToFields(t *testing.T) {
	phone := "555-0100"
	notes := "Rajvi(W),Tom(S)"
	pref := entity.MailEmail
	f := patchToFields(entity.MemberPatch{Phone: &phone, FamilyNotes: &notes, Calendar: &pref})

	assert.Equal(t, storeFields{
		"field_9":  "555-0100",
		"field_33": "Rajvi(W),Tom(S)",
		"field_30": "Email",
	}, f)
}

func TestFieldsToMember(t *testing.T) {
	f := storeFields{
		"field_3":  "Amit",
		"field_5":  "Patel",
		"field_19": "Amit & Rajvi Patel",
		"field_20": "1 Main St",
		"field_21": "Columbia",
		"field_22": "MD",
		"field_23": "21044",
		"field_9":  "555-0199",
		"field_17": "amit@example.com",
		"field_33": "Rajvi(W)",
		"field_28": "Mail",
	}
	m := fieldsToMember("42", f)

	assert.Equal(t, "42", m.ID)
	assert.Equal(t, "Amit", m.GivenName)
	assert.Equal(t, "Patel", m.FamilyName)
	assert.Equal(t, "Amit & Rajvi Patel", m.DisplayName)
	assert.Equal(t, entity.Address{Street: "1 Main St", City: "Columbia", Region: "MD", PostalCode: "21044"}, m.Address)
	assert.Equal(t, "555-0199", m.Phone)
	assert.Equal(t, "amit@example.com", m.Email)
	assert.Equal(t, "Rajvi(W)", m.FamilyNotes)
	assert.Equal(t, entity.MailPostal, m.Mailing.Laxmi)
	assert.Equal(t, entity.MailDoNotMail, m.Mailing.BMN)
}

func TestStoreFieldsSubset(t *testing.T) {
	stored := storeFields{"field_3": "Amit", "field_9": "555", "field_17": "a@b.com"}
	got := stored.subset(storeFields{"field_9": "ignored"})
	assert.Equal(t, storeFields{"field_9": "555"}, got)
}

func TestFullPatchRoundTripsThroughFields(t *testing.T) {
	m := entity.Member{
		ID:          "9",
		DisplayName: "Asha Shah",
		GivenName:   "Asha",
		FamilyName:  "Shah",
		Address:     entity.Address{PostalCode: "21044"},
		Mailing:     entity.DefaultMailing(),
	}
	got := fieldsToMember("9", patchToFields(entity.FullPatch(m)))
	assert.Equal(t, m, got)
}
