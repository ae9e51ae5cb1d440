package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := Member{ID: "7", GivenName: "Amit", FamilyName: "Patel", Phone: "555-0199", Mailing: DefaultMailing()}

	t.Run("unchanged record gives an empty patch", func(t *testing.T) {
		assert.True(t, Diff(base, base).IsEmpty())
	})

	t.Run("only changed fields are written", func(t *testing.T) {
		next := base
		next.Phone = "555-0100"
		next.FamilyNotes = "Rajvi(W)"
		next.Mailing.Calendar = MailPostal

		p := Diff(base, next)
		require.NotNil(t, p.Phone)
		require.NotNil(t, p.FamilyNotes)
		require.NotNil(t, p.Calendar)
		assert.Equal(t, "555-0100", *p.Phone)
		assert.Equal(t, "Rajvi(W)", *p.FamilyNotes)
		assert.Equal(t, MailPostal, *p.Calendar)
		assert.Nil(t, p.GivenName)
		assert.Nil(t, p.Laxmi)

		assert.Equal(t, next, p.ApplyTo(base))
	})

	t.Run("new record is written in full with default mailing", func(t *testing.T) {
		next := Member{ID: NewMemberID, GivenName: "Asha", FamilyName: "Shah"}
		p := Diff(Member{}, next)
		require.NotNil(t, p.GivenName)
		require.NotNil(t, p.Street)
		require.NotNil(t, p.BMN)
		assert.Equal(t, "", *p.Street)
		assert.Equal(t, MailDoNotMail, *p.BMN)
	})
}

func TestWithoutMailing(t *testing.T) {
	pref := MailEmail
	phone := "555"
	p := MemberPatch{Phone: &phone, Laxmi: &pref, BMN: &pref}.WithoutMailing()
	assert.Nil(t, p.Laxmi)
	assert.Nil(t, p.BMN)
	assert.Equal(t, &phone, p.Phone)
}

func TestMailingPreference(t *testing.T) {
	assert.True(t, MailDoNotMail.Valid())
	assert.True(t, MailEmail.Valid())
	assert.False(t, MailingPreference("Fax").Valid())
	assert.Equal(t, MailDoNotMail, MailingPreference("").OrDefault())
}

func TestSearchCriteriaComplete(t *testing.T) {
	assert.True(t, SearchCriteria{GivenName: "A", FamilyName: "B", PostalCode: "21044"}.Complete())
	assert.False(t, SearchCriteria{GivenName: " ", FamilyName: "B", PostalCode: "21044"}.Complete())
}
