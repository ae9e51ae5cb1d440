package entity

import (
	"strings"
	"time"
)

// NewMemberID marks a record that has not been created in the directory yet.
// Real ids are always assigned by the directory store.
const NewMemberID = "new"

// MailingPreference is how a member wants to receive one category of mailing.
type MailingPreference string

const (
	MailDoNotMail MailingPreference = "Do Not Mail"
	MailPostal    MailingPreference = "Mail"
	MailEmail     MailingPreference = "Email"
)

// Valid reports whether p is one of the known preferences.
func (p MailingPreference) Valid() bool {
	switch p {
	case MailDoNotMail, MailPostal, MailEmail:
		return true
	}
	return false
}

// OrDefault maps an empty preference to "Do Not Mail".
func (p MailingPreference) OrDefault() MailingPreference {
	if p == "" {
		return MailDoNotMail
	}
	return p
}

type Address struct {
	Street     string
	City       string
	Region     string // state/province
	PostalCode string
}

// Mailing holds the per-category mailing preferences of a household.
type Mailing struct {
	Laxmi    MailingPreference
	Annakut  MailingPreference
	Calendar MailingPreference
	BMN      MailingPreference
}

// DefaultMailing opts the household out of every category.
func DefaultMailing() Mailing {
	return Mailing{
		Laxmi:    MailDoNotMail,
		Annakut:  MailDoNotMail,
		Calendar: MailDoNotMail,
		BMN:      MailDoNotMail,
	}
}

// Member is one household record of the directory.
// FamilyNotes carries the encoded family roster, see the roster package.
type Member struct {
	ID          string
	DisplayName string
	GivenName   string
	FamilyName  string
	Email       string
	Phone       string
	Address     Address
	FamilyNotes string
	Mailing     Mailing
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsNew reports whether the record still carries the creation sentinel.
func (m Member) IsNew() bool { return m.ID == NewMemberID }

// FullName joins given and family name.
func (m Member) FullName() string {
	return strings.TrimSpace(m.GivenName + " " + m.FamilyName)
}

// SearchCriteria is what a self-service member types to find their record.
type SearchCriteria struct {
	GivenName  string `json:"given_name" binding:"required"`
	FamilyName string `json:"family_name" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required,zip5"`
}

// Normalize trims surrounding whitespace from every field.
func (c SearchCriteria) Normalize() SearchCriteria {
	return SearchCriteria{
		GivenName:  strings.TrimSpace(c.GivenName),
		FamilyName: strings.TrimSpace(c.FamilyName),
		PostalCode: strings.TrimSpace(c.PostalCode),
	}
}

// Complete reports whether all three fields are present after trimming.
func (c SearchCriteria) Complete() bool {
	n := c.Normalize()
	return n.GivenName != "" && n.FamilyName != "" && n.PostalCode != ""
}
