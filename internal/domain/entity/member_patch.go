package entity

import "time"

// MemberPatch is a partial write. A nil field is not part of the write.
type MemberPatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	GivenName   *string `json:"given_name,omitempty"`
	FamilyName  *string `json:"family_name,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Street      *string `json:"street,omitempty"`
	City        *string `json:"city,omitempty"`
	Region      *string `json:"region,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	FamilyNotes *string `json:"family_notes,omitempty"`

	Laxmi    *MailingPreference `json:"mailing_laxmi,omitempty" binding:"omitempty,mailpref"`
	Annakut  *MailingPreference `json:"mailing_annakut,omitempty" binding:"omitempty,mailpref"`
	Calendar *MailingPreference `json:"mailing_calendar,omitempty" binding:"omitempty,mailpref"`
	BMN      *MailingPreference `json:"mailing_bmn,omitempty" binding:"omitempty,mailpref"`
}

// WriteAck is what the directory store acknowledged as written.
// ID is the store id of the record; for a create it is the newly assigned id.
type WriteAck struct {
	ID        string
	Fields    MemberPatch
	UpdatedAt time.Time
}

// IsEmpty reports whether the patch writes nothing.
func (p MemberPatch) IsEmpty() bool {
	return p == MemberPatch{}
}

// WithoutMailing drops the mailing preferences; self-service edits may not change them.
func (p MemberPatch) WithoutMailing() MemberPatch {
	p.Laxmi, p.Annakut, p.Calendar, p.BMN = nil, nil, nil, nil
	return p
}

// ApplyTo overlays the set fields of p onto m and returns the result.
func (p MemberPatch) ApplyTo(m Member) Member {
	setStr(&m.DisplayName, p.DisplayName)
	setStr(&m.GivenName, p.GivenName)
	setStr(&m.FamilyName, p.FamilyName)
	setStr(&m.Email, p.Email)
	setStr(&m.Phone, p.Phone)
	setStr(&m.Address.Street, p.Street)
	setStr(&m.Address.City, p.City)
	setStr(&m.Address.Region, p.Region)
	setStr(&m.Address.PostalCode, p.PostalCode)
	setStr(&m.FamilyNotes, p.FamilyNotes)
	setPref(&m.Mailing.Laxmi, p.Laxmi)
	setPref(&m.Mailing.Annakut, p.Annakut)
	setPref(&m.Mailing.Calendar, p.Calendar)
	setPref(&m.Mailing.BMN, p.BMN)
	return m
}

// Diff builds the patch that turns base into next. A record that has not
// been created yet is sent in full.
func Diff(base, next Member) MemberPatch {
	if next.IsNew() {
		return FullPatch(next)
	}
	var p MemberPatch
	p.DisplayName = diffStr(base.DisplayName, next.DisplayName)
	p.GivenName = diffStr(base.GivenName, next.GivenName)
	p.FamilyName = diffStr(base.FamilyName, next.FamilyName)
	p.Email = diffStr(base.Email, next.Email)
	p.Phone = diffStr(base.Phone, next.Phone)
	p.Street = diffStr(base.Address.Street, next.Address.Street)
	p.City = diffStr(base.Address.City, next.Address.City)
	p.Region = diffStr(base.Address.Region, next.Address.Region)
	p.PostalCode = diffStr(base.Address.PostalCode, next.Address.PostalCode)
	p.FamilyNotes = diffStr(base.FamilyNotes, next.FamilyNotes)
	p.Laxmi = diffPref(base.Mailing.Laxmi, next.Mailing.Laxmi)
	p.Annakut = diffPref(base.Mailing.Annakut, next.Mailing.Annakut)
	p.Calendar = diffPref(base.Mailing.Calendar, next.Mailing.Calendar)
	p.BMN = diffPref(base.Mailing.BMN, next.Mailing.BMN)
	return p
}

// FullPatch sets every field of m.
func FullPatch(m Member) MemberPatch {
	laxmi := m.Mailing.Laxmi.OrDefault()
	annakut := m.Mailing.Annakut.OrDefault()
	calendar := m.Mailing.Calendar.OrDefault()
	bmn := m.Mailing.BMN.OrDefault()
	return MemberPatch{
		DisplayName: ptr(m.DisplayName),
		GivenName:   ptr(m.GivenName),
		FamilyName:  ptr(m.FamilyName),
		Email:       ptr(m.Email),
		Phone:       ptr(m.Phone),
		Street:      ptr(m.Address.Street),
		City:        ptr(m.Address.City),
		Region:      ptr(m.Address.Region),
		PostalCode:  ptr(m.Address.PostalCode),
		FamilyNotes: ptr(m.FamilyNotes),
		Laxmi:       &laxmi,
		Annakut:     &annakut,
		Calendar:    &calendar,
		BMN:         &bmn,
	}
}

func ptr(s string) *string { return &s }

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setPref(dst *MailingPreference, v *MailingPreference) {
	if v != nil {
		*dst = *v
	}
}

func diffStr(a, b string) *string {
	if a == b {
		return nil
	}
	return &b
}

func diffPref(a, b MailingPreference) *MailingPreference {
	if a == b {
		return nil
	}
	return &b
}
