package handlers

import (
	"time"

	"github.com/oksasatya/member-directory/internal/application"
	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/roster"
)

type mailingDTO struct {
	Laxmi    entity.MailingPreference `json:"laxmi"`
	Annakut  entity.MailingPreference `json:"annakut"`
	Calendar entity.MailingPreference `json:"calendar"`
	BMN      entity.MailingPreference `json:"bmn"`
}

type memberDTO struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	GivenName   string     `json:"given_name"`
	FamilyName  string     `json:"family_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Street      string     `json:"street"`
	City        string     `json:"city"`
	Region      string     `json:"region"`
	PostalCode  string     `json:"postal_code"`
	FamilyNotes string     `json:"family_notes"`
	Mailing     mailingDTO `json:"mailing"`
	IsNew       bool       `json:"is_new"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toMemberDTO(m entity.Member) memberDTO {
	d := memberDTO{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		GivenName:   m.GivenName,
		FamilyName:  m.FamilyName,
		Email:       m.Email,
		Phone:       m.Phone,
		Street:      m.Address.Street,
		City:        m.Address.City,
		Region:      m.Address.Region,
		PostalCode:  m.Address.PostalCode,
		FamilyNotes: m.FamilyNotes,
		Mailing: mailingDTO{
			Laxmi:    m.Mailing.Laxmi,
			Annakut:  m.Mailing.Annakut,
			Calendar: m.Mailing.Calendar,
			BMN:      m.Mailing.BMN,
		},
		IsNew: m.IsNew(),
	}
	if !m.CreatedAt.IsZero() {
		t := m.CreatedAt
		d.CreatedAt = &t
	}
	if !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt
		d.UpdatedAt = &t
	}
	return d
}

func toMemberDTOs(ms []entity.Member) []memberDTO {
	out := make([]memberDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberDTO(m))
	}
	return out
}

type familyRequest struct {
	Name     string `json:"name" binding:"required"`
	Relation string `json:"relation" binding:"required,relation"`
}

func familyOf(r roster.Roster) []application.FamilyEntry {
	return application.Labeled(r)
}
