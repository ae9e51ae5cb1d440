package postgres

import (
	"github.com/oksasatya/member-directory/internal/domain/entity"
)

// memberColumns names the directory store field ids. Nothing outside this
// package sees them.
var memberColumns = struct {
	GivenName   string
	FamilyName  string
	DisplayName string
	Street      string
	City        string
	Region      string
	PostalCode  string
	Phone       string
	Email       string
	FamilyNotes string
	Laxmi       string
	Annakut     string
	Calendar    string
	BMN         string
}{
	GivenName:   "field_3",
	FamilyName:  "field_5",
	DisplayName: "field_19",
	Street:      "field_20",
	City:        "field_21",
	Region:      "field_22",
	PostalCode:  "field_23",
	Phone:       "field_9",
	Email:       "field_17",
	FamilyNotes: "field_33",
	Laxmi:       "field_28",
	Annakut:     "field_29",
	Calendar:    "field_30",
	BMN:         "field_31",
}

type storeFields map[string]string

func patchToFields(p entity.MemberPatch) storeFields {
	f := storeFields{}
	putStr(f, memberColumns.DisplayName, p.DisplayName)
	putStr(f, memberColumns.GivenName, p.GivenName)
	putStr(f, memberColumns.FamilyName, p.FamilyName)
	putStr(f, memberColumns.Email, p.Email)
	putStr(f, memberColumns.Phone, p.Phone)
	putStr(f, memberColumns.Street, p.Street)
	putStr(f, memberColumns.City, p.City)
	putStr(f, memberColumns.Region, p.Region)
	putStr(f, memberColumns.PostalCode, p.PostalCode)
	putStr(f, memberColumns.FamilyNotes, p.FamilyNotes)
	putPref(f, memberColumns.Laxmi, p.Laxmi)
	putPref(f, memberColumns.Annakut, p.Annakut)
	putPref(f, memberColumns.Calendar, p.Calendar)
	putPref(f, memberColumns.BMN, p.BMN)
	return f
}

// fieldsToPatch rebuilds a patch from the keys present in f.
func fieldsToPatch(f storeFields) entity.MemberPatch {
	return entity.MemberPatch{
		DisplayName: getStr(f, memberColumns.DisplayName),
		GivenName:   getStr(f, memberColumns.GivenName),
		FamilyName:  getStr(f, memberColumns.FamilyName),
		Email:       getStr(f, memberColumns.Email),
		Phone:       getStr(f, memberColumns.Phone),
		Street:      getStr(f, memberColumns.Street),
		City:        getStr(f, memberColumns.City),
		Region:      getStr(f, memberColumns.Region),
		PostalCode:  getStr(f, memberColumns.PostalCode),
		FamilyNotes: getStr(f, memberColumns.FamilyNotes),
		Laxmi:       getPref(f, memberColumns.Laxmi),
		Annakut:     getPref(f, memberColumns.Annakut),
		Calendar:    getPref(f, memberColumns.Calendar),
		BMN:         getPref(f, memberColumns.BMN),
	}
}

func fieldsToMember(id string, f storeFields) entity.Member {
	m := fieldsToPatch(f).ApplyTo(entity.Member{ID: id})
	m.Mailing.Laxmi = m.Mailing.Laxmi.OrDefault()
	m.Mailing.Annakut = m.Mailing.Annakut.OrDefault()
	m.Mailing.Calendar = m.Mailing.Calendar.OrDefault()
	m.Mailing.BMN = m.Mailing.BMN.OrDefault()
	return m
}

// subset keeps only the keys of f that were part of the write.
func (f storeFields) subset(written storeFields) storeFields {
	out := make(storeFields, len(written))
	for k := range written {
		if v, ok := f[k]; ok {
			out[k] = v
		}
	}
	return out
}

func putStr(f storeFields, key string, v *string) {
	if v != nil {
		f[key] = *v
	}
}

func putPref(f storeFields, key string, v *entity.MailingPreference) {
	if v != nil {
		f[key] = string(*v)
	}
}

func getStr(f storeFields, key string) *string {
	v, ok := f[key]
	if !ok {
		return nil
	}
	return &v
}

func getPref(f storeFields, key string) *entity.MailingPreference {
	v, ok := f[key]
	if !ok {
		return nil
	}
	p := entity.MailingPreference(v)
	return &p
}
