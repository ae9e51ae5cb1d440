// Package matcher decides which directory records a self-service member may
// claim as their own. It performs no I/O; callers supply the candidate pool.
package matcher

import (
	"strings"

	"github.com/oksasatya/member-directory/internal/domain/entity"
)

// zipPrefixLen is how many leading characters of a postal code are compared.
const zipPrefixLen = 5

// Result of a directory search. OfferCreation is set when nothing matched.
type Result struct {
	Candidates    []entity.Member
	OfferCreation bool
}

// Search filters pool down to the records matching c, keeping pool order.
// Display names often name several people ("Mihir & Rajvi Patel"), so every
// plausible candidate is returned for the member to confirm.
func Search(c entity.SearchCriteria, pool []entity.Member) Result {
	out := make([]entity.Member, 0)
	for _, m := range pool {
		if Matches(c, m) {
			out = append(out, m)
		}
	}
	return Result{Candidates: out, OfferCreation: len(out) == 0}
}

// Matches applies the postal code, family name and given name rules to one record.
func Matches(c entity.SearchCriteria, m entity.Member) bool {
	c = c.Normalize()
	want := zipPrefix(c.PostalCode)
	if want == "" || zipPrefix(m.Address.PostalCode) != want {
		return false
	}
	if c.FamilyName == "" || !strings.EqualFold(m.FamilyName, c.FamilyName) {
		return false
	}
	given := strings.ToLower(c.GivenName)
	if given == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.GivenName), given) ||
		strings.Contains(strings.ToLower(m.DisplayName), given)
}

// CreateScaffold builds the not-yet-created record offered when nothing matched.
func CreateScaffold(c entity.SearchCriteria, email string) entity.Member {
	c = c.Normalize()
	return entity.Member{
		ID:          entity.NewMemberID,
		DisplayName: c.GivenName + " " + c.FamilyName,
		GivenName:   c.GivenName,
		FamilyName:  c.FamilyName,
		Email:       strings.TrimSpace(email),
		Address:     entity.Address{PostalCode: c.PostalCode},
		Mailing:     entity.DefaultMailing(),
	}
}

func zipPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > zipPrefixLen {
		return s[:zipPrefixLen]
	}
	return s
}
