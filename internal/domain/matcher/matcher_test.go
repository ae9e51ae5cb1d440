package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/member-directory/internal/domain/entity"
)

func member(id, given, family, display, zip string) entity.Member {
	return entity.Member{
		ID:          id,
		GivenName:   given,
		FamilyName:  family,
		DisplayName: display,
		Address:     entity.Address{PostalCode: zip},
	}
}

func ids(ms []entity.Member) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	criteria := entity.SearchCriteria{GivenName: "Ami", FamilyName: "Patel", PostalCode: "21044"}

	pool := []entity.Member{
		member("1", "Amit", "Patel", "Amit Patel", "21044-1234"),
		member("2", "Amit", "patel ", "Amit Patel", "21044"),
		member("3", "Amit", "Patel", "Amit Patel", "21045"),
		member("4", "Mihir", "PATEL", "Mihir & Amisha Patel", "21044"),
		member("5", "Amit", "Patel", "Amit Patel", ""),
		member("6", "Raj", "Patel", "Raj Patel", "21044"),
		member("7", "AMIT", "Patel", "", "210441111"),
	}

	res := Search(criteria, pool)
	assert.Equal(t, []string{"1", "4", "7"}, ids(res.Candidates))
	assert.False(t, res.OfferCreation)
}

func TestSearchNoMatchOffersCreation(t *testing.T) {
	criteria := entity.SearchCriteria{GivenName: "Zed", FamilyName: "Shah", PostalCode: "21044"}
	pool := []entity.Member{member("1", "Amit", "Patel", "Amit Patel", "21044")}

	res := Search(criteria, pool)
	assert.Empty(t, res.Candidates)
	assert.True(t, res.OfferCreation)

	res = Search(criteria, nil)
	assert.Empty(t, res.Candidates)
	assert.True(t, res.OfferCreation)
}

func TestMatches(t *testing.T) {
	m := member("1", "Amit", "Patel", "Mihir & Rajvi Patel", "21044-0001")

	t.Run("criteria whitespace is ignored", func(t *testing.T) {
		assert.True(t, Matches(entity.SearchCriteria{GivenName: " rajvi ", FamilyName: " patel", PostalCode: "21044 "}, m))
	})
	t.Run("criteria zip plus four is truncated", func(t *testing.T) {
		assert.True(t, Matches(entity.SearchCriteria{GivenName: "Amit", FamilyName: "Patel", PostalCode: "21044-9999"}, m))
	})
	t.Run("missing criteria zip never matches", func(t *testing.T) {
		assert.False(t, Matches(entity.SearchCriteria{GivenName: "Amit", FamilyName: "Patel"}, m))
	})
	t.Run("family name must be equal, not a prefix", func(t *testing.T) {
		assert.False(t, Matches(entity.SearchCriteria{GivenName: "Amit", FamilyName: "Pat", PostalCode: "21044"}, m))
	})
	t.Run("empty given name never matches", func(t *testing.T) {
		assert.False(t, Matches(entity.SearchCriteria{GivenName: " ", FamilyName: "Patel", PostalCode: "21044"}, m))
	})
}

func TestCreateScaffold(t *testing.T) {
	c := entity.SearchCriteria{GivenName: " Asha ", FamilyName: "Shah", PostalCode: "21044"}
	got := CreateScaffold(c, " asha@example.com ")

	assert.Equal(t, entity.NewMemberID, got.ID)
	assert.True(t, got.IsNew())
	assert.Equal(t, "Asha", got.GivenName)
	assert.Equal(t, "Shah", got.FamilyName)
	assert.Equal(t, "Asha Shah", got.DisplayName)
	assert.Equal(t, "21044", got.Address.PostalCode)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Address.Street)
	assert.Empty(t, got.FamilyNotes)
	assert.Equal(t, entity.DefaultMailing(), got.Mailing)
}
