package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/config"
	"github.com/oksasatya/member-directory/internal/domain/entity"
	pginfra "github.com/oksasatya/member-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/member-directory/internal/infrastructure/search"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

func str(s string) *string { return &s }

func pref(p entity.MailingPreference) *entity.MailingPreference { return &p }

// demoMembers mixes tagged rosters with the free-text notes older records carry.
var demoMembers = []entity.MemberPatch{
	{
		DisplayName: str("Amit & Rajvi Patel"), GivenName: str("Amit"), FamilyName: str("Patel"),
		Email: str("amit.patel@example.com"), Phone: str("410-555-0101"),
		Street: str("12 Oak Lane"), City: str("Columbia"), Region: str("MD"), PostalCode: str("21044"),
		FamilyNotes: str("Rajvi(W),Dev(S),Asha(D)"),
		Laxmi:       pref(entity.MailEmail), Annakut: pref(entity.MailPostal), Calendar: pref(entity.MailPostal), BMN: pref(entity.MailEmail),
	},
	{
		DisplayName: str("Mihir & Rajvi Patel"), GivenName: str("Mihir"), FamilyName: str("Patel"),
		Street: str("40 Elm Court"), City: str("Columbia"), Region: str("MD"), PostalCode: str("21044-3310"),
		FamilyNotes: str("Wife: Rajvi, Son: Neel"),
	},
	{
		DisplayName: str("Kiran Shah"), GivenName: str("Kiran"), FamilyName: str("Shah"),
		Email: str("kiran.shah@example.com"),
		Street: str("7 Birch Road"), City: str("Ellicott City"), Region: str("MD"), PostalCode: str("21043"),
		FamilyNotes: str("Meena(M),Raj(F)"),
		Calendar:    pref(entity.MailPostal),
	},
	{
		DisplayName: str("The Desai Family"), GivenName: str("Harsh"), FamilyName: str("Desai"),
		Street: str("88 Pine Street"), City: str("Laurel"), Region: str("MD"), PostalCode: str("20707"),
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewMemberRepository(pool)
	for _, p := range demoMembers {
		if p.Email != nil {
			if m, err := repo.LookupByEmail(ctx, *p.Email); err == nil {
				logger.WithFields(logrus.Fields{"id": m.ID, "email": *p.Email}).Info("member already seeded")
				continue
			}
		}
		ack, err := repo.Write(ctx, entity.NewMemberID, p)
		if err != nil {
			logger.WithError(err).Fatal("failed to seed member")
		}
		logger.WithFields(logrus.Fields{"id": ack.ID, "display_name": *p.DisplayName}).Info("seeded member")
	}

	// Keep the search index in step so seeded members show up as candidates.
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to create elasticsearch client")
		}
		n, err := search.NewMemberIndex(es, cfg.ESMembersIndex, logger).Reindex(ctx, repo)
		if err != nil {
			logger.WithError(err).Fatal("failed to index seeded members")
		}
		logger.WithField("indexed", n).Info("members index refreshed")
	}
}
