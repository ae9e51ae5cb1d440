//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/repository"
	pginfra "github.com/oksasatya/member-directory/internal/infrastructure/postgres"
)

type MemberRepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repo      *pginfra.MemberRepository
}

func TestMemberRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MemberRepositorySuite))
}

func (s *MemberRepositorySuite) SetupSuite() {
	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("directory"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = c

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pginfra.NewPool(ctx, dsn, 4, 1, time.Hour)
	s.Require().NoError(err)

	ddl, err := os.ReadFile("../../../db/migrations/000001_create_members.up.sql")
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, string(ddl))
	s.Require().NoError(err)

	s.repo = pginfra.NewMemberRepository(s.pool)
}

func (s *MemberRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *MemberRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE members`)
	s.Require().NoError(err)
}

func (s *MemberRepositorySuite) create(m entity.Member) entity.Member {
	m.ID = entity.NewMemberID
	ack, err := s.repo.Write(context.Background(), entity.NewMemberID, entity.FullPatch(m))
	s.Require().NoError(err)
	s.Require().NotEqual(entity.NewMemberID, ack.ID)
	got, err := s.repo.GetByID(context.Background(), ack.ID)
	s.Require().NoError(err)
	return *got
}

func (s *MemberRepositorySuite) TestCreateAndGet() {
	m := s.create(entity.Member{GivenName: "Amit", FamilyName: "Patel", Email: "Amit@Example.com", Address: entity.Address{PostalCode: "21044"}})
	s.Equal("Amit", m.GivenName)
	s.Equal(entity.MailDoNotMail, m.Mailing.Laxmi)
	s.False(m.CreatedAt.IsZero())
}

func (s *MemberRepositorySuite) TestLookupByEmailIsCaseInsensitive() {
	created := s.create(entity.Member{GivenName: "Amit", Email: "Amit@Example.com"})

	got, err := s.repo.LookupByEmail(context.Background(), "amit@example.COM")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	_, err = s.repo.LookupByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, repository.ErrMemberNotFound)
}

func (s *MemberRepositorySuite) TestLookupByCriteriaFiltersByZipPrefix() {
	s.create(entity.Member{GivenName: "Amit", FamilyName: "Patel", Address: entity.Address{PostalCode: "21044-1234"}})
	s.create(entity.Member{GivenName: "Raj", FamilyName: "Shah", Address: entity.Address{PostalCode: "21044"}})
	s.create(entity.Member{GivenName: "Amit", FamilyName: "Patel", Address: entity.Address{PostalCode: "21045"}})

	pool, err := s.repo.LookupByCriteria(context.Background(), entity.SearchCriteria{GivenName: "Amit", FamilyName: "Patel", PostalCode: "21044"})
	s.Require().NoError(err)
	s.Len(pool, 2)
}

func (s *MemberRepositorySuite) TestWritePatchesOnlyGivenFields() {
	created := s.create(entity.Member{GivenName: "Amit", FamilyName: "Patel", Phone: "555-0199"})

	phone := "555-0100"
	ack, err := s.repo.Write(context.Background(), created.ID, entity.MemberPatch{Phone: &phone})
	s.Require().NoError(err)
	s.Equal(created.ID, ack.ID)
	s.Require().NotNil(ack.Fields.Phone)
	s.Equal("555-0100", *ack.Fields.Phone)
	s.Nil(ack.Fields.GivenName)

	got, err := s.repo.GetByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal("Amit", got.GivenName)
	s.Equal("555-0100", got.Phone)
}

func (s *MemberRepositorySuite) TestWriteUnknownID() {
	phone := "1"
	_, err := s.repo.Write(context.Background(), "missing", entity.MemberPatch{Phone: &phone})
	s.ErrorIs(err, repository.ErrMemberNotFound)
}

func (s *MemberRepositorySuite) TestList() {
	s.create(entity.Member{GivenName: "Raj", FamilyName: "Shah"})
	s.create(entity.Member{GivenName: "Amit", FamilyName: "Patel"})

	members, total, err := s.repo.List(context.Background(), repository.ListOptions{Limit: 1})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(members, 1)
	s.Equal("Patel", members[0].FamilyName)
}
