package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/repository"
)

// criteriaBatch is the page size LookupByCriteria reads with.
const criteriaBatch = 200

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const selectMember = `SELECT id, fields, created_at, updated_at FROM members`

func scanMember(row pgx.Row) (*entity.Member, error) {
	var (
		id      string
		fields  storeFields
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&id, &fields, &created, &updated); err != nil {
		return nil, err
	}
	m := fieldsToMember(id, fields)
	m.CreatedAt = created
	m.UpdatedAt = updated
	return &m, nil
}

func collectMembers(rows pgx.Rows) ([]entity.Member, error) {
	defer rows.Close()
	out := make([]entity.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, selectMember+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *MemberRepository) LookupByEmail(ctx context.Context, email string) (*entity.Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, repository.ErrMemberNotFound
	}
	q := fmt.Sprintf(selectMember+` WHERE lower(fields ->> '%s') = lower($1) ORDER BY updated_at DESC LIMIT 1`, memberColumns.Email)
	m, err := scanMember(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

// LookupByCriteria returns every record sharing the five digit postal prefix,
// reading it in id-ordered batches. Name filtering is left to the matcher.
func (r *MemberRepository) LookupByCriteria(ctx context.Context, c entity.SearchCriteria) ([]entity.Member, error) {
	zip := strings.TrimSpace(c.PostalCode)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	if zip == "" {
		return []entity.Member{}, nil
	}
	q := fmt.Sprintf(selectMember+`
		WHERE left(btrim(fields ->> '%s'), 5) = $1 AND id > $2
		ORDER BY id
		LIMIT $3`, memberColumns.PostalCode)

	out := make([]entity.Member, 0)
	after := ""
	for {
		rows, err := r.pool.Query(ctx, q, zip, after, criteriaBatch)
		if err != nil {
			return nil, err
		}
		batch, err := collectMembers(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < criteriaBatch {
			return out, nil
		}
		after = batch[len(batch)-1].ID
	}
}

func (r *MemberRepository) List(ctx context.Context, opts repository.ListOptions) ([]entity.Member, int, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(selectMember+`
		ORDER BY lower(fields ->> '%s'), lower(fields ->> '%s'), id
		LIMIT $1 OFFSET $2`, memberColumns.FamilyName, memberColumns.GivenName)
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	members, err := collectMembers(rows)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// Write creates the record when id is the creation sentinel, otherwise merges
// the patch into the stored fields. The ack echoes the stored values of the
// written fields.
func (r *MemberRepository) Write(ctx context.Context, id string, patch entity.MemberPatch) (entity.WriteAck, error) {
	written := patchToFields(patch)

	var (
		stored  storeFields
		updated time.Time
	)
	if id == entity.NewMemberID {
		id = uuid.NewString()
		err := r.pool.QueryRow(ctx, `
			INSERT INTO members (id, fields)
			VALUES ($1, $2::jsonb)
			RETURNING fields, updated_at
		`, id, written).Scan(&stored, &updated)
		if err != nil {
			return entity.WriteAck{}, err
		}
	} else {
		err := r.pool.QueryRow(ctx, `
			UPDATE members
			SET fields = fields || $2::jsonb, updated_at = now()
			WHERE id = $1
			RETURNING fields, updated_at
		`, id, written).Scan(&stored, &updated)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entity.WriteAck{}, repository.ErrMemberNotFound
			}
			return entity.WriteAck{}, err
		}
	}

	return entity.WriteAck{
		ID:        id,
		Fields:    fieldsToPatch(stored.subset(written)),
		UpdatedAt: updated,
	}, nil
}

var _ repository.MemberRepository = (*MemberRepository)(nil)
