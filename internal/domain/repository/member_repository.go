package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/member-directory/internal/domain/entity"
)

var ErrMemberNotFound = errors.New("member not found")

// ListOptions pages through the directory.
type ListOptions struct {
	Limit  int
	Offset int
}

// MemberRepository defines the operations the directory store offers.
// Implementations translate between entity.Member and the store's own field names.
type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Member, error)
	// LookupByEmail matches case-insensitively and returns ErrMemberNotFound when no record is bound to email.
	LookupByEmail(ctx context.Context, email string) (*entity.Member, error)
	// LookupByCriteria returns a candidate pool for the matcher. It may return
	// records that do not match; the result is fully materialized.
	LookupByCriteria(ctx context.Context, c entity.SearchCriteria) ([]entity.Member, error)
	List(ctx context.Context, opts ListOptions) ([]entity.Member, int, error)
	// Write creates the record when id is entity.NewMemberID, otherwise patches it.
	Write(ctx context.Context, id string, patch entity.MemberPatch) (entity.WriteAck, error)
}
