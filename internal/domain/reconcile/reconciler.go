// Package reconcile folds an acknowledged directory write back into the
// in-memory record so the editor does not need to re-fetch it.
package reconcile

import (
	"github.com/oksasatya/member-directory/internal/domain/entity"
)

// Apply overlays the fields the store acknowledged onto local. Fields that were
// not part of the write keep their local value. The id is kept, except that a
// record still carrying the creation sentinel adopts the id assigned by the store.
func Apply(local entity.Member, ack entity.WriteAck) entity.Member {
	id := local.ID
	out := ack.Fields.ApplyTo(local)
	out.ID = id
	if local.IsNew() && ack.ID != "" {
		out.ID = ack.ID
	}
	if !ack.UpdatedAt.IsZero() {
		out.UpdatedAt = ack.UpdatedAt
		if local.IsNew() {
			out.CreatedAt = ack.UpdatedAt
		}
	}
	return out
}
