package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/reconcile"
	repo "github.com/oksasatya/member-directory/internal/domain/repository"
	"github.com/oksasatya/member-directory/internal/domain/roster"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

const lastExportKey = "admin:export:last"

var (
	ErrExportUnavailable  = errors.New("export storage not configured")
	ErrReindexUnavailable = errors.New("search index not configured")
	ErrInvalidMailing     = errors.New("invalid mailing preference")
)

// ObjectUploader stores an export and returns where it can be fetched.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Reindexer rebuilds the search index from the directory store.
type Reindexer interface {
	Reindex(ctx context.Context, r repo.MemberRepository) (int, error)
}

// GCSUploader writes objects into one Cloud Storage bucket. Exports hold member
// contact data, so the bucket stays private and a signed URL is handed out
// when the credentials can sign; otherwise the gs:// URI is returned.
type GCSUploader struct {
	Client    *storage.Client
	Bucket    string
	SignedTTL time.Duration
}

func (u GCSUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u.Client == nil || u.Bucket == "" {
		return "", ErrExportUnavailable
	}
	uri, err := helpers.UploadObject(ctx, u.Client, u.Bucket, objectPath, contentType, r)
	if err != nil || u.SignedTTL <= 0 {
		return uri, err
	}
	if signed, err := helpers.SignedURL(u.Client, u.Bucket, objectPath, u.SignedTTL); err == nil {
		return signed, nil
	}
	return uri, nil
}

type AdminService struct {
	Repo         repo.MemberRepository
	Index        Indexer
	Reindexer    Reindexer
	Uploader     ObjectUploader
	ExportPrefix string
	Redis        *redis.Client
	Logger       *logrus.Logger
	now          func() time.Time
}

func NewAdminService(r repo.MemberRepository, index Indexer, reindexer Reindexer, uploader ObjectUploader, exportPrefix string, rdb *redis.Client, logger *logrus.Logger) *AdminService {
	return &AdminService{
		Repo:         r,
		Index:        index,
		Reindexer:    reindexer,
		Uploader:     uploader,
		ExportPrefix: exportPrefix,
		Redis:        rdb,
		Logger:       logger,
		now:          time.Now,
	}
}

// FamilyEntry is a roster entry with its display label.
type FamilyEntry struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Label    string `json:"label"`
}

func Labeled(r roster.Roster) []FamilyEntry {
	out := make([]FamilyEntry, 0, len(r))
	for _, m := range r {
		out = append(out, FamilyEntry{Name: m.Name, Relation: string(m.Relation), Label: m.Relation.Label()})
	}
	return out
}

type AdminMemberView struct {
	Member entity.Member
	Family []FamilyEntry
}

// ExportResult describes one CSV export.
type ExportResult struct {
	URL        string    `json:"url"`
	Object     string    `json:"object"`
	Count      int       `json:"count"`
	ExportedAt time.Time `json:"exported_at"`
}

func (s *AdminService) List(ctx context.Context, limit, offset int) ([]entity.Member, int, error) {
	return s.Repo.List(ctx, repo.ListOptions{Limit: limit, Offset: offset})
}

func (s *AdminService) Get(ctx context.Context, id string) (AdminMemberView, error) {
	m, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return AdminMemberView{}, err
	}
	return AdminMemberView{Member: *m, Family: Labeled(roster.Decode(m.FamilyNotes))}, nil
}

// Update writes a patch immediately. Unlike the member flow, mailing
// preferences may be changed here.
func (s *AdminService) Update(ctx context.Context, id string, p entity.MemberPatch) (entity.Member, error) {
	for _, pref := range []*entity.MailingPreference{p.Laxmi, p.Annakut, p.Calendar, p.BMN} {
		if pref != nil && !pref.Valid() {
			return entity.Member{}, fmt.Errorf("%w: %q", ErrInvalidMailing, *pref)
		}
	}
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return entity.Member{}, err
	}
	return s.write(ctx, *current, p)
}

func (s *AdminService) AddFamily(ctx context.Context, id, name string, rel roster.Relation) ([]FamilyEntry, error) {
	return s.editFamily(ctx, id, func(r roster.Roster) (roster.Roster, error) { return r.Add(name, rel) })
}

func (s *AdminService) RemoveFamily(ctx context.Context, id string, index int) ([]FamilyEntry, error) {
	return s.editFamily(ctx, id, func(r roster.Roster) (roster.Roster, error) { return r.Remove(index) })
}

func (s *AdminService) editFamily(ctx context.Context, id string, edit func(roster.Roster) (roster.Roster, error)) ([]FamilyEntry, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := edit(roster.Decode(current.FamilyNotes))
	if err != nil {
		return nil, err
	}
	notes := roster.Encode(next)
	saved, err := s.write(ctx, *current, entity.MemberPatch{FamilyNotes: &notes})
	if err != nil {
		return nil, err
	}
	return Labeled(roster.Decode(saved.FamilyNotes)), nil
}

func (s *AdminService) write(ctx context.Context, current entity.Member, p entity.MemberPatch) (entity.Member, error) {
	if p.IsEmpty() {
		return current, nil
	}
	ack, err := s.Repo.Write(ctx, current.ID, p)
	if err != nil {
		if s.Logger != nil {
			helpers.LogError(s.Logger, "admin write failed", err, logrus.Fields{"member_id": current.ID})
		}
		return entity.Member{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	next := reconcile.Apply(p.ApplyTo(current), ack)
	if s.Index != nil {
		if err := s.Index.Index(ctx, next); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("member_id", next.ID).Warn("reindex member failed")
		}
	}
	return next, nil
}

var exportHeader = []string{
	"id", "display_name", "first_name", "last_name", "email", "phone",
	"street", "city", "state", "zip", "family", "family_notes",
	"mailing_laxmi", "mailing_annakut", "mailing_calendar", "mailing_bmn", "updated_at",
}

func exportRow(m entity.Member) []string {
	fam := roster.Decode(m.FamilyNotes)
	parts := make([]string, 0, len(fam))
	for _, e := range fam {
		parts = append(parts, e.Name+" ("+e.Relation.Label()+")")
	}
	return []string{
		m.ID, m.DisplayName, m.GivenName, m.FamilyName, m.Email, m.Phone,
		m.Address.Street, m.Address.City, m.Address.Region, m.Address.PostalCode,
		strings.Join(parts, "; "), m.FamilyNotes,
		string(m.Mailing.Laxmi), string(m.Mailing.Annakut), string(m.Mailing.Calendar), string(m.Mailing.BMN),
		m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV pages through the whole directory and writes it to w.
func (s *AdminService) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	const page = 200
	count := 0
	for offset := 0; ; offset += page {
		members, total, err := s.Repo.List(ctx, repo.ListOptions{Limit: page, Offset: offset})
		if err != nil {
			return count, err
		}
		for _, m := range members {
			if err := cw.Write(exportRow(m)); err != nil {
				return count, err
			}
			count++
		}
		if len(members) == 0 || offset+len(members) >= total {
			break
		}
	}
	cw.Flush()
	return count, cw.Error()
}

// Export uploads a CSV snapshot of the directory and remembers it as the latest export.
func (s *AdminService) Export(ctx context.Context) (ExportResult, error) {
	if s.Uploader == nil {
		return ExportResult{}, ErrExportUnavailable
	}
	var buf bytes.Buffer
	count, err := s.WriteCSV(ctx, &buf)
	if err != nil {
		return ExportResult{}, err
	}
	now := s.now().UTC()
	object := path.Join(s.ExportPrefix, now.Format("2006/01/02"), "members-"+uuid.NewString()+".csv")
	url, err := s.Uploader.Upload(ctx, object, "text/csv", &buf)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", object).Error("export upload failed")
		}
		return ExportResult{}, err
	}
	res := ExportResult{URL: url, Object: object, Count: count, ExportedAt: now}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, lastExportKey, res, 0); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("remember last export failed")
		}
	}
	if s.Logger != nil {
		helpers.LogInfo(s.Logger, "directory exported", logrus.Fields{"object": object, "count": count})
	}
	return res, nil
}

// LastExport returns the most recent export, if any was recorded.
func (s *AdminService) LastExport(ctx context.Context) (*ExportResult, error) {
	if s.Redis == nil {
		return nil, nil
	}
	var res ExportResult
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, lastExportKey, &res)
	if err != nil || !ok {
		return nil, err
	}
	return &res, nil
}

func (s *AdminService) Reindex(ctx context.Context) (int, error) {
	if s.Reindexer == nil {
		return 0, ErrReindexUnavailable
	}
	n, err := s.Reindexer.Reindex(ctx, s.Repo)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("indexed", n).Error("reindex failed")
		}
		return n, err
	}
	if s.Logger != nil {
		s.Logger.WithField("indexed", n).Info("search index rebuilt")
	}
	return n, nil
}
