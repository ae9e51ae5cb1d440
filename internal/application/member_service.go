package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/matcher"
	"github.com/oksasatya/member-directory/internal/domain/reconcile"
	repo "github.com/oksasatya/member-directory/internal/domain/repository"
	"github.com/oksasatya/member-directory/internal/domain/roster"
	"github.com/oksasatya/member-directory/internal/domain/verification"
	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/metrics"
)

var (
	ErrFlowNotFound      = errors.New("verification flow not found")
	ErrNotVerified       = errors.New("email not verified")
	ErrAlreadyLinked     = errors.New("email already linked to a record")
	ErrSearchIncomplete  = errors.New("first name, last name and zip code are required")
	ErrNoSearch          = errors.New("search the directory first")
	ErrCandidateNotFound = errors.New("record is not one of the search results")
	ErrNoDraft           = errors.New("no record selected")
	ErrWriteFailed       = errors.New("directory write failed")
	ErrThrottled         = errors.New("too many code requests for this email")
)

// CandidateSource supplies matcher candidate pools. Both the directory store
// and the search index satisfy it.
type CandidateSource interface {
	LookupByCriteria(ctx context.Context, c entity.SearchCriteria) ([]entity.Member, error)
}

// Indexer keeps the search index in step with writes.
type Indexer interface {
	Index(ctx context.Context, m entity.Member) error
}

// LookupFromRepo adapts the directory store to the session's lookup contract.
func LookupFromRepo(r repo.MemberRepository) verification.LookupFunc {
	return func(ctx context.Context, email string) (*entity.Member, error) {
		m, err := r.LookupByEmail(ctx, email)
		if errors.Is(err, repo.ErrMemberNotFound) {
			return nil, nil
		}
		return m, err
	}
}

// MemberService runs the self-service flow. Pool serves candidate pools and
// Fallback is tried when Pool fails.
type MemberService struct {
	Repo     repo.MemberRepository
	Pool     CandidateSource
	Fallback CandidateSource
	Index    Indexer
	Flows    *FlowRegistry
	Redis    *redis.Client
	Logger   *logrus.Logger
	Metrics  *metrics.Metrics

	RequestsPerEmail int
	RequestWindow    time.Duration
}

func NewMemberService(r repo.MemberRepository, pool CandidateSource, index Indexer, flows *FlowRegistry, rdb *redis.Client, logger *logrus.Logger) *MemberService {
	s := &MemberService{Repo: r, Pool: pool, Fallback: r, Index: index, Flows: flows, Redis: rdb, Logger: logger}
	if pool == nil {
		s.Pool, s.Fallback = r, nil
	}
	return s
}

// ProfileView is the record being edited with its decoded household.
type ProfileView struct {
	Member entity.Member
	Family roster.Roster
	Dirty  bool
}

// SearchView is what a search returns to the member.
type SearchView struct {
	Candidates    []entity.Member
	OfferCreation bool
}

func (s *MemberService) flow(id string) (*Flow, error) {
	f, ok := s.Flows.Get(id)
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// StartVerification issues a code for email on the flow identified by flowID,
// creating the flow when needed. A completed flow is discarded when a different
// email is submitted. The returned flow id must be kept by the caller.
func (s *MemberService) StartVerification(ctx context.Context, flowID, email string) (*Flow, error) {
	if err := s.throttle(ctx, email); err != nil {
		s.Metrics.CodeRequested("throttled")
		return nil, err
	}
	f := s.Flows.GetOrCreate(flowID)
	if norm := verification.NormalizeEmail(email); norm != "" && f.session.Status().Terminal() && f.session.Email() != norm {
		// A finished flow is replaced, not reopened, when another address is submitted.
		s.Flows.Delete(f.ID)
		f = s.Flows.Create()
	}
	if err := f.session.RequestVerification(ctx, email); err != nil {
		if s.Logger != nil && !errors.Is(err, verification.ErrInvalidEmail) {
			s.Logger.WithError(err).WithField("flow_id", f.ID).Warn("request verification failed")
		}
		s.Metrics.CodeRequested("failed")
		return f, err
	}
	s.Metrics.CodeRequested("sent")
	return f, nil
}

// throttle caps code requests per address across flows, so restarting a flow
// does not reset the budget. Redis errors fail open.
func (s *MemberService) throttle(ctx context.Context, email string) error {
	if s.Redis == nil || s.RequestsPerEmail <= 0 || s.RequestWindow <= 0 {
		return nil
	}
	norm := verification.NormalizeEmail(email)
	if norm == "" {
		return nil
	}
	ok, _, err := helpers.RedisAllow(ctx, s.Redis, helpers.KeyOTPRequests(norm), s.RequestsPerEmail, s.RequestWindow)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("otp throttle unavailable")
		}
		return nil
	}
	if !ok {
		return ErrThrottled
	}
	return nil
}

// Confirm checks a code. On ResultVerified the bound record becomes the draft.
func (s *MemberService) Confirm(ctx context.Context, flowID, code string) (verification.Result, *entity.Member, error) {
	f, err := s.flow(flowID)
	if err != nil {
		return verification.ResultMismatch, nil, err
	}
	res, err := f.session.ConfirmCode(code)
	switch {
	case errors.Is(err, verification.ErrTooManyAttempts):
		s.Metrics.Confirmed("locked")
	case errors.Is(err, verification.ErrCodeExpired):
		s.Metrics.Confirmed("expired")
	case err == nil:
		s.Metrics.Confirmed(res.String())
	}
	if err != nil {
		return res, nil, err
	}
	switch res {
	case verification.ResultVerified:
		m := f.session.Candidate()
		f.mu.Lock()
		f.base = *m
		d := *m
		f.draft = &d
		f.mu.Unlock()
		s.clearThrottle(ctx, f.session.Email())
		return res, m, nil
	case verification.ResultUnmatched:
		s.clearThrottle(ctx, f.session.Email())
	}
	return res, nil, nil
}

func (s *MemberService) clearThrottle(ctx context.Context, email string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.KeyOTPRequests(email)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("clear otp throttle failed")
	}
}

// Restart drops the session and everything found or edited so far.
func (s *MemberService) Restart(flowID string) error {
	f, err := s.flow(flowID)
	if err != nil {
		return err
	}
	f.session.Restart()
	f.mu.Lock()
	f.criteria = entity.SearchCriteria{}
	f.searched = false
	f.matches = nil
	f.base = entity.Member{}
	f.draft = nil
	f.mu.Unlock()
	return nil
}

func (s *MemberService) requireUnmatched(f *Flow) error {
	switch f.session.Status() {
	case verification.StatusUnmatched:
		return nil
	case verification.StatusVerified:
		return ErrAlreadyLinked
	default:
		return ErrNotVerified
	}
}

// Search runs the matcher over a candidate pool for an address that was
// proven but is not bound to any record.
func (s *MemberService) Search(ctx context.Context, flowID string, c entity.SearchCriteria) (SearchView, error) {
	f, err := s.flow(flowID)
	if err != nil {
		return SearchView{}, err
	}
	if err := s.requireUnmatched(f); err != nil {
		return SearchView{}, err
	}
	c = c.Normalize()
	if !c.Complete() {
		return SearchView{}, ErrSearchIncomplete
	}

	res, err := s.match(ctx, c)
	if err != nil {
		return SearchView{}, fmt.Errorf("%w: %w", verification.ErrLookupFailed, err)
	}
	s.Metrics.Searched(!res.OfferCreation)
	f.mu.Lock()
	f.criteria = c
	f.searched = true
	f.matches = res.Candidates
	f.mu.Unlock()
	return SearchView{Candidates: res.Candidates, OfferCreation: res.OfferCreation}, nil
}

// match runs the matcher over Pool. Fallback is consulted when Pool fails and
// again before creation is offered, so a stale or empty index never hides a
// directory record.
func (s *MemberService) match(ctx context.Context, c entity.SearchCriteria) (matcher.Result, error) {
	pool, err := s.Pool.LookupByCriteria(ctx, c)
	if err != nil {
		if s.Fallback == nil {
			return matcher.Result{}, err
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("candidate pool unavailable, falling back to directory store")
		}
		pool, err = s.Fallback.LookupByCriteria(ctx, c)
		if err != nil {
			return matcher.Result{}, err
		}
		return matcher.Search(c, pool), nil
	}

	res := matcher.Search(c, pool)
	if !res.OfferCreation || s.Fallback == nil {
		return res, nil
	}
	stored, err := s.Fallback.LookupByCriteria(ctx, c)
	if err != nil {
		return matcher.Result{}, err
	}
	res = matcher.Search(c, stored)
	if !res.OfferCreation && s.Logger != nil {
		s.Logger.WithField("candidates", len(res.Candidates)).Warn("candidate pool is behind the directory store")
	}
	return res, nil
}

// Select claims one of the search results ("This is me"). The verified email
// is stamped onto the draft and written on the next save.
func (s *MemberService) Select(flowID, memberID string) (*entity.Member, error) {
	f, err := s.flow(flowID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUnmatched(f); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.searched {
		return nil, ErrNoSearch
	}
	for _, m := range f.matches {
		if m.ID == memberID {
			f.base = m
			d := m
			d.Email = f.session.Email()
			f.draft = &d
			out := d
			return &out, nil
		}
	}
	return nil, ErrCandidateNotFound
}

// CreateNew starts a record that does not exist in the directory yet, seeded
// from the last search.
func (s *MemberService) CreateNew(flowID string) (*entity.Member, error) {
	f, err := s.flow(flowID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUnmatched(f); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.searched {
		return nil, ErrNoSearch
	}
	m := matcher.CreateScaffold(f.criteria, f.session.Email())
	f.base = entity.Member{}
	d := m
	f.draft = &d
	return &m, nil
}

func (s *MemberService) draftOf(flowID string) (*Flow, error) {
	f, err := s.flow(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	has := f.draft != nil
	f.mu.Unlock()
	if !has {
		return nil, ErrNoDraft
	}
	return f, nil
}

func viewOf(f *Flow) ProfileView {
	d := *f.draft
	return ProfileView{
		Member: d,
		Family: roster.Decode(d.FamilyNotes),
		Dirty:  d.IsNew() || !entity.Diff(f.base, d).IsEmpty(),
	}
}

func (s *MemberService) Profile(flowID string) (ProfileView, error) {
	f, err := s.draftOf(flowID)
	if err != nil {
		return ProfileView{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return viewOf(f), nil
}

// PatchDraft edits the draft locally. Mailing preferences are admin-only and
// the household goes through AddFamily/RemoveFamily, so both are ignored here.
func (s *MemberService) PatchDraft(flowID string, p entity.MemberPatch) (ProfileView, error) {
	f, err := s.draftOf(flowID)
	if err != nil {
		return ProfileView{}, err
	}
	p = p.WithoutMailing()
	p.FamilyNotes = nil
	f.mu.Lock()
	defer f.mu.Unlock()
	next := p.ApplyTo(*f.draft)
	f.draft = &next
	return viewOf(f), nil
}

func (s *MemberService) AddFamily(flowID, name string, rel roster.Relation) (roster.Roster, error) {
	return s.editFamily(flowID, func(r roster.Roster) (roster.Roster, error) { return r.Add(name, rel) })
}

func (s *MemberService) RemoveFamily(flowID string, index int) (roster.Roster, error) {
	return s.editFamily(flowID, func(r roster.Roster) (roster.Roster, error) { return r.Remove(index) })
}

func (s *MemberService) editFamily(flowID string, edit func(roster.Roster) (roster.Roster, error)) (roster.Roster, error) {
	f, err := s.draftOf(flowID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := edit(roster.Decode(f.draft.FamilyNotes))
	if err != nil {
		return nil, err
	}
	f.draft.FamilyNotes = roster.Encode(next)
	return next, nil
}

// Save writes the draft. Only changed fields are sent; a new record is sent in
// full. On failure the draft is kept as is so the member can retry.
func (s *MemberService) Save(ctx context.Context, flowID string) (ProfileView, error) {
	f, err := s.draftOf(flowID)
	if err != nil {
		return ProfileView{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := *f.draft
	patch := entity.Diff(f.base, draft)
	if patch.IsEmpty() && !draft.IsNew() {
		return viewOf(f), nil
	}

	ack, err := s.Repo.Write(ctx, draft.ID, patch)
	s.Metrics.Saved(draft.IsNew(), err)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"flow_id": f.ID, "member_id": draft.ID}).Error("save member failed")
		}
		return ProfileView{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	next := reconcile.Apply(draft, ack)
	f.base = next
	saved := next
	f.draft = &saved
	s.index(ctx, next)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"flow_id": f.ID, "member_id": next.ID, "created": draft.IsNew()}).Info("member saved")
	}
	return viewOf(f), nil
}

func (s *MemberService) index(ctx context.Context, m entity.Member) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, m); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("member_id", m.ID).Warn("reindex member failed")
	}
}
