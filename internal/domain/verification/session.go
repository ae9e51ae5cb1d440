// Package verification drives email ownership checks for self-service members.
//
// A Session moves Unauthenticated -> CodeIssued -> Verified | Unmatched.
// Verified means the address is bound to an existing directory record;
// Unmatched means the address is proven but no record carries it yet, so the
// caller continues with a directory search.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusCodeIssued      Status = "code_issued"
	StatusVerified        Status = "verified"
	StatusUnmatched       Status = "unmatched"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusUnmatched
}

// Result of a code confirmation.
type Result int

const (
	ResultMismatch Result = iota
	ResultVerified
	ResultUnmatched
)

func (r Result) String() string {
	switch r {
	case ResultVerified:
		return "verified"
	case ResultUnmatched:
		return "unmatched"
	default:
		return "mismatch"
	}
}

var (
	ErrInvalidEmail    = errors.New("email is required")
	ErrLookupFailed    = errors.New("directory lookup failed")
	ErrDispatchFailed  = errors.New("code dispatch failed")
	ErrSessionClosed   = errors.New("verification session already completed")
	ErrNoActiveCode    = errors.New("no active verification code")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// LookupFunc finds the record bound to email. It returns nil, nil when there is none.
type LookupFunc func(ctx context.Context, email string) (*entity.Member, error)

// Dispatcher delivers an issued code to its owner.
type Dispatcher interface {
	SendCode(ctx context.Context, email, code string) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, email, code string) error

func (f DispatcherFunc) SendCode(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}

// Policy bounds how long and how often an issued code may be tried.
type Policy struct {
	CodeTTL     time.Duration
	MaxAttempts int
	HashCost    int
}

func DefaultPolicy() Policy {
	return Policy{CodeTTL: 10 * time.Minute, MaxAttempts: 5}
}

type Option func(*Session)

func WithPolicy(p Policy) Option { return func(s *Session) { s.policy = p } }

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Session) { s.genCode = gen }
}

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// Session is one interactive verification attempt. Calls are serialized, so
// a ConfirmCode issued after RequestVerification returns always sees the newest code.
type Session struct {
	mu sync.Mutex

	lookup     LookupFunc
	dispatcher Dispatcher
	policy     Policy
	genCode    func() (string, error)
	now        func() time.Time

	email     string
	status    Status
	codeHash  []byte
	expiresAt time.Time
	attempts  int
	candidate *entity.Member
}

func New(lookup LookupFunc, dispatcher Dispatcher, opts ...Option) *Session {
	s := &Session{
		lookup:     lookup,
		dispatcher: dispatcher,
		policy:     DefaultPolicy(),
		genCode:    helpers.GenOTPCode,
		now:        time.Now,
		status:     StatusUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lower-cases an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestVerification looks up the record bound to email, issues a fresh code
// and sends it. Calling it again while a code is pending resends a new code and
// invalidates the old one. If the lookup or the dispatch fails nothing changes.
func (s *Session) RequestVerification(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return ErrSessionClosed
	}

	candidate, err := s.lookup(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	code, err := s.genCode()
	if err != nil {
		return err
	}
	hash, err := helpers.HashCode(code, s.policy.HashCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if err := s.dispatcher.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	s.email = email
	s.status = StatusCodeIssued
	s.codeHash = hash
	s.attempts = 0
	s.expiresAt = time.Time{}
	if s.policy.CodeTTL > 0 {
		s.expiresAt = s.now().Add(s.policy.CodeTTL)
	}
	s.candidate = nil
	if candidate != nil {
		c := *candidate
		s.candidate = &c
	}
	return nil
}

// ConfirmCode checks a submitted code. A wrong code returns ResultMismatch
// with a nil error and keeps the code valid until the attempt budget is spent.
func (s *Session) ConfirmCode(code string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.status.Terminal():
		return ResultMismatch, ErrSessionClosed
	case s.status != StatusCodeIssued || s.codeHash == nil:
		return ResultMismatch, ErrNoActiveCode
	}

	if !s.expiresAt.IsZero() && s.now().After(s.expiresAt) {
		s.burnCode()
		return ResultMismatch, ErrCodeExpired
	}

	if !helpers.CompareCode(s.codeHash, strings.TrimSpace(code)) {
		s.attempts++
		if s.policy.MaxAttempts > 0 && s.attempts >= s.policy.MaxAttempts {
			s.burnCode()
			return ResultMismatch, ErrTooManyAttempts
		}
		return ResultMismatch, nil
	}

	s.burnCode()
	if s.candidate != nil {
		s.status = StatusVerified
		return ResultVerified, nil
	}
	s.status = StatusUnmatched
	return ResultUnmatched, nil
}

// Restart drops all state, as if the session had just been created.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = ""
	s.status = StatusUnauthenticated
	s.candidate = nil
	s.burnCode()
}

func (s *Session) burnCode() {
	s.codeHash = nil
	s.expiresAt = time.Time{}
	s.attempts = 0
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Candidate returns a copy of the record found at issuance, or nil.
func (s *Session) Candidate() *entity.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.candidate == nil {
		return nil
	}
	c := *s.candidate
	return &c
}

// CodePending reports whether a live code is waiting for confirmation.
func (s *Session) CodePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusCodeIssued && s.codeHash != nil
}

// CodeExpiresAt is zero when no code is pending or codes do not expire.
func (s *Session) CodeExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}
