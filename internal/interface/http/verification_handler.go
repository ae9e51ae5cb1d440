package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/application"
	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/verification"
	"github.com/oksasatya/member-directory/internal/infrastructure/notify"
	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/response"
	"github.com/oksasatya/member-directory/pkg/validation"
)

// VerificationHandler serves the email verification and directory search steps.
// The flow id travels in an http-only cookie.
type VerificationHandler struct {
	Svc     *application.MemberService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewVerificationHandler(svc *application.MemberService, cookies *helpers.CookieManager, logger *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type confirmRequest struct {
	Code string `json:"code" binding:"required,max=16"`
}

type selectRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

type flowStatus struct {
	Status        verification.Status `json:"status"`
	Email         string              `json:"email,omitempty"`
	CodePending   bool                `json:"code_pending"`
	CodeExpiresAt *time.Time          `json:"code_expires_at,omitempty"`
}

func statusOf(s *verification.Session) flowStatus {
	st := flowStatus{Status: s.Status(), Email: s.Email(), CodePending: s.CodePending()}
	if exp := s.CodeExpiresAt(); !exp.IsZero() {
		st.CodeExpiresAt = &exp
	}
	return st
}

func (h *VerificationHandler) touch(c *gin.Context, f *application.Flow) {
	h.Cookies.Set(c, f.ID, h.Svc.Flows.ExpiresAt(f))
}

// Request issues (or re-issues) a verification code for the posted email.
func (h *VerificationHandler) Request(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ctx := notify.WithRequestIP(c.Request.Context(), c.GetString("real_ip"))
	f, err := h.Svc.StartVerification(ctx, h.Cookies.Get(c), req.Email)
	if f != nil {
		h.touch(c, f)
	}
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, statusOf(f.Session()), "verification code sent", nil)
}

// Status reports where the current flow stands.
func (h *VerificationHandler) Status(c *gin.Context) {
	f, ok := h.Svc.Flows.Get(h.Cookies.Get(c))
	if !ok {
		response.Success(c, http.StatusOK, flowStatus{Status: verification.StatusUnauthenticated}, "no active flow", nil)
		return
	}
	h.touch(c, f)
	response.Success(c, http.StatusOK, statusOf(f.Session()), "flow status", nil)
}

// Confirm checks the posted code. A wrong code is not an error: the response
// carries result "mismatch" and the member may try again.
func (h *VerificationHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	flowID := h.Cookies.Get(c)
	res, m, err := h.Svc.Confirm(c.Request.Context(), flowID, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	f, ok := h.Svc.Flows.Get(flowID)
	if !ok {
		fail(c, application.ErrFlowNotFound)
		return
	}
	data := gin.H{"result": res.String(), "status": statusOf(f.Session())}
	if m != nil {
		data["member"] = toMemberDTO(*m)
	}
	msg := "email verified"
	if res == verification.ResultMismatch {
		msg = "code did not match"
	}
	response.Success(c, http.StatusOK, data, msg, nil)
}

func (h *VerificationHandler) Restart(c *gin.Context) {
	flowID := h.Cookies.Get(c)
	if err := h.Svc.Restart(flowID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, flowStatus{Status: verification.StatusUnauthenticated}, "verification restarted", nil)
}

func (h *VerificationHandler) Search(c *gin.Context) {
	var req entity.SearchCriteria
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	view, err := h.Svc.Search(c.Request.Context(), h.Cookies.Get(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "matching records found"
	if view.OfferCreation {
		msg = "no matching record, a new one may be created"
	}
	response.Success(c, http.StatusOK, gin.H{
		"candidates":     toMemberDTOs(view.Candidates),
		"offer_creation": view.OfferCreation,
	}, msg, nil)
}

// Select claims one of the search results.
func (h *VerificationHandler) Select(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	m, err := h.Svc.Select(h.Cookies.Get(c), req.MemberID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"member": toMemberDTO(*m)}, "record selected", nil)
}

// Create starts a new record seeded from the last search.
func (h *VerificationHandler) Create(c *gin.Context) {
	m, err := h.Svc.CreateNew(h.Cookies.Get(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"member": toMemberDTO(*m)}, "new record started", nil)
}
