package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/application"
	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/roster"
	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/response"
	"github.com/oksasatya/member-directory/pkg/validation"
)

// MemberHandler edits the record claimed or created by a verified flow.
type MemberHandler struct {
	Svc     *application.MemberService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewMemberHandler(svc *application.MemberService, cookies *helpers.CookieManager, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

func profileData(v application.ProfileView) gin.H {
	return gin.H{
		"member": toMemberDTO(v.Member),
		"family": familyOf(v.Family),
		"dirty":  v.Dirty,
	}
}

func (h *MemberHandler) GetProfile(c *gin.Context) {
	v, err := h.Svc.Profile(h.Cookies.Get(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileData(v), "profile", nil)
}

// PatchProfile edits the draft; nothing is written until Save.
func (h *MemberHandler) PatchProfile(c *gin.Context) {
	var req entity.MemberPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	v, err := h.Svc.PatchDraft(h.Cookies.Get(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileData(v), "profile updated", nil)
}

func (h *MemberHandler) AddFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	r, err := h.Svc.AddFamily(h.Cookies.Get(c), req.Name, roster.Relation(req.Relation))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"family": familyOf(r)}, "family member added", nil)
}

func (h *MemberHandler) RemoveFamily(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid index", nil)
		return
	}
	r, err := h.Svc.RemoveFamily(h.Cookies.Get(c), idx)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"family": familyOf(r)}, "family member removed", nil)
}

// Save writes the draft to the directory. On failure the draft is kept for a retry.
func (h *MemberHandler) Save(c *gin.Context) {
	v, err := h.Svc.Save(c.Request.Context(), h.Cookies.Get(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileData(v), "profile saved", nil)
}
