package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/member-directory/internal/application"
	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/roster"
	"github.com/oksasatya/member-directory/internal/interface/middleware"
	"github.com/oksasatya/member-directory/pkg/response"
	"github.com/oksasatya/member-directory/pkg/validation"
)

// AdminHandler serves the office staff surface. Writes go to the directory immediately.
type AdminHandler struct {
	Svc    *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func (h *AdminHandler) audit(c *gin.Context, action, memberID string) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithFields(logrus.Fields{
		"admin":      c.GetString(middleware.CtxAdminEmailKey),
		"action":     action,
		"member_id":  memberID,
		"request_id": c.GetString("request_id"),
	}).Info("admin action")
}

func (h *AdminHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	members, total, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"members": toMemberDTOs(members), "total": total}, "members",
		map[string]any{"limit": limit, "offset": offset, "total": total})
}

func (h *AdminHandler) Get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"member": toMemberDTO(v.Member), "family": v.Family}, "member", nil)
}

// Update patches any field, mailing preferences included.
func (h *AdminHandler) Update(c *gin.Context) {
	var req entity.MemberPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id := c.Param("id")
	m, err := h.Svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "update", id)
	response.Success(c, http.StatusOK, gin.H{"member": toMemberDTO(m)}, "member updated", nil)
}

func (h *AdminHandler) AddFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id := c.Param("id")
	fam, err := h.Svc.AddFamily(c.Request.Context(), id, req.Name, roster.Relation(req.Relation))
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "family_add", id)
	response.Success(c, http.StatusOK, gin.H{"family": fam}, "family member added", nil)
}

func (h *AdminHandler) RemoveFamily(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid index", nil)
		return
	}
	id := c.Param("id")
	fam, err := h.Svc.RemoveFamily(c.Request.Context(), id, idx)
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "family_remove", id)
	response.Success(c, http.StatusOK, gin.H{"family": fam}, "family member removed", nil)
}

func (h *AdminHandler) Export(c *gin.Context) {
	res, err := h.Svc.Export(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "export", "")
	response.Success(c, http.StatusOK, res, "directory exported", nil)
}

func (h *AdminHandler) LastExport(c *gin.Context) {
	res, err := h.Svc.LastExport(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		response.Error[any](c, http.StatusNotFound, "no export recorded", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "last export", nil)
}

func (h *AdminHandler) Reindex(c *gin.Context) {
	n, err := h.Svc.Reindex(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	h.audit(c, "reindex", "")
	response.Success(c, http.StatusOK, gin.H{"indexed": n}, "search index rebuilt", nil)
}
