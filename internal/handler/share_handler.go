package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/propinspect/internal/pkg/response"
	"github.com/xxxsen/propinspect/internal/service"
)

type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type issueShareResponse struct {
	Success    bool   `json:"success"`
	ShareURL   string `json:"shareUrl"`
	ShareToken string `json:"shareToken"`
}

type shareStatusResponse struct {
	ShareEnabled bool       `json:"shareEnabled"`
	ShareURL     *string    `json:"shareUrl"`
	SharedAt     *time.Time `json:"sharedAt"`
}

type revokeShareResponse struct {
	Success bool `json:"success"`
}

func (h *ShareHandler) Issue(c *gin.Context) {
	link, err := h.shares.Issue(c.Request.Context(), getUserID(c), c.Param("id"), requestBaseURL(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, issueShareResponse{
		Success:    true,
		ShareURL:   link.ShareURL,
		ShareToken: link.ShareToken,
	})
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.Revoke(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, revokeShareResponse{Success: true})
}

func (h *ShareHandler) Status(c *gin.Context) {
	status, err := h.shares.Status(c.Request.Context(), getUserID(c), c.Param("id"), requestBaseURL(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, shareStatusResponse{
		ShareEnabled: status.ShareEnabled,
		ShareURL:     status.ShareURL,
		SharedAt:     status.SharedAt,
	})
}

func (h *ShareHandler) PublicGet(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	view, err := h.shares.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}
