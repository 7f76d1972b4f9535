package api

import (
	"net/http"

	"wa-bulk-sender/pkg/models"

	"github.com/gin-gonic/gin"
)

type StatusSource interface {
	Snapshot() models.StatusSnapshot
}

type StatusHandler struct {
	src StatusSource
}

func NewStatusHandler(src StatusSource) *StatusHandler {
	return &StatusHandler{src: src}
}

func (h *StatusHandler) GetStatus(c *gin.Context) {
	snap := h.src.Snapshot()
	if snap.Recent == nil {
		snap.Recent = []models.ContactProgress{}
	}
	c.JSON(http.StatusOK, snap)
}
