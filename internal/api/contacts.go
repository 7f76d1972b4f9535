package api

import (
	"context"
	"net/http"

	"wa-bulk-sender/internal/models"

	"github.com/gin-gonic/gin"
)

type ContactLister interface {
	List(ctx context.Context, tag string) ([]models.Contact, error)
}

type ContactHandler struct {
	store ContactLister
}

func NewContactHandler(store ContactLister) *ContactHandler {
	return &ContactHandler{store: store}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.store.List(c.Request.Context(), c.Query("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Return empty array instead of null
	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.JSON(http.StatusOK, contacts)
}
