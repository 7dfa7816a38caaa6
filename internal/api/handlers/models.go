package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Models handles the /v1/models endpoint.
// It returns the static model table's client-facing names as
// OpenAI-compatible model descriptors.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   h.Table.Models(),
	})
}
