package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/blocklist"
	"github.com/pcbfab/chat-service/internal/handlers/dto"
)

// AdminHandler управляет блокировками пользователей чата.
type AdminHandler struct {
	blocks *blocklist.Store
}

func NewAdminHandler(blocks *blocklist.Store) *AdminHandler {
	return &AdminHandler{blocks: blocks}
}

// BlockUser блокирует пользователя; активные соединения доживают
// до следующего подключения, новые отклоняются.
func (h *AdminHandler) BlockUser(c *gin.Context) {
	var req dto.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.blocks.Block(c.Request.Context(), req.UserID, req.Reason, req.Until); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}

// UnblockUser снимает блокировку.
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.blocks.Unblock(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unblocked"})
}
