package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-rewards-backend/internal/common/middleware"
	"referral-rewards-backend/internal/features/ledger/service"
)

type LedgerHandler struct {
	service *service.Service
}

func NewLedgerHandler(service *service.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	tokens := router.Group("/users/:id/tokens")
	{
		tokens.GET("", h.getBalance)
		tokens.GET("/history", h.getHistory)
	}
}

// @Summary Get token balance
// @Description Returns the user's spendable tokens, lifetime total and level
// @Tags tokens
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Balance"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/tokens [get]
func (h *LedgerHandler) getBalance(c *gin.Context) {
	balance, level, err := h.service.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens":       balance.Tokens,
		"total_tokens": balance.TotalTokens,
		"level":        level,
	})
}

// @Summary Get token history
// @Description Returns the seven most recent ledger entries, newest first
// @Tags tokens
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Entry "History entries"
// @Router /users/{id}/tokens/history [get]
func (h *LedgerHandler) getHistory(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
