package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-rewards-backend/internal/common/middleware"
	"referral-rewards-backend/internal/features/referral/service"
)

type ReferralHandler struct {
	service *service.Service
}

func NewReferralHandler(service *service.Service) *ReferralHandler {
	return &ReferralHandler{service: service}
}

func (h *ReferralHandler) RegisterRoutes(router *gin.RouterGroup) {
	friends := router.Group("/users/:id/friends")
	{
		friends.GET("", h.list)
		friends.GET("/count", h.count)
		friends.GET("/live", h.live)
		friends.POST("/:friendId/claim", h.claim)
	}
}

// @Summary List referred friends
// @Description Lists every friend the user referred. Pass unclaimed=true to keep only claimable bonuses.
// @Tags referrals
// @Produce json
// @Param id path string true "User ID"
// @Param unclaimed query bool false "Only unclaimed bonuses"
// @Success 200 {array} models.Friend "Friends"
// @Router /users/{id}/friends [get]
func (h *ReferralHandler) list(c *gin.Context) {
	friends, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	if c.Query("unclaimed") == "true" {
		friends = service.FilterUnclaimed(friends)
	}
	c.JSON(http.StatusOK, friends)
}

// @Summary Count referred friends
// @Tags referrals
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]int64 "Count"
// @Router /users/{id}/friends/count [get]
func (h *ReferralHandler) count(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// @Summary Stream new referrals
// @Description Server-sent events feed of friends referred from now on
// @Tags referrals
// @Produce text/event-stream
// @Param id path string true "User ID"
// @Router /users/{id}/friends/live [get]
func (h *ReferralHandler) live(c *gin.Context) {
	feed, teardown, err := h.service.Subscribe(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	defer teardown()

	c.Stream(func(w io.Writer) bool {
		select {
		case friend, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent("friend", friend)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// @Summary Claim a referral bonus
// @Description Delivers the bonus attached to a friend record and marks it claimed
// @Tags referrals
// @Produce json
// @Param id path string true "User ID"
// @Param friendId path string true "Friend user ID"
// @Success 200 {object} models.Friend "Claimed record"
// @Failure 404 {object} middleware.ErrorResponse "Friend not found"
// @Failure 409 {object} middleware.ErrorResponse "Already claimed"
// @Failure 503 {object} middleware.ErrorResponse "System under load"
// @Router /users/{id}/friends/{friendId}/claim [post]
func (h *ReferralHandler) claim(c *gin.Context) {
	friend, err := h.service.Claim(c.Request.Context(), c.Param("id"), c.Param("friendId"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, friend)
}
