package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/middleware"
	"referral-rewards-backend/internal/features/challenge/service"
)

type ChallengeHandler struct {
	service *service.Service
}

func NewChallengeHandler(service *service.Service) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup) {
	challenges := router.Group("/challenges")
	{
		challenges.POST("", h.create)
		challenges.GET("", h.list)
		challenges.POST("/:id/complete", h.complete)
	}

	milestones := router.Group("/users/:id/milestones")
	{
		milestones.GET("", h.milestones)
		milestones.POST("/:threshold/claim", h.claimMilestone)
		milestones.POST("/challenges/claim", h.claimChallengeMilestone)
	}
}

type createChallengeRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Method      string  `json:"method" binding:"required"`
	Tokens      float64 `json:"tokens" binding:"required"`
}

// @Summary Create a challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Param challenge body createChallengeRequest true "Challenge definition"
// @Success 201 {object} models.Challenge "Created challenge"
// @Failure 400 {object} middleware.ErrorResponse "Invalid definition"
// @Router /challenges [post]
func (h *ChallengeHandler) create(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, err)
		return
	}

	challenge, err := h.service.Create(c.Request.Context(), req.Title, req.Description, req.Method, req.Tokens)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// @Summary List challenges
// @Description Lists challenges with the given user's completion state
// @Tags challenges
// @Produce json
// @Param user query string true "User ID"
// @Success 200 {array} models.ChallengeStatus "Challenges"
// @Router /challenges [get]
func (h *ChallengeHandler) list(c *gin.Context) {
	challenges, err := h.service.List(c.Request.Context(), c.Query("user"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, challenges)
}

type completeRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// @Summary Complete a challenge
// @Description Verifies the challenge predicate and pays the reward once
// @Tags challenges
// @Accept json
// @Produce json
// @Param id path string true "Challenge ID"
// @Param request body completeRequest true "User"
// @Success 200 {object} map[string]float64 "New balance"
// @Failure 404 {object} middleware.ErrorResponse "Challenge not found"
// @Failure 409 {object} middleware.ErrorResponse "Already completed"
// @Failure 422 {object} middleware.ErrorResponse "Not completed yet"
// @Router /challenges/{id}/complete [post]
func (h *ChallengeHandler) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, err)
		return
	}

	balance, err := h.service.Complete(c.Request.Context(), req.UserID, c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": balance})
}

// @Summary Referral milestone progress
// @Tags milestones
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Milestone "Milestones"
// @Router /users/{id}/milestones [get]
func (h *ChallengeHandler) milestones(c *gin.Context) {
	milestones, err := h.service.Milestones(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, milestones)
}

// @Summary Claim a referral milestone
// @Tags milestones
// @Produce json
// @Param id path string true "User ID"
// @Param threshold path int true "Milestone threshold"
// @Success 200 {object} map[string]float64 "New balance"
// @Failure 409 {object} middleware.ErrorResponse "Already claimed"
// @Failure 422 {object} middleware.ErrorResponse "Not reached yet"
// @Router /users/{id}/milestones/{threshold}/claim [post]
func (h *ChallengeHandler) claimMilestone(c *gin.Context) {
	threshold, err := strconv.Atoi(c.Param("threshold"))
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("threshold", "must be an integer"))
		return
	}

	balance, err := h.service.ClaimMilestone(c.Request.Context(), c.Param("id"), threshold)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": balance})
}

// @Summary Claim the challenge-count milestone
// @Description One-time bonus for completing five distinct challenges
// @Tags milestones
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]float64 "New balance"
// @Failure 409 {object} middleware.ErrorResponse "Already claimed"
// @Router /users/{id}/milestones/challenges/claim [post]
func (h *ChallengeHandler) claimChallengeMilestone(c *gin.Context) {
	balance, err := h.service.ClaimChallengeMilestone(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": balance})
}
