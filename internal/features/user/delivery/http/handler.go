package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-rewards-backend/internal/common/errors"
	"referral-rewards-backend/internal/common/middleware"
	"referral-rewards-backend/internal/features/user/models"
	"referral-rewards-backend/internal/features/user/service"
)

type UserHandler struct {
	service *service.Service
}

func NewUserHandler(service *service.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.POST("/reset-password", h.resetPassword)
	}

	users := router.Group("/users/:id")
	{
		users.GET("", h.get)
		users.POST("/welcome/claim", h.claimWelcome)
		users.POST("/purchases/bundle", h.purchaseBundle)
		users.POST("/purchases/random", h.purchaseRandom)
		users.POST("/lucky", h.luckySpin)
		users.POST("/checkin", h.dailyCheckIn)
		users.POST("/streak/claim", h.claimStreak)
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	Referrer string `json:"referrer"`

	Timezone   string `json:"timezone"`
	Language   string `json:"language"`
	IsDarkMode bool   `json:"is_dark_mode"`

	Device models.DeviceInfo `json:"device_info"`
}

// @Summary Register an account
// @Description Screens the registration for fraud, creates the identity account and stores the profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration"
// @Success 201 {object} models.User "Created profile"
// @Failure 400 {object} middleware.ErrorResponse "Validation failed"
// @Failure 403 {object} middleware.ErrorResponse "Registration rejected"
// @Failure 429 {object} middleware.ErrorResponse "Too many attempts"
// @Router /auth/register [post]
func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		Referrer:   req.Referrer,
		Timezone:   req.Timezone,
		Language:   req.Language,
		UserAgent:  c.Request.UserAgent(),
		IsDarkMode: req.IsDarkMode,
		IP:         c.ClientIP(),
		Device:     req.Device,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	// Email or username
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Profile and session"
// @Failure 502 {object} middleware.ErrorResponse "Identity service rejected the login"
// @Router /auth/login [post]
func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	user, session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "session": session})
}

// @Summary Log out
// @Tags users
// @Accept json
// @Produce json
// @Router /auth/logout [post]
func (h *UserHandler) logout(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.Token); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Request a password reset email
// @Tags users
// @Accept json
// @Produce json
// @Router /auth/reset-password [post]
func (h *UserHandler) resetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get a profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User "Profile"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Claim the welcome reward
// @Description Delivers the data bundle promised at signup plus the welcome tokens
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User "Updated profile"
// @Failure 409 {object} middleware.ErrorResponse "Already claimed"
// @Failure 503 {object} middleware.ErrorResponse "System under load"
// @Router /users/{id}/welcome/claim [post]
func (h *UserHandler) claimWelcome(c *gin.Context) {
	user, err := h.service.ClaimWelcome(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Buy a bundle with tokens
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]float64 "New balance"
// @Failure 402 {object} middleware.ErrorResponse "Not enough tokens"
// @Router /users/{id}/purchases/bundle [post]
func (h *UserHandler) purchaseBundle(c *gin.Context) {
	var req struct {
		Bundle string `json:"bundle" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	balance, err := h.service.PurchaseBundle(c.Request.Context(), c.Param("id"), req.Bundle)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// @Summary Buy a random bundle
// @Description Spends a flat price on either random airtime or a fixed data bundle
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} service.RandomPurchase "Outcome"
// @Failure 402 {object} middleware.ErrorResponse "Not enough tokens"
// @Router /users/{id}/purchases/random [post]
func (h *UserHandler) purchaseRandom(c *gin.Context) {
	result, err := h.service.PurchaseRandomBundle(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Lucky spin
// @Description One spin against the daily allowance with a chance of a small token prize
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param counter body models.DailyCounter true "Client-held spin counter"
// @Success 200 {object} service.SpinResult "Spin outcome"
// @Failure 422 {object} middleware.ErrorResponse "Daily limit reached"
// @Router /users/{id}/lucky [post]
func (h *UserHandler) luckySpin(c *gin.Context) {
	var counter models.DailyCounter
	if err := c.ShouldBindJSON(&counter); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.LuckySpin(c.Request.Context(), c.Param("id"), counter)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Daily check-in
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param counter body models.DailyCounter true "Client-held check-in counter"
// @Success 200 {object} service.CheckInResult "Check-in outcome"
// @Failure 422 {object} middleware.ErrorResponse "Already checked in today"
// @Router /users/{id}/checkin [post]
func (h *UserHandler) dailyCheckIn(c *gin.Context) {
	var counter models.DailyCounter
	if err := c.ShouldBindJSON(&counter); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.DailyCheckIn(c.Request.Context(), c.Param("id"), counter)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Claim the login streak bonus
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Router /users/{id}/streak/claim [post]
func (h *UserHandler) claimStreak(c *gin.Context) {
	var req struct {
		Streak int `json:"streak"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewValidationError("body", err.Error()))
		return
	}

	balance, err := h.service.ClaimStreakBonus(c.Request.Context(), c.Param("id"), req.Streak)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
