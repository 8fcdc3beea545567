package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/authz"
	"crewdesk/internal/models"
	"crewdesk/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// @Summary      Sign up
// @Description  Registers a new user and emails a verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Signup data"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.accounts.Register(&req)
	if err != nil {
		var invalidRole *authz.InvalidRoleError
		switch {
		case errors.Is(err, authz.ErrRoleRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role is required. Please select a role from the available options."})
		case errors.As(err, &invalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRole.Error()})
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case errors.Is(err, services.ErrNotificationFailed):
			// the account exists; the client should ask for a resend
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Account created but the verification email could not be sent. Please request a new code.",
				"user":  summary,
			})
		default:
			log.Printf("[auth][signup] internal error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created, verification code sent",
		"user":    summary,
	})
}

// @Summary      Verify OTP
// @Description  Confirms the emailed code and returns a session token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        verify  body      models.VerifyOTPRequest  true  "Email and code"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, token, err := h.accounts.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrNoPendingCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No pending verification code, please request a new one"})
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code expired, please request a new one"})
		case errors.Is(err, services.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		default:
			log.Printf("[auth][verify] internal error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Authentication successful",
		"token":   token,
		"user":    summary,
	})
}

// @Summary      Resend OTP
// @Description  Issues a fresh verification code, rate limited per identity
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        resend  body      models.ResendOTPRequest  true  "Email"
// @Success      200     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      429     {object}  map[string]interface{}
// @Router       /api/auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req models.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.accounts.ResendOTP(req.Email)
	if err != nil {
		var rateLimited *services.RateLimitError
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrNoPendingCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Account is already verified"})
		case errors.As(err, &rateLimited):
			body := gin.H{"error": rateLimited.Error()}
			if rateLimited.MaxAttemptsReached {
				body["max_attempts_reached"] = true
			} else {
				body["retry_after"] = rateLimited.RetryAfter
			}
			c.JSON(http.StatusTooManyRequests, body)
		case errors.Is(err, services.ErrNotificationFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send verification email, please try again"})
		default:
			log.Printf("[auth][resend] internal error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// @Summary      Log in
// @Description  Authenticates by email or phone and returns a session token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email or identifier is required"})
		return
	}

	summary, token, err := h.accounts.Login(identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, services.ErrNotVerified):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not verified"})
		default:
			log.Printf("[auth][login] internal error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": summary})
}

// @Summary      Get profile
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.UserSummary
// @Failure      404  {object}  map[string]string
// @Router       /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := getIdentity(c)

	summary, err := h.accounts.Profile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("[auth][profile] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Update profile
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      models.UpdateProfileRequest  true  "Fields to change"
// @Success      200      {object}  models.UserSummary
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := getIdentity(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.accounts.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("[auth][profile][update] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
