package v1

import (
	"net/http"
	"time"

	"portfolio-admin-backend/internal/delivery/http/middleware"
	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	secureCookie bool
}

func NewAuthHandler(public *gin.RouterGroup, authUC domain.AuthUsecase, limiter gin.HandlerFunc, secureCookie bool) {
	handler := &AuthHandler{authUC: authUC, secureCookie: secureCookie}

	auth := public.Group("/auth")
	{
		auth.POST("/login", limiter, handler.Login)
		auth.POST("/otp/verify", limiter, handler.VerifyOTP)
		auth.POST("/otp/resend", limiter, handler.ResendOTP)
		auth.GET("/challenge/:id", handler.ChallengeStatus)
		auth.POST("/logout", handler.Logout)
	}
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type VerifyOTPRequest struct {
	ChallengeID string `json:"challenge_id" form:"challenge_id"`
	OTP         string `json:"otp" form:"otp"`
}

type ResendOTPRequest struct {
	ChallengeID string `json:"challenge_id" form:"challenge_id"`
}

// Login godoc
// @Summary      Check admin credentials
// @Description  Verifies email and password against the credentials table and emails a one-time code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=domain.LoginResult}
// @Failure      401    {object}  response.Response
// @Failure      422    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password, middleware.ClientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, result.Message, result)
}

// VerifyOTP godoc
// @Summary      Verify the one-time code
// @Description  Completes login. Sets the admin_session cookie and returns the session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        otp  body      VerifyOTPRequest  true  "Challenge and code"
// @Success      200  {object}  response.Response{data=domain.VerifyResult}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      410  {object}  response.Response
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.authUC.VerifyOTP(c.Request.Context(), req.ChallengeID, req.OTP, middleware.ClientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}

	if result.Session != nil {
		maxAge := int(time.Until(result.Session.ExpiresAt).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookieName, result.Session.Token, maxAge, "/", "", h.secureCookie, true)
	}
	response.Success(c, http.StatusOK, result.Message, result)
}

// ResendOTP godoc
// @Summary      Send a new one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        resend  body      ResendOTPRequest  true  "Challenge"
// @Success      200     {object}  response.Response{data=domain.LoginResult}
// @Failure      404     {object}  response.Response
// @Router       /auth/otp/resend [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.authUC.ResendOTP(c.Request.Context(), req.ChallengeID, middleware.ClientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, result.Message, result)
}

// ChallengeStatus godoc
// @Summary      Pending login state
// @Description  Returns the expiry hint for a pending challenge. The code itself is never returned.
// @Tags         auth
// @Produce      json
// @Param        id   path      string  true  "Challenge ID"
// @Success      200  {object}  response.Response{data=domain.ChallengeStatus}
// @Failure      404  {object}  response.Response
// @Router       /auth/challenge/{id} [get]
func (h *AuthHandler) ChallengeStatus(c *gin.Context) {
	status, err := h.authUC.ChallengeStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, status)
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the current session and clears the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.BearerToken(c); token != "" {
		if err := h.authUC.Logout(c.Request.Context(), token, middleware.ClientInfo(c)); err != nil {
			c.Error(err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Signed out", nil)
}
