package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

type loginResponse struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

func newLoginResponse(result *services.LoginResult) loginResponse {
	return loginResponse{
		UserID:                result.UserID,
		AccessToken:           result.AccessToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
		RefreshToken:          result.RefreshToken,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
	}
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, newServiceError(err))
		return
	}

	h.setSessionCookies(c, result)
	c.JSON(http.StatusOK, newLoginResponse(result))
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	result, ok := h.refreshSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newLoginResponse(result))
}

// refreshSession rotates the session named by the refresh token cookie
// and sets fresh cookies. It aborts the request when it fails.
func (h *handlerImpl) refreshSession(c *gin.Context) (*services.LoginResult, bool) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get refresh token cookie")
		abort(c, newUnauthorizedError(errMandatoryCookieNotFound.Error()))
		return nil, false
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return nil, false
	}

	result, err := h.auth.Refresh(c, services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to refresh session")
		abort(c, newServiceError(err))
		return nil, false
	}

	h.setSessionCookies(c, result)
	return result, true
}

type registerRequest struct {
	loginRequest
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.Register(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, newServiceError(err))
		return
	}

	h.setSessionCookies(c, result)
	c.JSON(http.StatusCreated, newLoginResponse(result))
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	err := h.auth.Logout(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	clearCookie(c, accessTokenCookie)
	clearCookie(c, refreshTokenCookie)

	c.Status(http.StatusNoContent)
}

type sessionResponse struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Current     bool      `json:"current"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HandleGetSessions lists the devices the user is signed in on.
func (h *handlerImpl) HandleGetSessions(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	currentID, _ := getStringFromContext(c, sessionIDCtxKey)

	sessions, err := h.sessions.GetSessions(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get sessions")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:          session.ID,
			Fingerprint: session.Fingerprint,
			Current:     session.ID == currentID,
			ExpiresAt:   session.ExpiresAt,
			CreatedAt:   session.CreatedAt,
			UpdatedAt:   session.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

// HandleDeleteSession signs one device out. Deleting the current
// session also clears the auth cookies.
func (h *handlerImpl) HandleDeleteSession(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	sessionID := c.Param("id")

	err := h.sessions.DeleteSession(c, userID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			abort(c, newNotFoundError(err.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to delete session")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if currentID, _ := getStringFromContext(c, sessionIDCtxKey); currentID == sessionID {
		clearCookie(c, accessTokenCookie)
		clearCookie(c, refreshTokenCookie)
	}
	c.JSON(http.StatusOK, gin.H{"id": sessionID})
}

type authCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// HandleIssueAuthCode lets a signed-in client open the app elsewhere:
// the returned URL signs the browser in without a password.
func (h *handlerImpl) HandleIssueAuthCode(c *gin.Context) {
	userID, _ := getStringFromContext(c, userIDCtxKey)

	code, err := h.auth.IssueAuthCode(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to issue auth code")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, authCodeResponse{
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
		URL:       "/home?code=" + url.QueryEscape(code.Code),
	})
}

func (h *handlerImpl) HandleHome(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.logger.Error().Msg("no auth code provided")
		abort(c, newBadRequestError("code is required"))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	result, err := h.auth.ExchangeAuthCode(c, code, fingerprint)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to exchange auth code")
		abort(c, newServiceError(err))
		return
	}

	h.setSessionCookies(c, result)
	c.Redirect(http.StatusFound, h.redirectURL)
}

func (h *handlerImpl) setSessionCookies(c *gin.Context, result *services.LoginResult) {
	now := h.now()
	setAccessTokenCookie(c, result.AccessToken, result.AccessTokenExpiresAt.Sub(now))
	setRefreshTokenCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt.Sub(now))
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func setAccessTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	// Readable by scripts so a browser client can put it
	// into the Authorization header.
	const secure, httpOnly = false, false
	c.SetCookie(accessTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func setRefreshTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(refreshTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, false)
}
