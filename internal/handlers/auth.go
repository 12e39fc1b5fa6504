package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"session_auth/internal/repository"
	"session_auth/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	msgLoggedOut = "logged out"
	msgNoSession = "no session"
)

// @Summary      Register
// @Description  Creates a user. Password length is checked before username availability.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentials  true  "username and password"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  messageResponse
// @Failure      422   {object}  messageResponse  "Username taken / Password must be longer than 3 chars"
// @Failure      500   {object}  messageResponse
// @Router       /api/auth/register [post]
func (h *Handler) register(c *gin.Context) {
	in := guardInputFrom(c)

	u, err := h.services.Register(c.Request.Context(), in.creds.Username, in.creds.Password)
	if err != nil {
		// lost a race with a concurrent registration past checkUsernameFree
		if errors.Is(err, repository.ErrUsernameTaken) {
			c.JSON(http.StatusUnprocessableEntity, messageResponse{Message: msgUsernameTaken})
			return
		}
		_ = c.Error(err)
		return
	}

	if h.log != nil {
		h.log.Infow("auth_registered", "user_id", u.ID, "username", u.Username)
	}
	c.JSON(http.StatusCreated, registerResponse{UserID: u.ID, Username: u.Username})
}

// @Summary      Login
// @Description  Verifies credentials and starts a cookie-backed session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentials  true  "username and password"
// @Success      200   {object}  messageResponse  "welcome <username>!"
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse  "Invalid credentials"
// @Failure      500   {object}  messageResponse
// @Router       /api/auth/login [post]
func (h *Handler) login(c *gin.Context) {
	ctx := c.Request.Context()
	in := guardInputFrom(c)

	if err := h.services.CheckPassword(in.user, in.creds.Password); err != nil {
		if h.log != nil {
			h.log.Infow("auth_login_failed", "username", in.creds.Username)
		}
		c.JSON(http.StatusUnauthorized, messageResponse{Message: msgInvalidCredentials})
		return
	}

	// a new login never reuses the session the client arrived with
	if id, err := h.cookie.Read(c.Request); err == nil {
		if _, err := h.services.End(ctx, id); err != nil && h.log != nil {
			h.log.Warnw("auth_previous_session_end_failed", "err", err)
		}
	}

	sess, err := h.services.Start(ctx, *in.user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ck, err := h.cookie.Issue(sess)
	if err != nil {
		_ = c.Error(err)
		return
	}
	http.SetCookie(c.Writer, ck)

	c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("welcome %s!", in.user.Username)})
}

// @Summary      Logout
// @Description  Destroys the caller's session. Always 200; "no session" when there was none.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse  "logged out / no session"
// @Failure      500  {object}  messageResponse
// @Router       /api/auth/logout [get]
func (h *Handler) logout(c *gin.Context) {
	id, err := h.cookie.Read(c.Request)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCookie) {
			http.SetCookie(c.Writer, h.cookie.Clear())
		}
		c.JSON(http.StatusOK, messageResponse{Message: msgNoSession})
		return
	}

	ended, err := h.services.End(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	http.SetCookie(c.Writer, h.cookie.Clear())

	if !ended {
		c.JSON(http.StatusOK, messageResponse{Message: msgNoSession})
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgLoggedOut})
}
