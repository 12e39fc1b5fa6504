package handlers

import (
	"context"
	"fmt"
	"net/http"

	"session_auth/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/validation"
)

const guardInputKey = "auth.guard_input"

const (
	msgUsernameTaken      = "Username taken"
	msgInvalidCredentials = "Invalid credentials"
)

// guardInput is the request state a guard chain reads and enriches.
type guardInput struct {
	creds credentials
	user  *models.User // set by checkUsernameExists
}

// rejection terminates a request with status and {"message": message}.
type rejection struct {
	status  int
	message string
}

// guard either lets the request continue (nil, nil), rejects it, or fails with an
// error that goes to the generic error handler.
type guard func(ctx context.Context, in *guardInput) (*rejection, error)

// runGuards runs guards in order and stops at the first rejection or error.
func runGuards(ctx context.Context, in *guardInput, guards []guard) (*rejection, error) {
	for _, g := range guards {
		rej, err := g(ctx, in)
		if err != nil || rej != nil {
			return rej, err
		}
	}
	return nil, nil
}

// guarded binds the credentials body once, runs guards in the given order and
// hands the resulting guardInput to the next handler.
func (h *Handler) guarded(guards ...guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := &guardInput{}
		if ok := h.bindJSONOrBadRequest(c, &in.creds); !ok {
			c.Abort()
			return
		}

		rej, err := runGuards(c.Request.Context(), in, guards)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if rej != nil {
			if h.log != nil {
				h.log.Infow("auth_guard_rejected", "path", c.FullPath(), "username", in.creds.Username, "status", rej.status)
			}
			c.AbortWithStatusJSON(rej.status, messageResponse{Message: rej.message})
			return
		}

		c.Set(guardInputKey, in)
		c.Next()
	}
}

func guardInputFrom(c *gin.Context) *guardInput {
	if v, ok := c.Get(guardInputKey); ok {
		if in, ok := v.(*guardInput); ok {
			return in
		}
	}
	return &guardInput{}
}

func (h *Handler) passwordTooShortMessage() string {
	return fmt.Sprintf("Password must be longer than %d chars", h.opts.MinPasswordLength-1)
}

// checkPasswordLength rejects missing passwords and ones shorter than the configured minimum.
func (h *Handler) checkPasswordLength(_ context.Context, in *guardInput) (*rejection, error) {
	err := validation.Validate(in.creds.Password,
		validation.Required,
		validation.RuneLength(h.opts.MinPasswordLength, 0),
	)
	if err != nil {
		return &rejection{status: http.StatusUnprocessableEntity, message: h.passwordTooShortMessage()}, nil
	}
	return nil, nil
}

// checkCredentials applies the payload shape rules to a registration.
func (h *Handler) checkCredentials(_ context.Context, in *guardInput) (*rejection, error) {
	if err := in.creds.Validate(); err != nil {
		return &rejection{status: http.StatusBadRequest, message: err.Error()}, nil
	}
	return nil, nil
}

func (h *Handler) checkUsernameFree(ctx context.Context, in *guardInput) (*rejection, error) {
	u, err := h.services.LookupUser(ctx, in.creds.Username)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return &rejection{status: http.StatusUnprocessableEntity, message: msgUsernameTaken}, nil
	}
	return nil, nil
}

// checkUsernameExists answers an unknown user exactly like a wrong password.
func (h *Handler) checkUsernameExists(ctx context.Context, in *guardInput) (*rejection, error) {
	u, err := h.services.LookupUser(ctx, in.creds.Username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &rejection{status: http.StatusUnauthorized, message: msgInvalidCredentials}, nil
	}
	in.user = u
	return nil, nil
}
