package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/validation"
)

const (
	maxUsernameLength = 255
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

// Single, shared credentials payload for register and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var errBlank = errors.New("cannot be blank")

// notBlank rejects strings made only of whitespace, which Required lets through.
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
})

func (c credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, notBlank, validation.RuneLength(1, maxUsernameLength)),
		validation.Field(&c.Password, validation.Length(0, maxPasswordBytes)),
	)
}

type registerResponse struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled, true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
