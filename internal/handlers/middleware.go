package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "internal server error"

// errorHandler is the generic sink for errors handlers forward with c.Error.
// It answers 500 unless a response was already written.
func (h *Handler) errorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	if h.log != nil {
		h.log.Errorw("request_failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"err", c.Errors.Last().Err,
		)
	}
	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, messageResponse{Message: msgInternalError})
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}
