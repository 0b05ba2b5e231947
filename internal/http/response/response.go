package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/docqa-backend/internal/platform/apierr"
)

// ErrorBody matches the {"detail": "..."} shape clients already parse.
type ErrorBody struct {
	Detail string `json:"detail"`
}

func RespondError(c *gin.Context, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	c.JSON(status, ErrorBody{Detail: msg})
}

// RespondErr derives the status from err, defaulting to 500.
func RespondErr(c *gin.Context, err error) {
	RespondError(c, apierr.StatusOf(err), err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
