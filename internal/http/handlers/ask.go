package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/docqa-backend/internal/http/response"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/services"
)

type AskHandler struct {
	log *logger.Logger
	qa  services.QAService
}

func NewAskHandler(log *logger.Logger, qa services.QAService) *AskHandler {
	return &AskHandler{log: log.With("handler", "AskHandler"), qa: qa}
}

// POST /ask/ with form field "question". The caller cannot pick the document.
func (h *AskHandler) Ask(c *gin.Context) {
	ans, err := h.qa.Answer(c.Request.Context(), c.PostForm("question"))
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ans)
}
