package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/docqa-backend/internal/http/response"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/services"
)

const (
	defaultMaxUploadBytes int64 = 32 << 20
	// multipartSlack covers part headers, boundaries and small form fields.
	multipartSlack int64 = 1 << 20
)

var errFileRequired = errors.New("file is required")

type DocumentHandler struct {
	log      *logger.Logger
	docs     services.DocumentService
	maxBytes int64
}

func NewDocumentHandler(log *logger.Logger, docs services.DocumentService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &DocumentHandler{
		log:      log.With("handler", "DocumentHandler"),
		docs:     docs,
		maxBytes: maxUploadBytes,
	}
}

// POST /upload/
//
// The multipart body is streamed: the filename is checked before any file
// bytes are read and the body is capped at maxBytes plus envelope slack.
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartSlack)
	mr, err := c.Request.MultipartReader()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, errFileRequired)
		return
	}

	var part *multipart.Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			response.RespondError(c, http.StatusBadRequest, errFileRequired)
			return
		}
		if err != nil {
			h.respondReadErr(c, err)
			return
		}
		if p.FormName() == "file" && p.FileName() != "" {
			part = p
			break
		}
		_ = p.Close()
	}
	defer part.Close()

	name, err := services.ValidateUploadName(part.FileName())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(part, h.maxBytes+1))
	if err != nil {
		h.respondReadErr(c, err)
		return
	}
	if int64(len(data)) > h.maxBytes {
		h.respondTooLarge(c)
		return
	}

	doc, err := h.docs.Upload(c.Request.Context(), services.UploadInput{Filename: name, Data: data})
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, doc.Summary())
}

func (h *DocumentHandler) respondReadErr(c *gin.Context, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		h.respondTooLarge(c)
		return
	}
	response.RespondError(c, http.StatusBadRequest, fmt.Errorf("cannot read upload: %w", err))
}

func (h *DocumentHandler) respondTooLarge(c *gin.Context) {
	h.log.Warn("Upload rejected", "reason", "too_large", "max_bytes", h.maxBytes)
	response.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", h.maxBytes))
}

// GET /documents/
func (h *DocumentHandler) List(c *gin.Context) {
	out, err := h.docs.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /documents/:document_id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("document_id")), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, errors.New("document_id must be a positive integer"))
		return
	}
	if err := h.docs.Delete(c.Request.Context(), uint(id)); err != nil {
		_ = c.Error(err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Document deleted successfully"})
}
