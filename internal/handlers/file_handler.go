package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// sniffLen - сколько байт читаем для определения типа
const sniffLen = 3072

// FileHandler отдает приватные файлы локального диска по подписанной ссылке.
// Для S3 ссылки подписывает сам провайдер и этот обработчик не нужен.
type FileHandler struct {
	*BaseHandler
	private *storage.LocalStorage
	// prefix - путь из base_url приватного диска, например /files/private
	prefix string
}

func NewFileHandler(base *BaseHandler, private *storage.LocalStorage, prefix string) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		private:     private,
		prefix:      "/" + strings.Trim(prefix, "/"),
	}
}

func (h *FileHandler) Prefix() string {
	return h.prefix
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.prefix+"/*filepath", h.ServePrivate)
}

// ServePrivate проверяет expires и signature, затем стримит файл
func (h *FileHandler) ServePrivate(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("filepath"), "/")
	if path == "" {
		apperrors.HandleError(c, apperrors.NewNotFoundError("file", "File not found"))
		return
	}

	if !h.private.VerifySignature(path, c.Query("expires"), c.Query("signature")) {
		logger.CtxWarn(c.Request.Context(), "Rejected private file link", "path", path, "ip", c.ClientIP())
		apperrors.HandleError(c, apperrors.NewForbiddenError("Link is invalid or expired"))
		return
	}

	reader, err := h.private.Get(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			apperrors.HandleError(c, apperrors.NewNotFoundError("file", "File not found"))
			return
		}
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.HandleServiceError(c, err)
		return
	}
	head = head[:n]

	c.Header("Content-Type", mimetype.Detect(head).String())
	c.Header("Cache-Control", "private, no-store")
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	} else {
		c.Header("Content-Disposition", "inline")
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, io.MultiReader(bytes.NewReader(head), reader)); err != nil {
		// заголовки уже отправлены
		c.Error(err)
	}
}
