package uploads

import (
	"errors"
	"net/http"
	"strings"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// maxUploadSize caps inspo images at 10 MiB.
const maxUploadSize = 10 << 20

// Handler accepts multipart image uploads.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates an uploads handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Upload stores the "image" form file and returns its key and URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httperr.Write(w, h.logger, httperr.Validation("image file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		httperr.Write(w, h.logger, httperr.Validation("only image uploads are accepted"))
		return
	}

	key, err := h.store.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, ErrEmptyFile) {
			httperr.Write(w, h.logger, httperr.Validation(err.Error()).Wrap(err))
			return
		}
		httperr.Write(w, h.logger, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": h.store.ResolveURL(key),
	})
}
