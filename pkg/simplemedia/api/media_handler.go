package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

const (
	// maxUploadSize caps the multipart body of create and update requests
	maxUploadSize = 64 << 20

	// uploadField is the multipart field carrying the binary content
	uploadField = "binary_content"

	defaultFormat = "reference"
)

// MediaResponse is the response body for a media record
type MediaResponse struct {
	ID                string    `json:"id"`
	Context           string    `json:"context"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Enabled           bool      `json:"enabled"`
	AuthorName        string    `json:"author_name,omitempty"`
	Copyright         string    `json:"copyright,omitempty"`
	CDNIsFlushable    bool      `json:"cdn_is_flushable"`
	ProviderName      string    `json:"provider_name"`
	ProviderStatus    string    `json:"provider_status"`
	ProviderReference string    `json:"provider_reference"`
	ContentType       string    `json:"content_type"`
	Size              int64     `json:"size"`
	Path              string    `json:"path,omitempty"`
	PublicURL         string    `json:"public_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// URLResponse is the response body for a media URL lookup
type URLResponse struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Private bool   `json:"private"`
}

// MediaHandler handles HTTP requests for media records
type MediaHandler struct {
	manager *simplemedia.Manager
	logger  *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(manager *simplemedia.Manager, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{
		manager: manager,
		logger:  logger,
	}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateMedia)
	r.Get("/", h.ListMedia)
	r.Get("/{id}", h.GetMedia)
	r.Put("/{id}", h.UpdateMedia)
	r.Delete("/{id}", h.DeleteMedia)

	r.Get("/{id}/download", h.DownloadMedia)
	r.Get("/{id}/url", h.GetMediaURL)
	r.Get("/{id}/helper", h.GetHelperProperties)

	return r
}

// CreateMedia creates a media record from a multipart form. The file part is
// optional; a record without one is stored with metadata only.
func (h *MediaHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	media := &simplemedia.Media{Enabled: true}
	if err := applyForm(r, media); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	content, err := uploadedContent(r)
	if err != nil {
		h.logger.Error("Failed to read upload", "error", err)
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	media.BinaryContent = content

	if err := h.manager.Create(r.Context(), media); err != nil {
		h.writeError(w, "Failed to create media", media.ID, err)
		return
	}

	h.logger.Info("Media created", "media_id", media.ID, "context", media.Context, "reference", media.ProviderReference)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.toResponse(media))
}

// ListMedia lists media records, optionally filtered by ?context=
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	records, err := h.manager.List(r.Context(), r.URL.Query().Get("context"))
	if err != nil {
		h.writeError(w, "Failed to list media", uuid.Nil, err)
		return
	}

	resp := make([]MediaResponse, 0, len(records))
	for _, media := range records {
		resp = append(resp, h.toResponse(media))
	}
	render.JSON(w, r, resp)
}

// GetMedia retrieves a media record by ID
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.toResponse(media))
}

// UpdateMedia merges the submitted form fields onto a stored record. A new
// file part replaces the stored file under the existing reference.
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}

	if err := h.parseForm(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// the stored file lives under the record's context
	mediaContext := media.Context
	if err := applyForm(r, media); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	media.Context = mediaContext

	content, err := uploadedContent(r)
	if err != nil {
		h.logger.Error("Failed to read upload", "media_id", media.ID, "error", err)
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	media.BinaryContent = content

	if err := h.manager.Update(r.Context(), media); err != nil {
		h.writeError(w, "Failed to update media", media.ID, err)
		return
	}

	h.logger.Info("Media updated", "media_id", media.ID, "new_content", content != nil)
	render.JSON(w, r, h.toResponse(media))
}

// DeleteMedia deletes a media record by ID
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Failed to delete media", id, err)
		return
	}

	h.logger.Info("Media deleted", "media_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// DownloadMedia streams the stored file of a media record
func (h *MediaHandler) DownloadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	reader, media, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.writeError(w, "Failed to download media", id, err)
		return
	}
	defer reader.Close()

	contentType := media.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": media.Name}))
	if media.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(media.Size, 10))
	}

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("Failed to stream media", "media_id", id, "error", err)
	}
}

// GetMediaURL returns the public URL of a record for ?format=, or its private
// URL when ?private=true
func (h *MediaHandler) GetMediaURL(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}

	format := formatParam(r)
	private, _ := strconv.ParseBool(r.URL.Query().Get("private"))

	resp := URLResponse{Format: format, Private: private}
	provider := h.manager.Provider()
	if private {
		url, err := provider.PrivateURL(*media, format)
		if err != nil {
			h.writeError(w, "Failed to build private URL", media.ID, err)
			return
		}
		resp.URL = url
	} else {
		resp.URL = provider.PublicURL(*media, format)
	}

	render.JSON(w, r, resp)
}

// GetHelperProperties returns the rendering properties of a record. Query
// parameters other than format are passed through as overrides.
func (h *MediaHandler) GetHelperProperties(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}

	options := map[string]any{}
	for key, values := range r.URL.Query() {
		if key == "format" || len(values) == 0 {
			continue
		}
		options[key] = values[0]
	}

	render.JSON(w, r, h.manager.Provider().HelperProperties(*media, formatParam(r), options))
}

func (h *MediaHandler) mediaID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Error("Invalid media ID", "media_id", idStr, "error", err)
		http.Error(w, "Invalid media ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *MediaHandler) loadMedia(w http.ResponseWriter, r *http.Request) (*simplemedia.Media, bool) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return nil, false
	}

	media, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "Failed to get media", id, err)
		return nil, false
	}
	return media, true
}

func (h *MediaHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fmt.Errorf("invalid form: %w", err)
	}
	if r.PostForm == nil {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("invalid form: %w", err)
		}
	}
	return nil
}

func (h *MediaHandler) writeError(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "media_id", id, "error", err)
	} else {
		h.logger.Warn(msg, "media_id", id, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func (h *MediaHandler) toResponse(media *simplemedia.Media) MediaResponse {
	provider := h.manager.Provider()
	resp := MediaResponse{
		ID:                media.ID.String(),
		Context:           media.Context,
		Name:              media.Name,
		Description:       media.Description,
		Enabled:           media.Enabled,
		AuthorName:        media.AuthorName,
		Copyright:         media.Copyright,
		CDNIsFlushable:    media.CDNIsFlushable,
		ProviderName:      media.ProviderName,
		ProviderStatus:    string(media.ProviderStatus),
		ProviderReference: media.ProviderReference,
		ContentType:       media.ContentType,
		Size:              media.Size,
		PublicURL:         provider.PublicURL(*media, defaultFormat),
		CreatedAt:         media.CreatedAt,
		UpdatedAt:         media.UpdatedAt,
	}
	if media.ProviderReference != "" {
		resp.Path = provider.AbsolutePath(*media)
	}
	return resp
}

// statusFor maps media errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, simplemedia.ErrInvalidContent):
		return http.StatusBadRequest
	case errors.Is(err, simplemedia.ErrMediaNotFound), errors.Is(err, simplemedia.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplemedia.ErrMediaExists):
		return http.StatusConflict
	case errors.Is(err, simplemedia.ErrPrivateURLUnsupported):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func formatParam(r *http.Request) string {
	if format := r.URL.Query().Get("format"); format != "" {
		return format
	}
	return defaultFormat
}
