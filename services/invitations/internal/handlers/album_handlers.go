package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cris-imc/invitaciones-sub002/pkg/metrics"
	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/storage"
)

// multipartOverhead is the allowance for form fields and part headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

// GetAlbum returns the approved photos of the invitation named by slug.
func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) {
	view, err := h.albums.Photos(r.Context(), chi.URLParam(r, "invitation"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, view)
}

// UploadPhoto adds a guest photo to the album of the invitation named by slug.
func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	file, closeFile, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer closeFile()

	in := domain.PhotoInput{
		UploaderName: r.FormValue("uploaderName"),
		Caption:      r.FormValue("caption"),
	}
	photo, err := h.albums.Upload(r.Context(), chi.URLParam(r, "invitation"), in, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, photo)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload stores a standalone image, e.g. a cover or background.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	file, closeFile, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.albums.UploadFile(r.Context(), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, uploadResponse{URL: url})
}

// readUpload parses the multipart form and returns its "file" part.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (storage.File, func(), bool) {
	maxBytes := h.config.Uploads.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.Uploads.WithLabelValues("too_large").Inc()
			response.BadRequest(w, "file exceeds the upload size limit")
			return storage.File{}, nil, false
		}
		response.BadRequest(w, "Invalid multipart form")
		return storage.File{}, nil, false
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return storage.File{}, nil, false
	}

	f := storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        part,
	}
	return f, func() {
		part.Close()
		r.MultipartForm.RemoveAll()
	}, true
}

func (h *Handlers) ListPendingPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	photos, err := h.albums.PendingPhotos(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, photos)
}

type moderationRequest struct {
	ModerationEnabled *bool `json:"moderationEnabled"`
}

func (h *Handlers) SetModeration(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	var req moderationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ModerationEnabled == nil {
		response.BadRequest(w, "moderationEnabled is required")
		return
	}

	album, err := h.albums.SetModeration(r.Context(), id, *req.ModerationEnabled)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, album)
}

type approveRequest struct {
	Approved *bool `json:"approved"`
}

func (h *Handlers) ApprovePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "photoId")
	if !ok {
		response.BadRequest(w, "Invalid photo ID")
		return
	}
	var req approveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Approved == nil {
		response.BadRequest(w, "approved is required")
		return
	}

	photo, err := h.albums.ApprovePhoto(r.Context(), id, *req.Approved)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, photo)
}

func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "photoId")
	if !ok {
		response.BadRequest(w, "Invalid photo ID")
		return
	}
	if err := h.albums.DeletePhoto(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
