// Package media serves stored images over HTTP. Uploads take the raw image
// bytes in the request body; multipart assembly belongs to the gateway.
package media

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

const maxImageBytes = 10 << 20

type Handler struct {
	images *dbmongo.ImageStore
}

func NewHandler(images *dbmongo.ImageStore) *Handler {
	return &Handler{images: images}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/media", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/media/{imageID}", h.Serve).Methods(http.MethodGet)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}

	mimeType := r.Header.Get("Content-Type")
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "upload"
	}

	body := http.MaxBytesReader(w, r.Body, maxImageBytes)
	defer body.Close()

	img, err := h.images.Upload(r.Context(), filename, mimeType, viewer.Hex(), body)
	if err != nil {
		common.Respond(w, nil, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, img)
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	stream, img, err := h.images.Open(r.Context(), mux.Vars(r)["imageID"])
	if err != nil {
		common.Respond(w, nil, err)
		return
	}
	defer stream.Close()

	contentType := img.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))

	if _, err := io.Copy(w, stream); err != nil {
		log.Warnf("stream image %s: %v", img.ID, err)
	}
}
