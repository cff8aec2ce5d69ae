package feed

import (
	"net/http"

	"github.com/gorilla/mux"

	"instafeed/internal/common"
)

// Handler is a deliberately thin adapter: the gateway in front of this
// service owns auth and multipart handling and forwards the resolved viewer
// id in a header.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/top", h.GetTopPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/search", h.SearchPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{postID}", h.GetPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{postID}/related", h.GetRelatedPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{postID}/like", h.LikePost).Methods(http.MethodPost)
	r.HandleFunc("/posts/{postID}/save", h.SavePost).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/posts", h.GetPostsByUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/liked", h.GetLikedPosts).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/saved", h.GetSavedPosts).Methods(http.MethodGet)
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	posts, err := h.service.GetPosts(r.Context(), viewer, common.Page(r))
	common.Respond(w, posts, err)
}

func (h *Handler) GetTopPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	posts, err := h.service.GetTopPosts(r.Context(), viewer, common.Page(r))
	common.Respond(w, posts, err)
}

func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	posts, err := h.service.SearchPosts(r.Context(), viewer, r.URL.Query().Get("q"), common.Page(r))
	common.Respond(w, posts, err)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	post, err := h.service.GetPost(r.Context(), viewer, postID)
	common.Respond(w, post, err)
}

func (h *Handler) GetRelatedPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	posts, err := h.service.GetRelatedPosts(r.Context(), viewer, postID)
	common.Respond(w, posts, err)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	liked, changed, err := h.service.LikePost(r.Context(), viewer, postID)
	common.Respond(w, map[string]bool{"liked": liked, "changed": changed}, err)
}

func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	saved, changed, err := h.service.SavePost(r.Context(), viewer, postID)
	common.Respond(w, map[string]bool{"saved": saved, "changed": changed}, err)
}

func (h *Handler) GetPostsByUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	userID, ok := common.PathID(w, r, "userID")
	if !ok {
		return
	}
	posts, err := h.service.GetPostsByUser(r.Context(), viewer, userID, common.Page(r))
	common.Respond(w, posts, err)
}

func (h *Handler) GetLikedPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	userID, ok := common.PathID(w, r, "userID")
	if !ok {
		return
	}
	posts, err := h.service.GetLikedPosts(r.Context(), viewer, userID, common.Page(r))
	common.Respond(w, posts, err)
}

func (h *Handler) GetSavedPosts(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	userID, ok := common.PathID(w, r, "userID")
	if !ok {
		return
	}
	posts, err := h.service.GetSavedPosts(r.Context(), viewer, userID, common.Page(r))
	common.Respond(w, posts, err)
}
