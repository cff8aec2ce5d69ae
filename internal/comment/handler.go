package comment

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/common"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/posts/{postID}/comments", h.GetComments).Methods(http.MethodGet)
	r.HandleFunc("/posts/{postID}/comments", h.CreateComment).Methods(http.MethodPost)
	r.HandleFunc("/comments/{commentID}", h.DeleteComment).Methods(http.MethodDelete)
	r.HandleFunc("/comments/{commentID}/replies", h.GetReplies).Methods(http.MethodGet)
	r.HandleFunc("/comments/{commentID}/like", h.LikeComment).Methods(http.MethodPost)
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.ViewerID(w, r); !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	comments, err := h.service.GetComments(r.Context(), postID, common.Page(r))
	common.Respond(w, comments, err)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	postID, ok := common.PathID(w, r, "postID")
	if !ok {
		return
	}
	var body struct {
		Content string  `json:"content"`
		ReplyTo *string `json:"replyTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteError(w, http.StatusBadRequest, "malformed body")
		return
	}
	req := NewComment{User: viewer, Post: postID, Content: body.Content}
	if body.ReplyTo != nil {
		parentID, err := primitive.ObjectIDFromHex(*body.ReplyTo)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "malformed replyTo")
			return
		}
		req.ReplyTo = &parentID
	}
	c, err := h.service.CreateComment(r.Context(), req)
	if err != nil {
		common.Respond(w, nil, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	commentID, ok := common.PathID(w, r, "commentID")
	if !ok {
		return
	}
	deleted, err := h.service.DeleteComment(r.Context(), viewer, commentID)
	common.Respond(w, deleted, err)
}

func (h *Handler) GetReplies(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.ViewerID(w, r); !ok {
		return
	}
	commentID, ok := common.PathID(w, r, "commentID")
	if !ok {
		return
	}
	replies, err := h.service.GetReplies(r.Context(), commentID, common.Page(r))
	common.Respond(w, replies, err)
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	commentID, ok := common.PathID(w, r, "commentID")
	if !ok {
		return
	}
	liked, changed, err := h.service.LikeComment(r.Context(), viewer, commentID)
	common.Respond(w, map[string]bool{"liked": liked, "changed": changed}, err)
}
