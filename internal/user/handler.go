package user

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"instafeed/internal/common"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the user routes. The top-creators route must come before
// the catch-all ref route; mux matches in registration order.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/users/top-creators", h.GetTopCreators).Methods(http.MethodGet)
	r.HandleFunc("/users/{ref}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/me", h.UpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{userID}/follow", h.FollowUser).Methods(http.MethodPost)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.ViewerID(w, r); !ok {
		return
	}
	u, err := h.service.GetUser(r.Context(), mux.Vars(r)["ref"])
	common.Respond(w, u, err)
}

func (h *Handler) GetTopCreators(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.ViewerID(w, r); !ok {
		return
	}
	creators, err := h.service.GetTopCreators(r.Context(), common.Page(r))
	common.Respond(w, creators, err)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.WriteError(w, http.StatusBadRequest, "malformed body")
		return
	}
	u, err := h.service.UpdateUser(r.Context(), viewer, patch)
	common.Respond(w, u, err)
}

func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.ViewerID(w, r)
	if !ok {
		return
	}
	targetID, ok := common.PathID(w, r, "userID")
	if !ok {
		return
	}
	following, err := h.service.FollowUser(r.Context(), viewer, targetID)
	common.Respond(w, map[string]bool{"following": following}, err)
}
