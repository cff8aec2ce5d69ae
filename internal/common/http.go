package common

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViewerID reads the resolved viewer forwarded by the gateway. The gateway
// owns authentication; this service only trusts the header it forwards.
func ViewerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.Header.Get("X-Viewer-ID"))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "missing or malformed viewer id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// PathID parses an object id out of a mux path variable.
func PathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		WriteError(w, http.StatusBadRequest, "malformed "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// MaxPage bounds the page query parameter. Deep enough for any real
// listing; keeps skip arithmetic far from overflow.
const MaxPage = 1 << 20

// Page reads the zero-based page query parameter, treating garbage and
// negative values as the first page and capping runaway values.
func Page(r *http.Request) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	if n > MaxPage {
		return MaxPage
	}
	return n
}

// Respond maps domain errors onto status codes and writes the payload.
func Respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		switch {
		case IsNotFound(err):
			WriteError(w, http.StatusNotFound, err.Error())
		case IsValidation(err):
			WriteError(w, http.StatusBadRequest, err.Error())
		case IsConflict(err):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			log.Errorf("handler: %v", err)
			WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
