package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func spaceIDFromRequest(r *http.Request) (string, bool) {
	id := mux.Vars(r)["spaceID"]
	return id, id != ""
}
