package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"augur/internal/gateway"
)

type assistRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

func (r *router) handleAssist(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload assistRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	payload.Query = strings.TrimSpace(payload.Query)
	if payload.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if strings.TrimSpace(payload.UserID) == "" {
		payload.UserID = "anonymous"
	}

	output := r.deps.Gateway.HandleQuery(req.Context(), gateway.QueryInput{
		UserID: strings.TrimSpace(payload.UserID),
		Query:  payload.Query,
	})
	writeJSON(w, http.StatusOK, output)
}
