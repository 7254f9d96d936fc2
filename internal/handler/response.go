package handler

import (
	"net/http"

	"github.com/aeroway/aeroway-api/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	httputil.WriteSuccess(w, message, data)
}
