package middleware

import (
	"encoding/json"
	"net/http"
)

func writeEnvelopeError(w http.ResponseWriter, status int, mensagem string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   mensagem,
	})
}
