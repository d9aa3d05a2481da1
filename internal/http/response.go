package http

import (
	"encoding/json"
	"net/http"
)

// WriteJSON escreve envelope de sucesso, mesclando o payload informado
// com o campo success.
func WriteJSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError escreve envelope de erro no formato {success:false, error, details?}.
func WriteError(w http.ResponseWriter, status int, mensagem string, details any) {
	body := map[string]any{
		"success": false,
		"error":   mensagem,
	}
	if details != nil {
		body["details"] = details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
