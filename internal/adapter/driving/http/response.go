package httphandler

import (
	"encoding/json"
	"net/http"
)

// All responses use the envelope the dashboard frontend depends on:
// successes are {"success":true,"data":...}, failures are
// {"success":false,"error":"..."}.

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeSuccess writes data inside the success envelope with the given status.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(successEnvelope{Success: true, Data: data})
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeFailure writes the failure envelope with the given status and message.
func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body, _ := json.Marshal(failureEnvelope{Success: false, Error: message})
	_, _ = w.Write(body)
}
