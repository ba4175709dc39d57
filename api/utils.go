package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"hermannm.dev/wrap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(message string, statusCode int, err error, res http.ResponseWriter) {
	if err != nil {
		message = wrapMessage(message, err)
	}

	log.Error(message)
	sendJSONStatus(errorResponse{Error: message}, statusCode, res)
}

func wrapMessage(message string, err error) string {
	if message == "" {
		return err.Error()
	}
	return wrap.Error(err, message).Error()
}

func sendJSON(value any, res http.ResponseWriter) {
	sendJSONStatus(value, http.StatusOK, res)
}

func sendJSONStatus(value any, statusCode int, res http.ResponseWriter) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)

	if err := json.NewEncoder(res).Encode(value); err != nil {
		log.Errorf("Failed to serialize response, Error: %v", err)
	}
}
