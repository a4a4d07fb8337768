package errors

import (
	"encoding/json"
	"net/http"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// WriteError serializa err como {code, message, detail, remainingSeconds}.
// Los 5xx se loguean con el logger del request (WithLogging ya le puso
// request_id e ip); al cliente solo le llega el código y mensaje saneados.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if r != nil && appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request error",
			logger.Method(r.Method),
			logger.String("url", r.URL.String()),
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
