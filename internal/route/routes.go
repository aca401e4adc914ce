package route

import (
	"net/http"

	"objectdetection/internal/handler"
	"objectdetection/internal/logger"
	ws "objectdetection/internal/service/websocket"
)

// SetupRoutes builds the live detection feed mux.
func SetupRoutes(hub *ws.HubService, logger *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", handler.ViewWebsocketHandler(hub, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
