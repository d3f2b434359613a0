package server

import (
	"net/http"

	"lifestream/internal/api/reportv1"
	"lifestream/internal/gateway/handler"
	"lifestream/internal/gateway/middleware"
)

func NewMux(reportHandler *handler.ReportHandler, ping handler.Pinger) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(reportv1.NewReportServiceHandler(reportHandler))

	// Streaming and probes
	mux.HandleFunc("/ws/reports/generate", reportHandler.HandleProgressWS)
	mux.HandleFunc("/api/health", handler.HealthHandler(ping))

	// Middleware
	return middleware.CORS(mux)
}
