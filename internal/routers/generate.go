// Package routers registers route groups on the echo server
package routers

import (
	"database/sql"

	"forge-api/internal/database"
	"forge-api/internal/handlers/generate"
	"forge-api/internal/middleware"
	"forge-api/internal/records"
	"forge-api/internal/upstream"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type GenerateRouterConfig struct {
	RefinerEndpoint generate.Endpoint
	CoderEndpoint   generate.Endpoint
	HistoryDB       *sql.DB
}

// RegisterGenerateRoutes wires the /generate surface. The returned shutdown
// func flushes any buffered history records.
func RegisterGenerateRoutes(e *echo.Group, config GenerateRouterConfig, log *zap.SugaredLogger) (func(), error) {
	client := upstream.NewClient(log)
	policy := upstream.DefaultRetryPolicy()

	handler := &generate.Handler{
		Refiner: &generate.RefineStage{
			Client:   client,
			Endpoint: config.RefinerEndpoint,
			Policy:   policy,
		},
		Coder: &generate.CodeStage{
			Client:   client,
			Endpoint: config.CoderEndpoint,
			Policy:   policy,
		},
	}

	shutdown := func() {}
	if config.HistoryDB != nil {
		cache := records.NewCache(log, database.NewStore(config.HistoryDB))
		handler.Records = cache
		shutdown = cache.Shutdown
	}

	group := e.Group("/generate", middleware.NewCORSMiddleware())
	group.Any("", handler.Handle)

	return shutdown, nil
}
