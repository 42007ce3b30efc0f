package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/healthwatch/internal/api"
	"github.com/angeloszaimis/healthwatch/internal/directory"
	"github.com/angeloszaimis/healthwatch/internal/metrics"
)

func setupRouter(dir *directory.Directory, metricsCollector *metrics.Collector, log *slog.Logger) http.Handler {
	return api.NewServer(dir, metricsCollector.Handler(), log).Echo()
}
