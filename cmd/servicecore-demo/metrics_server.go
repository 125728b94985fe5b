package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
)

// startMetricsServer mounts the demo's collector behind /metrics on addr, if
// addr is non-empty (the root command's --metrics-addr flag). It runs in the
// background for the life of the process; the demo CLI is short-lived, so a
// listener error just gets logged rather than failing the command.
func startMetricsServer(addr string, d *demo) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.collector.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Component("metrics").Error("metrics server exited", zap.Error(err))
		}
	}()
}
