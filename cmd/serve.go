package cmd

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/illarion/lockkv/internal/api"
	"github.com/illarion/lockkv/internal/core"
	"github.com/illarion/lockkv/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Serve exposes the store over HTTP until ctx is cancelled
func Serve(ctx context.Context, addr string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.New(reg)
	if err != nil {
		HandleError(err)
	}

	sess := OpenOrExit(ctx, core.WithMetrics(collector))
	defer sess.Close()

	if addr == "" {
		addr = sess.Config.Server.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(sess.Store, sess.Health, reg, sess.Log)

	sess.Log.Info().Str("addr", addr).Msg("serving lockkv API")
	err = api.Serve(ctx, addr, router,
		time.Duration(sess.Config.Server.ReadTimeoutSeconds)*time.Second,
		time.Duration(sess.Config.Server.WriteTimeoutSeconds)*time.Second)
	if err != nil {
		HandleError(err)
	}
	sess.Log.Info().Msg("server stopped")
}
