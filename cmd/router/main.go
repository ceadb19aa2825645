/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command router runs the instructional network router as a standalone
// process: load the host inventory, start every listener and the
// forwarder, and run until interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	"github.com/submitty/router/internal/config"
	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/router"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *spfcbr.Command {
	v := spfvpr.New()
	v.AutomaticEnv()

	cmd := &spfcbr.Command{
		Use:   "router",
		Short: "Instructional network router for automated grading harnesses",
		RunE: func(cmd *spfcbr.Command, args []string) error {
			return run(cmd.Context(), config.LoadSettings(v))
		},
	}

	config.BindFlags(cmd.Flags(), v)

	return cmd
}

func run(parent context.Context, settings config.Settings) error {
	entries, err := config.LoadInventory(settings.InventoryPath)
	if err != nil {
		return fmt.Errorf("loading host inventory: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()

	opts := []router.Option{
		router.WithLogLevel(logger.ParseLevel(settings.LogLevel)),
		router.WithDiagramFile(settings.DiagramFile),
		router.WithMetricsRegisterer(reg),
	}
	if settings.LogFile != "" {
		opts = append(opts, router.WithLogFile(settings.LogFile))
	}

	r := router.New(entries, opts...)
	if err := r.Init(); err != nil {
		return fmt.Errorf("initializing router: %w", err)
	}

	if settings.MetricsAddr != "" {
		serveMetrics(ctx, settings.MetricsAddr, reg)
	}

	return r.Run(ctx)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		_ = srv.ListenAndServe()
	}()
}
