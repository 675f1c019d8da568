// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package web serves metrics and live counters while a load runs.
package web

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smolbuf/internal/version"
	"smolbuf/internal/web/res"
)

// Stats is the body of GET /stats.
type Stats struct {
	Arena  any `json:"arena"`
	Intern any `json:"intern,omitempty"`
}

// New returns the router. stats is called on every GET /stats.
func New(reg *prometheus.Registry, stats func() Stats, enableDebug bool) http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)

	r.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		res.Text(w, http.StatusOK, ".")
	})

	r.With(middleware.NoCache).Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		res.JSON(w, http.StatusOK, stats())
	})

	if enableDebug {
		info, ok := debug.ReadBuildInfo()
		if ok {
			s := []byte(version.FormatBuildInfo(info))

			r.Get("/debug/version", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("content-type", "text/plain")
				w.WriteHeader(http.StatusOK)
				_, _ = fmt.Fprintln(w, version.Print())
				_, _ = fmt.Fprintln(w)
				_, _ = w.Write(s)
			})
		} else {
			r.Get("/debug/version", func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprintln(w, version.Print())
			})
		}

		r.Mount("/debug", middleware.Profiler())
	}

	return r
}
