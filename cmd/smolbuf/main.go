// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trim21/errgo"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"smolbuf"
	"smolbuf/internal/bench"
	"smolbuf/internal/config"
	"smolbuf/internal/intern"
	"smolbuf/internal/metrics"
	"smolbuf/internal/report"
	"smolbuf/internal/version"
	"smolbuf/internal/web"
)

func main() {
	setupFlagsAndEnvParser()

	if viper.GetBool("version") {
		fmt.Println(version.Print())
		return
	}

	setupLogger()

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug().Msgf(format, args...)
	})); err != nil {
		log.Warn().Err(err).Msg("failed to set GOMAXPROCS automatically, set it manually if you are running with cgroup")
	}

	cfg := mustParseConfig()

	keys := mustLoadKeys()
	if len(keys) == 0 {
		errExit("no keys to build, pass corpus files or --random N")
	}

	log.Info().Int("keys", len(keys)).Int("class", cfg.Bench.Class).Bool("intern", cfg.Bench.Intern).Msg("start")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	progress := metrics.NewProgress()
	internStats := internStatsFunc(cfg.Bench.Class)

	var server *http.Server
	if cfg.Metrics.Listen != "" {
		reg := metrics.NewRegistry(metrics.Sources{
			Heap:     smolbuf.HeapStats,
			Interner: internStats,
			Progress: progress,
		})

		server = &http.Server{
			Addr: cfg.Metrics.Listen,
			Handler: web.New(reg, func() web.Stats {
				return web.Stats{Arena: smolbuf.HeapStats(), Intern: internStats()}
			}, viper.GetBool("debug")),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	var summary report.Summary
	g.Go(func() error {
		res, err := bench.Run(ctx, bench.Options{
			Class:   cfg.Bench.Class,
			Intern:  cfg.Bench.Intern,
			Workers: cfg.Bench.Workers,
		}, keys, progress)
		if err != nil {
			return err
		}

		summary = report.Summarize(cfg.Bench.Class, res, cfg.Bench.TopK)

		if server != nil && viper.GetBool("serve") {
			log.Info().Str("address", "http://"+server.Addr).Msg("load done, serving metrics until interrupted")
			<-ctx.Done()
			return nil
		}

		// ends the metrics server.
		stop()

		return nil
	})

	if server != nil {
		g.Go(func() error {
			log.Info().Str("address", "http://"+server.Addr).Msg("metrics server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errgo.Wrap(err, "metrics server")
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			errExit("interrupted")
		}

		errExit("bench failed:", err)
	}

	if err := report.Write(os.Stdout, summary); err != nil {
		errExit("failed to write report:", err)
	}
}

func internStatsFunc(class int) func() intern.Stats {
	if class == 24 {
		return smolbuf.DefaultInterner24().Stats
	}

	return smolbuf.DefaultInterner16().Stats
}

func setupFlagsAndEnvParser() {
	pflag.String("config-file", "", "path to a TOML config file")

	pflag.Int("class", 16, "value size in bytes, 16 or 24")
	pflag.Bool("intern", false, "build values through the interner")
	pflag.Int("workers", 0, "number of worker goroutines (default GOMAXPROCS)")
	pflag.Int("top", 10, "number of repeated keys to list")
	pflag.Int("random", 0, "generate N random keys instead of reading corpus files")

	pflag.String("metrics", "", "serve prometheus metrics on this address, for example 127.0.0.1:9100")
	pflag.Bool("serve", false, "keep serving metrics after the load until interrupted")

	pflag.Bool("log-json", false, "log as json format")
	pflag.String("log-level", "warn", "log level")
	pflag.String("log-file", "", "also write log to this file, rotated")
	pflag.Bool("no-color", false, "disable colored output")

	pflag.Bool("debug", false, "enable debug routes on the metrics server")
	pflag.Bool("version", false, "print version and exit")

	// this avoids 'pflag: help requested' error when calling for help message.
	if slices.Contains(os.Args[1:], "--help") || slices.Contains(os.Args[1:], "-h") {
		_, _ = fmt.Fprintln(os.Stderr, "usage: smolbuf [flags] [corpus...]")
		pflag.PrintDefaults()
		_, _ = fmt.Fprintln(os.Stderr, "\nNote: flags and SMOLBUF_* env override the config file, but won't change it.")
		os.Exit(0)
		return
	}

	pflag.Parse()

	viper.SetEnvPrefix("SMOLBUF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	lo.Must0(viper.BindPFlags(pflag.CommandLine), "failed to parse combine argument with env")
}

func errExit(msg ...any) {
	_, _ = fmt.Fprintln(os.Stderr, msg...)
	os.Exit(1)
}

func parseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}

	errExit(fmt.Sprintf("unknown log level %q, only trace/debug/info/warn/error is allowed", s))

	return zerolog.NoLevel
}

func setupLogger() {
	jsonLog := viper.GetBool("log-json")
	logFile := viper.GetString("log-file")
	logLevel := parseLogLevel(viper.GetString("log-level"))

	if viper.GetBool("no-color") {
		color.NoColor = true
	}

	var w io.Writer = os.Stderr

	if !jsonLog {
		w = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}
	}

	if logFile != "" {
		rotation := &lumberjack.Logger{
			Filename:   filepath.Clean(logFile),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, //days
		}
		w = zerolog.MultiLevelWriter(rotation, w)
	}

	log.Logger = log.Output(w).Level(logLevel)
}

// mustParseConfig loads the config file, then applies flags and env that were set explicitly.
func mustParseConfig() config.Config {
	cfg, err := config.LoadFromFile(viper.GetString("config-file"))
	if err != nil {
		errExit("failed to load config", err)
	}

	if viper.IsSet("class") {
		cfg.Bench.Class = viper.GetInt("class")
	}
	if viper.IsSet("intern") {
		cfg.Bench.Intern = viper.GetBool("intern")
	}
	if w := viper.GetInt("workers"); w > 0 {
		cfg.Bench.Workers = w
	}
	if viper.IsSet("top") {
		cfg.Bench.TopK = viper.GetInt("top")
	}
	if addr := viper.GetString("metrics"); addr != "" {
		cfg.Metrics.Listen = addr
	}

	if err := cfg.Validate(); err != nil {
		errExit(err)
	}

	return cfg
}

func mustLoadKeys() []string {
	if n := viper.GetInt("random"); n > 0 {
		return bench.RandomKeys(n)
	}

	keys, err := bench.LoadFiles(pflag.Args())
	if err != nil {
		errExit("failed to load corpus:", err)
	}

	return keys
}
