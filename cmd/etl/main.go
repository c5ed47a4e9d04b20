package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"sakilaetl/internal/config"
	"sakilaetl/internal/metrics"
	"sakilaetl/internal/metrics/datadog"
	"sakilaetl/internal/metrics/prompush"
	"sakilaetl/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "sakilaetl/internal/storage/all"
)

// main is the entry point for the summary job binary. It loads the
// pipeline config, optionally initializes a metrics backend, and runs
// the job once.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		logFile           string
		validate          bool
		promptCreds       bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sakila.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none); falls back to env METRICS_BACKEND, then none")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL; falls back to env PUSHGATEWAY_URL, then http://localhost:9091")
	flag.StringVar(&logFile, "log-file", "sakilaetl.log", "tee logs to this file in addition to stderr (empty disables)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&promptCreds, "prompt-credentials", false, "prompt for database user and password instead of using the config DSN")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatalf("open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Validate pipeline config.
	issues := config.Validate(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	if promptCreds {
		dsn, err := promptDSN(p.Storage.Kind, p.Storage.DB.DSN)
		if err != nil {
			fatalf("read credentials: %v", err)
		}
		p.Storage.DB.DSN = dsn
	}

	// Decide metrics backend: flag → env → default.
	backendName := lookup(metricsBackendFlg, "METRICS_BACKEND", "none")
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		gwURL := lookup(pushGatewayURLFlg, "PUSHGATEWAY_URL", "http://localhost:9091")

		jobName := p.Job
		if jobName == "" {
			jobName = "sakila_summary"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		addr := lookup("", "DOGSTATSD_ADDR", "127.0.0.1:8125")
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "etl."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v, backend=%v", addr, backendName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s storage=%s tables=%d queries=%d",
			p.Job, p.Storage.Kind, len(p.Tables), len(p.Queries))
	}

	sum, err := pipeline.NewRunner(p).Run(ctx)
	if err != nil {
		for _, f := range sum.Failed {
			log.Printf("failed: spec=%s err=%v", f.Name, f.Err)
		}
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// promptDSN asks for a user name and password on the terminal and
// rewrites the userinfo portion of the configured DSN. Only URL-form
// DSNs (sqlserver://, postgres://) carry credentials this way.
func promptDSN(kind, dsn string) (string, error) {
	fmt.Fprint(os.Stderr, "database user: ")
	var user string
	if _, err := fmt.Fscanln(os.Stdin, &user); err != nil {
		return "", fmt.Errorf("read user: %w", err)
	}
	fmt.Fprint(os.Stderr, "database password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if !strings.Contains(dsn, "://") {
		return "", fmt.Errorf("storage kind %q DSN is not URL-form; set credentials in the config", kind)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	u.User = url.UserPassword(user, string(pw))
	return u.String(), nil
}

// lookup resolves a setting from its flag value, then the named environment
// variable, then the default.
func lookup(flagVal, envVar, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return def
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
