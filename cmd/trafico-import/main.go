// Command trafico-import copies the traffic dataset into the SQLite store
// used by DATA_BACKEND=sqlite.
//
// Usage:
//
//	trafico-import [-db path] [-from csv|sheets|s3|memory] [file.csv ...]
//
// With file arguments every file is read concurrently and the rows are
// stored in argument order. Without them the rows come from the backend
// named by -from, configured through the usual environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"trafico/internal/backend"
	"trafico/internal/cli"
	"trafico/internal/config"
	"trafico/internal/sources/csvfile"
	"trafico/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database to write")
	from := flag.String("from", "", "backend to import from when no files are given (default DATA_BACKEND)")
	concurrency := flag.Int("concurrency", 4, "files read in parallel")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	flag.Parse()

	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var srcs []worker.Source
	if flag.NArg() > 0 {
		for _, path := range flag.Args() {
			srcs = append(srcs, worker.Source{Name: filepath.Base(path), Reader: csvfile.New(path)})
		}
	} else {
		if *from != "" {
			cfg.DataBackend = *from
		}
		if cfg.DataBackend == config.BackendSQLite {
			logger.Error("Refusing to import from the sqlite backend into itself; pass files or -from")
			os.Exit(2)
		}
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			logger.Error("Invalid backend configuration", "error", err)
			os.Exit(2)
		}
		be, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
		if err != nil {
			logger.Error("Failed to initialize source backend", "error", err, "backend", cfg.DataBackend)
			os.Exit(1)
		}
		defer be.Close()
		srcs = append(srcs, worker.Source{Name: cfg.DataBackend, Reader: be.Reader})
	}

	repo := cli.InitSQLite(logger, *dbPath)
	defer repo.Close()

	res, err := worker.NewImportWorker(repo, repo, nil, *concurrency).Import(ctx, srcs)
	if err != nil {
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("imported %d rows (%d valid, %d dropped) into %s in %s [run %s]\n",
		res.Rows, res.Valid, res.Dropped, *dbPath, res.Duration.Round(time.Millisecond), res.RunID)
}
