// Copyright 2026 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/calyptra/docstream"
	"github.com/calyptra/docstream/ai"
	natsqueue "github.com/calyptra/docstream/queue/nats"
	"github.com/calyptra/docstream/storage/minio"
	"github.com/calyptra/docstream/storage/postgres"
	"github.com/calyptra/docstream/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docstream-worker",
		Usage: "Document processing worker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL",
				Value:   "nats://localhost:4222",
				EnvVars: []string{"NATS_URL"},
			},
			&cli.StringFlag{
				Name:    "nats-user",
				Usage:   "NATS username",
				EnvVars: []string{"NATS_USER"},
			},
			&cli.StringFlag{
				Name:    "nats-password",
				Usage:   "NATS password",
				EnvVars: []string{"NATS_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "postgres-host",
				Usage:   "Postgres host",
				Value:   "localhost",
				EnvVars: []string{"POSTGRES_HOST"},
			},
			&cli.IntFlag{
				Name:    "postgres-port",
				Usage:   "Postgres port",
				Value:   5432,
				EnvVars: []string{"POSTGRES_PORT"},
			},
			&cli.StringFlag{
				Name:    "postgres-db",
				Usage:   "Postgres database name",
				Value:   "documents",
				EnvVars: []string{"POSTGRES_DB"},
			},
			&cli.StringFlag{
				Name:    "postgres-user",
				Usage:   "Postgres user",
				Value:   "postgres",
				EnvVars: []string{"POSTGRES_USER"},
			},
			&cli.StringFlag{
				Name:    "postgres-password",
				Usage:   "Postgres password",
				EnvVars: []string{"POSTGRES_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "minio-endpoint",
				Usage:   "MinIO endpoint (host:port)",
				Value:   "localhost:9000",
				EnvVars: []string{"MINIO_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "minio-access-key",
				Usage:   "MinIO access key",
				EnvVars: []string{"MINIO_ACCESS_KEY"},
			},
			&cli.StringFlag{
				Name:    "minio-secret-key",
				Usage:   "MinIO secret key",
				EnvVars: []string{"MINIO_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:    "minio-bucket",
				Usage:   "MinIO bucket for raw documents",
				Value:   "documents",
				EnvVars: []string{"MINIO_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "qdrant-url",
				Usage:   "Qdrant base URL",
				Value:   "http://localhost:6333",
				EnvVars: []string{"QDRANT_URL"},
			},
			&cli.StringFlag{
				Name:    "qdrant-collection",
				Usage:   "Qdrant collection name",
				Value:   "documents",
				EnvVars: []string{"QDRANT_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "all-minilm",
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
			&cli.IntFlag{
				Name:    "embedding-dimension",
				Usage:   "Embedding vector length",
				Value:   384,
				EnvVars: []string{"EMBEDDING_DIMENSION"},
			},
		},
		Before: setupLogger,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedCfg := ai.DefaultConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("embedding-dimension")),
	)
	if err := embedCfg.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	cfg := docstream.Config{
		NATS: natsqueue.Config{
			URL:      c.String("nats-url"),
			User:     c.String("nats-user"),
			Password: c.String("nats-password"),
		},
		Postgres: postgres.Config{
			Host:     c.String("postgres-host"),
			Port:     c.Int("postgres-port"),
			Database: c.String("postgres-db"),
			User:     c.String("postgres-user"),
			Password: c.String("postgres-password"),
		},
		Minio: minio.Config{
			Endpoint:  c.String("minio-endpoint"),
			AccessKey: c.String("minio-access-key"),
			SecretKey: c.String("minio-secret-key"),
			Bucket:    c.String("minio-bucket"),
		},
		Qdrant: qdrant.Config{
			URL:        c.String("qdrant-url"),
			Collection: c.String("qdrant-collection"),
			Dimension:  c.Int("embedding-dimension"),
		},
	}

	system, err := docstream.Connect(ctx, cfg,
		docstream.WithAIConfig(embedCfg),
		docstream.WithoutResponseCache())
	if err != nil {
		return err
	}
	defer system.Close()

	w, err := system.NewWorker()
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	slog.Info("worker consuming tasks")

	<-ctx.Done()
	slog.Info("shutting down")
	return w.Stop()
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
