// Copyright 2025 Poiesic Systems
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
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/indexit"
	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/googleai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/build"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/search"
	"github.com/poiesic/indexit/storage/badger"
	"github.com/poiesic/indexit/vector"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "indexit",
		Usage: "Resilient embedding index builder for subtitle corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build a fresh index from a corpus directory",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "corpus",
						Aliases: []string{"c"},
						Usage:   "Directory holding .srt/.txt/.md corpus files (required)",
					},
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Base path for the index artifacts (required)",
					},
					&cli.StringFlag{
						Name:  "checkpoint-db",
						Usage: "Path to the checkpoint database directory (defaults to <index>.ckpt)",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (openai, googleai)",
						Value: ai.ProviderOpenAI,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Provider API key (falls back to OPENAI_API_KEY or GOOGLE_API_KEY)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of fragments to embed in each request",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "requests-per-window",
						Usage: "Maximum embedding requests inside the rate-limit window",
						Value: 60,
					},
					&cli.DurationFlag{
						Name:  "window",
						Usage: "Rate-limit measurement window",
						Value: time.Minute,
					},
					&cli.IntFlag{
						Name:  "checkpoint-every",
						Usage: "Save a checkpoint every N completed batches",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for transient embedding failures",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "max-retry-delay",
						Usage: "Upper bound on the backoff delay",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum fragment size in characters",
						Value: ingestion.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Characters of overlap between consecutive fragments",
						Value: ingestion.DefaultChunkOverlap,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Back up an existing index and rebuild it",
					},
				},
			},
			{
				Name:   "resume",
				Usage:  "Resume an interrupted build from its checkpoint",
				Action: resumeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "corpus",
						Aliases: []string{"c"},
						Usage:   "Directory holding .srt/.txt/.md corpus files (required, must match the interrupted build)",
					},
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Base path for the index artifacts (required)",
					},
					&cli.StringFlag{
						Name:  "checkpoint-db",
						Usage: "Path to the checkpoint database directory (defaults to <index>.ckpt)",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (openai, googleai)",
						Value: ai.ProviderOpenAI,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Provider API key (falls back to OPENAI_API_KEY or GOOGLE_API_KEY)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of fragments to embed in each request",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "requests-per-window",
						Usage: "Maximum embedding requests inside the rate-limit window",
						Value: 60,
					},
					&cli.DurationFlag{
						Name:  "window",
						Usage: "Rate-limit measurement window",
						Value: time.Minute,
					},
					&cli.IntFlag{
						Name:  "checkpoint-every",
						Usage: "Save a checkpoint every N completed batches",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for transient embedding failures",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "max-retry-delay",
						Usage: "Upper bound on the backoff delay",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum fragment size in characters",
						Value: ingestion.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Characters of overlap between consecutive fragments",
						Value: ingestion.DefaultChunkOverlap,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Embed a query and print the closest fragments",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Base path for the index artifacts (required)",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (openai, googleai)",
						Value: ai.ProviderOpenAI,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Provider API key (falls back to OPENAI_API_KEY or GOOGLE_API_KEY)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Maximum number of hits to print",
						Value:   5,
					},
				},
			},
			{
				Name:   "inspect",
				Usage:  "Print checkpoint state and index artifact stats",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Base path for the index artifacts (required)",
					},
					&cli.StringFlag{
						Name:  "checkpoint-db",
						Usage: "Path to the checkpoint database directory (defaults to <index>.ckpt)",
					},
				},
			},
		},
	}
}

func buildCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Validate flags
	corpusDir := c.String("corpus")
	if corpusDir == "" {
		return cli.Exit("corpus directory is required", 2)
	}
	indexPath := c.String("index")
	if indexPath == "" {
		return cli.Exit("index path is required", 2)
	}
	info, err := os.Stat(corpusDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("corpus directory: %v", err), 2)
	}
	if !info.IsDir() {
		return cli.Exit(fmt.Sprintf("corpus path %s is not a directory", corpusDir), 2)
	}

	// Refuse to clobber an existing index unless forced
	exists, err := vector.Exists(indexPath)
	if err != nil {
		return fmt.Errorf("checking index artifacts: %w", err)
	}
	if exists {
		if !c.Bool("force") {
			return cli.Exit(fmt.Sprintf("index already exists at %s: pass --force to back it up and rebuild, or run 'indexit resume'", indexPath), 2)
		}
		backupBase, err := vector.Backup(indexPath)
		if err != nil {
			return fmt.Errorf("backing up index: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Existing index backed up to %s\n", backupBase)
	}

	// Create corpus loader
	loader, err := ingestion.NewLoader(ingestion.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")))
	if err != nil {
		return cli.Exit(fmt.Sprintf("corpus loader: %v", err), 2)
	}
	defer loader.Release()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(apiKey(c)),
	)

	// Create build config
	buildConfig := &build.Config{
		BatchSize:         c.Int("batch-size"),
		RequestsPerWindow: c.Int("requests-per-window"),
		Window:            c.Duration("window"),
		CheckpointEvery:   c.Int("checkpoint-every"),
		MaxRetries:        c.Int("max-retries"),
		BaseBackoff:       c.Duration("retry-delay"),
		MaxBackoff:        c.Duration("max-retry-delay"),
	}
	if err := buildConfig.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid build configuration: %v", err), 2)
	}

	// Create pipeline
	pipeline, err := indexit.NewPipeline(ctx, indexPath,
		indexit.WithAIConfig(aiConfig),
		indexit.WithBuildConfig(buildConfig),
		indexit.WithCheckpointPath(c.String("checkpoint-db")),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 2)
	}
	defer pipeline.Close()

	// Load the corpus
	fragments, err := loader.Load(ctx, corpusDir)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Corpus: %s (%d fragments)\n", corpusDir, len(fragments))
	fmt.Fprintf(os.Stderr, "Index: %s\n", indexPath)
	fmt.Fprintf(os.Stderr, "Provider: %s\n", aiConfig.Provider)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.Model)
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Build(ctx, fragments, build.WithProgress(os.Stderr))
	return finishRun(report, err)
}

func resumeCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Validate flags
	corpusDir := c.String("corpus")
	if corpusDir == "" {
		return cli.Exit("corpus directory is required", 2)
	}
	indexPath := c.String("index")
	if indexPath == "" {
		return cli.Exit("index path is required", 2)
	}
	info, err := os.Stat(corpusDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("corpus directory: %v", err), 2)
	}
	if !info.IsDir() {
		return cli.Exit(fmt.Sprintf("corpus path %s is not a directory", corpusDir), 2)
	}

	// Create corpus loader
	loader, err := ingestion.NewLoader(ingestion.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")))
	if err != nil {
		return cli.Exit(fmt.Sprintf("corpus loader: %v", err), 2)
	}
	defer loader.Release()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(apiKey(c)),
	)

	// Create build config
	buildConfig := &build.Config{
		BatchSize:         c.Int("batch-size"),
		RequestsPerWindow: c.Int("requests-per-window"),
		Window:            c.Duration("window"),
		CheckpointEvery:   c.Int("checkpoint-every"),
		MaxRetries:        c.Int("max-retries"),
		BaseBackoff:       c.Duration("retry-delay"),
		MaxBackoff:        c.Duration("max-retry-delay"),
	}
	if err := buildConfig.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid build configuration: %v", err), 2)
	}

	// Create pipeline
	pipeline, err := indexit.NewPipeline(ctx, indexPath,
		indexit.WithAIConfig(aiConfig),
		indexit.WithBuildConfig(buildConfig),
		indexit.WithCheckpointPath(c.String("checkpoint-db")),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 2)
	}
	defer pipeline.Close()

	// Load the corpus; resume verifies it against the checkpoint
	fragments, err := loader.Load(ctx, corpusDir)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Corpus: %s (%d fragments)\n", corpusDir, len(fragments))
	fmt.Fprintf(os.Stderr, "Index: %s\n", indexPath)
	fmt.Fprintf(os.Stderr, "Provider: %s\n", aiConfig.Provider)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.Model)
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Resume(ctx, fragments, build.WithProgress(os.Stderr))
	return finishRun(report, err)
}

// finishRun maps a build outcome onto the process exit contract: 0 for a
// verified index, 130 for an interrupt, 2 for resume misconfiguration, 1
// for anything else. Emergency artifacts are announced before exiting.
func finishRun(report *build.Report, err error) error {
	if report != nil && report.EmergencyPath != "" {
		fmt.Fprintf(os.Stderr, "Partial index saved to %s\n", report.EmergencyPath)
	}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return cli.Exit("interrupted: run 'indexit resume' to continue", 130)
	case errors.Is(err, core.ErrNoCheckpoint):
		return cli.Exit(fmt.Sprintf("nothing to resume: %v", err), 2)
	case errors.Is(err, core.ErrCheckpointMismatch):
		return cli.Exit(fmt.Sprintf("refusing to resume: %v", err), 2)
	default:
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d fragments in %d batches (%s)\n",
		report.VectorsWritten, report.BatchesCompleted, report.Elapsed.Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	indexPath := c.String("index")
	if indexPath == "" {
		return cli.Exit("index path is required", 2)
	}
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return cli.Exit("query text is required", 2)
	}
	limit := c.Int("limit")
	if limit <= 0 {
		return cli.Exit("limit must be greater than 0", 2)
	}

	// Load index artifacts
	idx, err := vector.Load(indexPath)
	if err != nil {
		if errors.Is(err, vector.ErrIndexNotFound) {
			return cli.Exit(fmt.Sprintf("no index at %s: run 'indexit build' first", indexPath), 2)
		}
		return fmt.Errorf("loading index: %w", err)
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(apiKey(c)),
	)
	if err := aiConfig.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid AI configuration: %v", err), 2)
	}

	// Create embedder
	var embedder ai.Embedder
	switch aiConfig.Provider {
	case ai.ProviderGoogleAI:
		embedder, err = googleai.NewEmbedder(ctx, aiConfig)
	default:
		embedder, err = openai.NewEmbedder(aiConfig)
	}
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	searcher, err := search.NewSearcher(idx, embedder)
	if err != nil {
		return fmt.Errorf("creating searcher: %w", err)
	}

	hits, err := searcher.FindSimilar(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Found %d hits\n", len(hits))
	for i, hit := range hits {
		if hit.Fragment.End > 0 {
			fmt.Fprintf(w, "%d: [%.3f] %s %s --> %s\n", i+1, hit.Score, hit.Fragment.Source,
				formatTimestamp(hit.Fragment.Start), formatTimestamp(hit.Fragment.End))
		} else {
			fmt.Fprintf(w, "%d: [%.3f] %s\n", i+1, hit.Score, hit.Fragment.Source)
		}
		fmt.Fprintf(w, "   %s\n", hit.Fragment.Text)
	}
	return nil
}

func inspectCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	indexPath := c.String("index")
	if indexPath == "" {
		return cli.Exit("index path is required", 2)
	}
	checkpointPath := c.String("checkpoint-db")
	if checkpointPath == "" {
		checkpointPath = indexPath + ".ckpt"
	}

	w := c.App.Writer

	// Index artifacts
	fmt.Fprintf(w, "Index: %s\n", indexPath)
	exists, err := vector.Exists(indexPath)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  error: %v\n", err)
	case !exists:
		fmt.Fprintln(w, "  not built")
	default:
		idx, err := vector.Load(indexPath)
		if err != nil {
			return fmt.Errorf("loading index: %w", err)
		}
		fmt.Fprintf(w, "  vectors: %d\n", idx.Len())
		fmt.Fprintf(w, "  dimension: %d\n", idx.Dimension())
	}

	// Checkpoint state; stat first so inspection never creates the directory
	fmt.Fprintf(w, "Checkpoint: %s\n", checkpointPath)
	if _, err := os.Stat(checkpointPath); err != nil {
		fmt.Fprintln(w, "  none")
		return nil
	}

	backend, err := badger.OpenBackend(checkpointPath, false)
	if err != nil {
		return fmt.Errorf("opening checkpoint storage: %w", err)
	}
	defer backend.Close()

	checkpoint, err := badger.NewCheckpointStore(backend, filepath.Base(indexPath)).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint == nil {
		fmt.Fprintln(w, "  none")
		return nil
	}

	fmt.Fprintf(w, "  last completed batch: %d\n", checkpoint.LastCompletedBatch)
	fmt.Fprintf(w, "  vectors written: %d\n", checkpoint.VectorsWritten)
	fmt.Fprintf(w, "  partial index: %s\n", checkpoint.PartialIndexPath)
	fmt.Fprintf(w, "  updated: %s\n", checkpoint.UpdatedAt.Format(time.RFC3339))

	if checkpoint.PartialIndexPath != "" && checkpoint.PartialIndexPath != indexPath {
		if ok, err := vector.Exists(checkpoint.PartialIndexPath); err == nil && ok {
			if partial, err := vector.Load(checkpoint.PartialIndexPath); err == nil {
				fmt.Fprintf(w, "  partial vectors: %d\n", partial.Len())
			}
		}
	}
	return nil
}

// apiKey resolves the provider API key from the flag or the conventional
// environment variables (a .env file is loaded in the Before hook).
func apiKey(c *cli.Context) string {
	if key := c.String("api-key"); key != "" {
		return key
	}
	if c.String("provider") == ai.ProviderGoogleAI {
		return os.Getenv("GOOGLE_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// formatTimestamp renders a fragment offset the way SRT timelines do.
func formatTimestamp(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	ms := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func setup(c *cli.Context) error {
	// Pick up API keys from .env when present; a missing file is fine
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
