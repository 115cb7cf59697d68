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


package indexit

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/googleai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/build"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/search"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/storage/badger"
	"github.com/poiesic/indexit/vector"
)

// Pipeline ties an embedding provider, a checkpoint store and an index
// path together so builds, resumes and searches share one configuration.
type Pipeline struct {
	backend     *badger.Backend
	checkpoints storage.CheckpointStore
	embedder    ai.Embedder
	config      *build.Config
	indexPath   string
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig       *ai.Config
	buildConfig    *build.Config
	checkpointPath string
}

func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func WithBuildConfig(config *build.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.buildConfig = config
		}
	}
}

// WithCheckpointPath overrides where checkpoint state is kept. The
// default is the index path with a ".ckpt" suffix.
func WithCheckpointPath(path string) PipelineOption {
	return func(o *pipelineOptions) {
		if path != "" {
			o.checkpointPath = path
		}
	}
}

func NewPipeline(ctx context.Context, indexPath string, opts ...PipelineOption) (*Pipeline, error) {
	if indexPath == "" {
		return nil, build.ErrIndexPathRequired
	}

	// Apply options
	options := &pipelineOptions{
		aiConfig:       ai.DefaultConfig(), // Default if not provided
		buildConfig:    build.DefaultConfig(),
		checkpointPath: indexPath + ".ckpt",
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open checkpoint backend
	backend, err := badger.OpenBackend(options.checkpointPath, false)
	if err != nil {
		return nil, err
	}

	// Checkpoints are keyed per index so one backend can host several jobs
	checkpoints := badger.NewCheckpointStore(backend, filepath.Base(indexPath))

	// Create embedder for the configured provider
	embedder, err := newEmbedder(ctx, options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Pipeline{
		backend:     backend,
		checkpoints: checkpoints,
		embedder:    embedder,
		config:      options.buildConfig,
		indexPath:   indexPath,
		logger:      slog.Default(),
	}, nil
}

func newEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ai.ProviderGoogleAI:
		return googleai.NewEmbedder(ctx, config)
	default:
		return openai.NewEmbedder(config)
	}
}

// Build embeds fragments into a fresh index at the configured path.
func (p *Pipeline) Build(ctx context.Context, fragments []core.Fragment, opts ...build.Option) (*build.Report, error) {
	builder, err := p.newBuilder(opts...)
	if err != nil {
		return nil, err
	}
	return builder.Run(ctx, fragments, false)
}

// Resume continues an interrupted build from its saved checkpoint. The
// fragments must be the same corpus the interrupted build was given.
func (p *Pipeline) Resume(ctx context.Context, fragments []core.Fragment, opts ...build.Option) (*build.Report, error) {
	builder, err := p.newBuilder(opts...)
	if err != nil {
		return nil, err
	}
	return builder.Run(ctx, fragments, true)
}

func (p *Pipeline) newBuilder(opts ...build.Option) (*build.Builder, error) {
	return build.NewBuilder(p.embedder, p.checkpoints, p.config, p.indexPath, opts...)
}

// NewSearcher loads the built index artifacts and returns a searcher
// backed by the pipeline's embedder.
func (p *Pipeline) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	idx, err := vector.Load(p.indexPath)
	if err != nil {
		return nil, err
	}
	return search.NewSearcher(idx, p.embedder, opts...)
}

func (p *Pipeline) Checkpoints() storage.CheckpointStore {
	return p.checkpoints
}

func (p *Pipeline) Close() error {
	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing checkpoint storage", "err", err)
		return err
	}
	return nil
}
