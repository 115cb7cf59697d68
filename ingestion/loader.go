package ingestion

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/indexit/core"
)

// Loader reads a corpus directory into fragments.
type Loader struct {
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the worker pool size for concurrent file parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		if l.pool != nil {
			l.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithChunking sets the fragment size bound and overlap, in characters.
// Default is 500/100.
func WithChunking(size, overlap int) Option {
	return func(l *Loader) error {
		if err := validateChunking(size, overlap); err != nil {
			return err
		}
		l.chunkSize = size
		l.chunkOverlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a corpus loader.
func NewLoader(opts ...Option) (*Loader, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// Load walks root and parses every supported file: .srt as subtitle cues,
// .txt and .md as plain text. Files are parsed concurrently, but the
// result is deterministic: files in lexical path order, fragments in file
// position order, Seq assigned globally over that order. The first parse
// error, in path order, fails the whole load.
func (l *Loader) Load(ctx context.Context, root string) ([]core.Fragment, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".srt", ".txt", ".md":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus %s: %w", root, err)
	}

	results := make([][]core.Fragment, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		if submitErr := l.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = l.parseFile(path)
		}); submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", paths[i], err)
		}
	}

	var fragments []core.Fragment
	for _, batch := range results {
		fragments = append(fragments, batch...)
	}
	for i := range fragments {
		fragments[i].Seq = int64(i)
	}

	l.logger.Info("corpus loaded", "files", len(paths), "fragments", len(fragments))
	return fragments, nil
}

// parseFile dispatches on the file extension. Source on the returned
// fragments is the path as walked.
func (l *Loader) parseFile(path string) ([]core.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".srt" {
		cues, err := ParseSRT(f)
		if err != nil {
			return nil, err
		}
		return GroupCues(path, cues, l.chunkSize, l.chunkOverlap)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return SplitText(path, string(data), l.chunkSize, l.chunkOverlap)
}

// Release returns the worker pool resources. The loader must not be used
// after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
