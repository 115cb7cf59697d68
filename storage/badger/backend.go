package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend wraps the BadgerDB instance that holds build checkpoints.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLogger routes Badger's internal logging through slog.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Badger reports routine compaction and value-log activity at info level;
// that is debug detail here.
func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBackend opens the checkpoint database at dir, creating the directory
// if it does not exist. With inMemory set the database lives entirely in
// memory and dir is ignored.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	logger := slog.Default()

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint database: %w", err)
	}

	logger.Debug("checkpoint database opened",
		slog.String("dir", dir),
		slog.Bool("in_memory", inMemory))

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

// ensureDir creates dir if it is absent and rejects paths held by regular
// files.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(dir, 0755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close closes the underlying database, flushing pending writes to disk.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true once Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a Badger transaction. Write transactions must be
// committed by fn itself; the deferred discard is a no-op after a commit
// and rolls everything back otherwise.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
