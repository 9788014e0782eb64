package index

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/starford/jot/internal/apperr"
)

// DB is the badger-backed note index.
type DB struct {
	kv *badger.DB
}

// Open opens (or creates) the index directory at dir. A directory held by
// another jot process fails with apperr.ErrIndexLocked.
func Open(dir string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{logger.With(slog.String("component", "badger"))}).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(8 << 20).
		WithSyncWrites(true)

	kv, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, fmt.Errorf("index: open %s: %w", dir, apperr.ErrIndexLocked)
		}
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	return &DB{kv: kv}, nil
}

// Close flushes and releases the index directory.
func (db *DB) Close() error {
	if err := db.kv.Close(); err != nil {
		return fmt.Errorf("index: close: %w", err)
	}
	return nil
}

// badgerLogger routes badger's internal logging into slog at debug level;
// only errors and warnings keep their severity.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
