package ledger

import (
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// syncWrite makes every put durable before it returns, matching the file
// backend's append guarantee.
var syncWrite = &opt.WriteOptions{Sync: true}

// KVLedger keeps the checked set in a LevelDB database at
// <dir>/<identity>.ldb. Membership is a point lookup instead of an in-memory
// set, which suits exhaustive searches whose checked history outgrows what a
// flat file can reasonably be loaded from. Unlike the file backend, entries
// appended during the current run are visible to Contains; the Ledger
// contract permits that.
type KVLedger struct {
	db       *leveldb.DB
	loaded   int
	appended int
}

// OpenKV opens the LevelDB ledger for identity under dir, creating it on
// first use. The existing entry count is taken with a full key scan at open;
// it is informational only.
func OpenKV(dir, identity string) (*KVLedger, error) {
	db, err := leveldb.OpenFile(filepath.Join(dir, identity+kvSuffix), nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	loaded := 0
	iter := db.NewIterator(nil, nil)
	for iter.Next() {
		loaded++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, fmt.Errorf("scan ledger database: %w", err)
	}

	return &KVLedger{db: db, loaded: loaded}, nil
}

// Contains treats a read failure like ErrNotFound: the candidate is
// reported absent and simply gets verified again, which the append contract
// allows.
func (l *KVLedger) Contains(candidate string) bool {
	_, err := l.db.Get([]byte(candidate), nil)
	return err == nil
}

func (l *KVLedger) Append(candidate string) error {
	if err := l.db.Put([]byte(candidate), nil, syncWrite); err != nil {
		return fmt.Errorf("append to ledger database: %w", err)
	}
	l.appended++
	return nil
}

func (l *KVLedger) Count() int {
	return l.loaded + l.appended
}

func (l *KVLedger) Close() error {
	return l.db.Close()
}
