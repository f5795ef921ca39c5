package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/yourorg/settlement-switch/internal/model"
)

// KEY orders receipts by execution time; the zero-padded timestamp keeps
// lexical and chronological order equal
var KEY = "transfer:%020d:%s"

const keyPrefix = "transfer:"

// LevelDB stores receipts as JSON values under time-ordered keys
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) the database at path
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "levelDB.OpenFile fail")
	}
	return &LevelDB{db: db}, nil
}

// Record implements Journal
func (l *LevelDB) Record(_ context.Context, r model.Receipt) error {
	value, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "receipt marshal fail")
	}
	key := fmt.Sprintf(KEY, r.ExecutedAt.UnixNano(), r.ID)
	return errors.Wrapf(l.db.Put([]byte(key), value, nil), "levelDB.Put %s fail", key)
}

// List implements Journal
func (l *LevelDB) List(_ context.Context, limit int) ([]model.Receipt, error) {
	limit = normalizeLimit(limit)
	iter := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer iter.Release()

	var receipts []model.Receipt
	for ok := iter.Last(); ok && len(receipts) < limit; ok = iter.Prev() {
		var r model.Receipt
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, errors.Wrapf(err, "receipt %s decode fail", iter.Key())
		}
		receipts = append(receipts, r)
	}
	return receipts, errors.Wrap(iter.Error(), "levelDB iterate fail")
}

// Close implements Journal
func (l *LevelDB) Close() error {
	return l.db.Close()
}
