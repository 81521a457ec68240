package imagecache

import (
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// DiskStore is a badger-backed byte store keyed by image URL, sitting under
// the session memo so fetched images survive restarts.
type DiskStore struct {
	db *badger.DB
}

// OpenDiskStore creates or opens the image store at dir.
func OpenDiskStore(dir string) (*DiskStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.ZSTDCompressionLevel = 2
	opts.NumLevelZeroTables = 1
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &DiskStore{db: db}, nil
}

// OpenMemoryStore opens a store that lives entirely in memory. Used by tests
// and by sessions that want write-through semantics without a data dir.
func OpenMemoryStore() (*DiskStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		return nil, err
	}

	return &DiskStore{db: db}, nil
}

func (s *DiskStore) Get(url string) (out []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(url))
		if err != nil {
			return err
		}

		out, err = item.ValueCopy(nil)
		return err
	})

	return
}

// Puts image bytes into the store at the URL key.
// Failures are logged, not returned -- the disk layer is an optimization and
// must never fail a load that already has the bytes in hand.
func (s *DiskStore) Put(url string, data []byte) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(url), data)
	})
	if err != nil {
		log.Warnf("image store: failed to persist %s: %v", url, err)
	}
}

func (s *DiskStore) Close() error {
	return s.db.Close()
}
