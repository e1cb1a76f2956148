package repositories

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix     = "user:"
	GroupKeyPrefix    = "group:"
	PostKeyPrefix     = "post:"
	CommentKeyPrefix  = "comment:"
	FollowKeyPrefix   = "follow:"
	FollowerKeyPrefix = "follower:"

	// Secondary indexes
	UsernameIndexPrefix   = "idx:user:username:"
	GroupSlugIndexPrefix  = "idx:group:slug:"
	GroupTitleIndexPrefix = "idx:group:title:"
	CommentIndexPrefix    = "idx:comment:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	FollowSeqKey  = "seq:follow"
)

func entityKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, id))
}

func indexKey(prefix, value string) []byte {
	return []byte(prefix + value)
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func followKey(userID, authorID int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", FollowKeyPrefix, userID, authorID))
}

func followerKey(authorID, userID int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", FollowerKeyPrefix, authorID, userID))
}

// idBandwidth is how many IDs a sequence leases per write. IDs leased
// but unused when the process stops are skipped.
const idBandwidth = 100

// maxConflictRetries bounds how often a transaction is replayed after
// badger.ErrConflict.
const maxConflictRetries = 20

// idSequence hands out increasing IDs starting at 1 from a badger sequence.
type idSequence struct {
	db  *badger.DB
	key []byte
	mu  sync.Mutex
	seq *badger.Sequence
}

func newIDSequence(db *badger.DB, key string) *idSequence {
	return &idSequence{db: db, key: []byte(key)}
}

// Next returns the next unused ID.
func (s *idSequence) Next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		err := retryConflict(func() error {
			seq, err := s.db.GetSequence(s.key, idBandwidth)
			if err != nil {
				return err
			}
			s.seq = seq
			return nil
		})
		if err != nil {
			return 0, errors.Wrapf(err, "open sequence %s", s.key)
		}
	}

	var n uint64
	err := retryConflict(func() error {
		var err error
		n, err = s.seq.Next()
		return err
	})
	if err != nil {
		return 0, errors.Wrapf(err, "next id from %s", s.key)
	}
	return int(n) + 1, nil
}

// retryConflict calls fn again while it fails with badger.ErrConflict.
func retryConflict(fn func() error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = fn()
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// update runs fn in a read-write transaction, replaying it when a
// concurrent commit invalidated what it read. fn must be safe to rerun.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	return retryConflict(func() error {
		return db.Update(fn)
	})
}

func encodeID(id int) []byte {
	return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

func decodeID(val []byte) int {
	if len(val) < 4 {
		return 0
	}
	return int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

// getEntity loads key into entity, translating a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity marshals entity and stores it under key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// lookupIndex resolves a secondary index entry to the ID it points at.
func lookupIndex(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id = decodeID(val)
		return nil
	})
	return id, err
}

// claimIndex writes a unique index entry, failing with ErrDuplicate when the
// value is already taken by another ID.
func claimIndex(txn *badger.Txn, key []byte, id int) error {
	existing, err := lookupIndex(txn, key)
	switch {
	case err == nil && existing != id:
		return errors.Wrapf(ErrDuplicate, "%s", key)
	case err != nil && err != ErrNotFound:
		return err
	}
	return txn.Set(key, encodeID(id))
}

// keysWithPrefix collects every key under prefix. Keys are copied so they
// remain valid after the iterator moves.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// eachWithPrefix unmarshals every value under prefix through fn.
func eachWithPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
