package session

import (
	"sync"
	"time"

	"github.com/boldserve/adminconsole/config"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// TokenStore persists the single session token.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

var sessionBucket = []byte("session")

// BoltStore keeps the token in a bbolt file so it survives restarts.
type BoltStore struct {
	db *bolt.DB
}

var _ TokenStore = (*BoltStore)(nil)

func OpenBoltStore(file string) (*BoltStore, error) {
	db, err := bolt.Open(file, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open session store %s", file)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init session bucket")
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load() (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBucket).Get([]byte(config.SessionTokenKey)); v != nil {
			token = string(v)
		}
		return nil
	})
	return token, err
}

func (s *BoltStore) Save(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(config.SessionTokenKey), []byte(token))
	})
}

func (s *BoltStore) Delete() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(config.SessionTokenKey))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore is a process-local TokenStore, used by tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*MemoryStore)(nil)

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
