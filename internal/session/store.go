// Package session persists the viewer's login between runs, the way the web
// client keeps its token in browser storage. It holds credentials and a user
// snapshot only — never feed content or resolved metadata, which are rebuilt
// on every pass.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cineconnect/cinefeed/internal/content"
	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")

	tokenKey = []byte("token")
	userKey  = []byte("user")
)

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the session database at path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(sessionBucket)
		return createErr
	})
	if err != nil {
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the session after a successful login or register.
func (s *Store) Save(sess content.Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		userData, err := json.Marshal(sess.User)
		if err != nil {
			return err
		}
		if err := b.Put(tokenKey, []byte(sess.Token)); err != nil {
			return err
		}
		return b.Put(userKey, userData)
	})
}

// Current returns the stored session, or nil when nobody is logged in.
func (s *Store) Current() (*content.Session, error) {
	var sess *content.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		token := b.Get(tokenKey)
		if len(token) == 0 {
			return nil
		}
		var user content.User
		if data := b.Get(userKey); data != nil {
			if err := json.Unmarshal(data, &user); err != nil {
				return fmt.Errorf("decoding stored user: %w", err)
			}
		}
		sess = &content.Session{Token: string(token), User: user}
		return nil
	})
	return sess, err
}

// UpdateUser refreshes the stored user snapshot, e.g. after a profile edit
// or a bookmark toggle, without touching the token.
func (s *Store) UpdateUser(user content.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return tx.Bucket(sessionBucket).Put(userKey, data)
	})
}

// Clear logs the viewer out.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(userKey)
	})
}
