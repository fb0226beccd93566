// Package archive persists each day's published records in a bbolt
// database so past digests can be inspected without walking git
// history.
package archive

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/meiri-hq/meiri-yaowen/internal/domain"
)

var digestsBucket = []byte("digests")

// Store is a bbolt-backed archive of published records, one nested
// bucket per calendar day keyed by record title.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the archive database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDay stores the day's records, replacing any earlier archive for
// the same day. Same-day reruns therefore mirror the digest file's
// overwrite behavior.
func (s *Store) SaveDay(day time.Time, records []domain.Record) error {
	key := []byte(day.Format("20060102"))

	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(digestsBucket)
		if err != nil {
			return fmt.Errorf("create digests bucket: %w", err)
		}

		if root.Bucket(key) != nil {
			if err := root.DeleteBucket(key); err != nil {
				return fmt.Errorf("replace day bucket: %w", err)
			}
		}
		dayBucket, err := root.CreateBucket(key)
		if err != nil {
			return fmt.Errorf("create day bucket: %w", err)
		}

		for _, rec := range records {
			payload, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal record %q: %w", rec.Title, err)
			}
			if err := dayBucket.Put([]byte(rec.Title), payload); err != nil {
				return fmt.Errorf("store record %q: %w", rec.Title, err)
			}
		}
		return nil
	})
}

// Day loads the archived records for the given day. A day with no
// archive yields an empty slice.
func (s *Store) Day(day time.Time) ([]domain.Record, error) {
	key := []byte(day.Format("20060102"))

	var out []domain.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(digestsBucket)
		if root == nil {
			return nil
		}
		dayBucket := root.Bucket(key)
		if dayBucket == nil {
			return nil
		}

		return dayBucket.ForEach(func(_, v []byte) error {
			var rec domain.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode archived record: %w", err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Days lists the archived day keys in ascending order.
func (s *Store) Days() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(digestsBucket)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(k []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
