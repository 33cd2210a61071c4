// Package storage keeps the history of training runs in a BoltDB file. The
// trainer appends one record per run; the prediction service reads the most
// recent runs at startup to describe the model it serves.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// FileName is the database file created inside the data directory.
	FileName = "training-runs.db"

	runsBucket = "runs"
)

// ErrNoRuns is returned when the store holds no training runs yet.
var ErrNoRuns = errors.New("no training runs recorded")

// Store provides persistent storage for training runs using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (creating if needed) the run store under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(dataPath, FileName), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing run store without taking the write lock.
// The file must already exist.
func OpenReadOnly(dataPath string) (*Store, error) {
	db, err := bbolt.Open(filepath.Join(dataPath, FileName), 0o600, &bbolt.Options{
		Timeout:  1 * time.Second,
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// SaveRun stores a run keyed by its finish time so cursor order is
// chronological.
func (s *Store) SaveRun(run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return fmt.Errorf("bucket %q missing", runsBucket)
		}

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		return b.Put(runKey(run.FinishedAt, run.ID), data)
	})
}

// LatestRun returns the most recently finished run.
func (s *Store) LatestRun() (Run, error) {
	var run Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return ErrNoRuns
		}
		k, v := b.Cursor().Last()
		if k == nil {
			return ErrNoRuns
		}
		if err := json.Unmarshal(v, &run); err != nil {
			return fmt.Errorf("unmarshal run %s: %w", k, err)
		}
		return nil
	})
	return run, err
}

// ListRuns returns runs finished within [start, end], oldest first.
// Malformed records are skipped.
func (s *Store) ListRuns(start, end time.Time) ([]Run, error) {
	var runs []Run

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()

		startKey := timePrefix(start)
		endKey := timePrefix(end.Add(time.Nanosecond))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) < 0; k, v = c.Next() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				continue
			}
			runs = append(runs, run)
		}
		return nil
	})

	return runs, err
}

// RecentRuns returns at most limit runs that finished within window before
// now, newest first.
func (s *Store) RecentRuns(now time.Time, window time.Duration, limit int) ([]Run, error) {
	runs, err := s.ListRuns(now.Add(-window), now)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	slices.Reverse(runs)
	return runs, nil
}

func timePrefix(t time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", t.UnixNano()))
}

func runKey(t time.Time, id string) []byte {
	return append(timePrefix(t), []byte("_"+id)...)
}
