// Package storage provides durable persistence for trained fraud models.
// It uses BoltDB as the underlying storage engine to store the active
// classifier payload, its categorical encoder vocabularies, and the
// training metadata as one artifact.
//
// An artifact is written in a single transaction, so a crash mid-save
// leaves the previously persisted model intact; there is never a
// partially written model on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/features"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
)

const (
	modelBucket = "model" // Bucket holding the active model artifact
	activeKey   = "active"
)

// ErrNoModel is returned by LoadModel when no artifact has been saved.
var ErrNoModel = errors.New("no model persisted")

// ModelArtifact is the persisted form of a trained model: the serialized
// classifier, the encoder vocabularies grown during its training, and
// the metadata reported to callers.
type ModelArtifact struct {
	Type       string               `json:"type"`
	Classifier json.RawMessage      `json:"classifier"`
	Encoders   *features.EncoderSet `json:"encoders"`
	Info       ml.ModelInfo         `json:"info"`
}

// Store provides persistent model storage using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens the model database under dataPath, creating the directory
// and the model bucket if needed. Returns an error if the database
// cannot be opened.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, "fraudguard-models.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open model database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(modelBucket)); err != nil {
			return fmt.Errorf("create model bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveModel replaces the persisted artifact wholesale. The write happens
// in one transaction; readers either see the old artifact fully or the
// new one fully.
func (s *Store) SaveModel(artifact ModelArtifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal model artifact: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelBucket)).Put([]byte(activeKey), data)
	})
	if err != nil {
		return fmt.Errorf("persist model artifact: %w", err)
	}
	return nil
}

// LoadModel retrieves the persisted artifact, or ErrNoModel when none
// has been saved yet.
func (s *Store) LoadModel() (*ModelArtifact, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(modelBucket)).Get([]byte(activeKey))
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	if data == nil {
		return nil, ErrNoModel
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshal model artifact: %w", err)
	}
	return &artifact, nil
}

// DeleteModel removes the persisted artifact, if any.
func (s *Store) DeleteModel() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelBucket)).Delete([]byte(activeKey))
	})
	if err != nil {
		return fmt.Errorf("delete model artifact: %w", err)
	}
	return nil
}
