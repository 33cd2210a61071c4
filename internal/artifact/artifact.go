// Package artifact persists the fitted scaler and forest with encoding/gob.
//
// Both artifacts are staged next to their destination and renamed into place
// only after both encoded successfully, so a failed training run never leaves
// a half-written pair behind.
package artifact

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"diabetes-api/internal/forest"
	"diabetes-api/internal/preprocessing"
	"diabetes-api/internal/schema"

	"github.com/cockroachdb/errors"
)

// ErrFeatureOrder is returned when a scaler was fit on a different feature
// layout than the current schema.
var ErrFeatureOrder = errors.New("scaler feature order does not match schema")

// SavePair writes the scaler and model to their paths, overwriting existing
// files.
func SavePair(scalerPath, modelPath string, scaler *preprocessing.StandardScaler, model *forest.RandomForest) error {
	if !scaler.IsFitted() {
		return errors.Wrap(preprocessing.ErrNotFitted, "save scaler")
	}
	if !model.IsFitted() {
		return errors.Wrap(forest.ErrNotFitted, "save model")
	}

	scalerTmp, err := stage(scalerPath, scaler)
	if err != nil {
		return errors.Wrap(err, "save scaler")
	}
	modelTmp, err := stage(modelPath, model)
	if err != nil {
		os.Remove(scalerTmp)
		return errors.Wrap(err, "save model")
	}

	// The model goes first; if the scaler cannot follow, the previous model
	// is put back so the pair on disk stays consistent.
	backup, err := backupFile(modelPath)
	if err != nil {
		os.Remove(scalerTmp)
		os.Remove(modelTmp)
		return errors.Wrap(err, "save model")
	}
	if err := os.Rename(modelTmp, modelPath); err != nil {
		os.Remove(scalerTmp)
		os.Remove(modelTmp)
		restore(backup, modelPath)
		return errors.Wrap(err, "save model")
	}
	if err := os.Rename(scalerTmp, scalerPath); err != nil {
		os.Remove(scalerTmp)
		restore(backup, modelPath)
		return errors.Wrap(err, "save scaler")
	}
	if backup != "" {
		os.Remove(backup)
	}
	return nil
}

// backupFile hard-links path to a sibling backup name. It returns "" when
// there is nothing to back up.
func backupFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	backup := path + ".bak"
	os.Remove(backup)
	if err := os.Link(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

// restore puts the backup in place of path, or removes path when there was
// no previous file.
func restore(backup, path string) {
	if backup == "" {
		os.Remove(path)
		return
	}
	os.Rename(backup, path)
}

// LoadScaler reads a scaler and checks it was fit on the schema's features.
func LoadScaler(path string) (*preprocessing.StandardScaler, error) {
	var s preprocessing.StandardScaler
	if err := decode(path, &s); err != nil {
		return nil, errors.Wrap(err, "load scaler")
	}
	if !s.IsFitted() {
		return nil, errors.Wrapf(preprocessing.ErrNotFitted, "load scaler %s", path)
	}
	if !schema.SameOrder(s.Features) {
		return nil, errors.Wrapf(ErrFeatureOrder, "load scaler %s: got %v", path, s.Features)
	}
	return &s, nil
}

// LoadModel reads a fitted forest.
func LoadModel(path string) (*forest.RandomForest, error) {
	var m forest.RandomForest
	if err := decode(path, &m); err != nil {
		return nil, errors.Wrap(err, "load model")
	}
	if !m.IsFitted() {
		return nil, errors.Wrapf(forest.ErrNotFitted, "load model %s", path)
	}
	if m.NFeatures != schema.NumFeatures {
		return nil, errors.Newf("load model %s: fitted on %d features, schema has %d", path, m.NFeatures, schema.NumFeatures)
	}
	return &m, nil
}

func stage(dest string, v any) (string, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.Wrap(err, "encode")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func decode(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
