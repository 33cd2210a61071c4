package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"diabetes-api/internal/cfg"
	"diabetes-api/internal/dataset"
	"diabetes-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settings(dir, data string) cfg.Settings {
	return cfg.Settings{
		ModelPath:  filepath.Join(dir, "diabetes_model.gob"),
		ScalerPath: filepath.Join(dir, "scaler.gob"),
		RunsPath:   filepath.Join(dir, "runs"),
		Training: cfg.Training{
			DataPath: data,
			Trees:    5,
			MaxDepth: 4,
			TestSize: 0.2,
			Seed:     42,
			Jobs:     2,
		},
	}
}

func TestTrain_RecordsRunAndClosesStore(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, dataset.Generate(&buf, 600, 11))
	data := filepath.Join(dir, "diabetes.csv")
	require.NoError(t, os.WriteFile(data, buf.Bytes(), 0o600))

	var out bytes.Buffer
	res, err := train(context.Background(), settings(dir, data), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Model and scaler saved successfully!")

	store, err := storage.OpenReadOnly(filepath.Join(dir, "runs"))
	require.NoError(t, err, "store released after train returns")
	defer store.Close()
	latest, err := store.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, res.Run.ID, latest.ID)
}

func TestTrain_FailureClosesStore(t *testing.T) {
	dir := t.TempDir()
	c := settings(dir, filepath.Join(dir, "missing.csv"))

	_, err := train(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)

	store, err := storage.New(c.RunsPath)
	require.NoError(t, err, "a failed run must not keep the store locked")
	require.NoError(t, store.Close())
}
