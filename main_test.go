package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/stillwave/internal/config"
	"github.com/iburimskiy/stillwave/internal/store"
)

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestPrintStats(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "stats.db")
	sessionLimit = 5

	db, err := store.NewDB(cfg.Store.Path)
	require.NoError(t, err)
	_, _, err = db.RecordSession(context.Background(), 0.5, 3)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cmd, out := testCmd()
	require.NoError(t, printStats(cmd, nil))
	assert.Contains(t, out.String(), "Total minutes:     320.5")
	assert.Contains(t, out.String(), "Streak:            13 days")
	assert.Contains(t, out.String(), "0.5 min  3 breaths")
}

func TestConfigCommandRoundTrips(t *testing.T) {
	cfg = config.Default()
	cmd, out := testCmd()
	require.NoError(t, configCmd.RunE(cmd, nil))

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 4*time.Second, decoded.Breathing.Inhale)
	assert.Equal(t, cfg.Steps, decoded.Steps)
}
