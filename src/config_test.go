package clistones

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	var cfg = config_default()

	assert.Equal(t, "default", cfg.Device)
	assert.Equal(t, 1.0, cfg.SNRDB)
	assert.Equal(t, 0.25, cfg.DurationS)
	assert.Equal(t, uint(10), cfg.CycleLen)
	assert.Equal(t, 1000.0, cfg.FreqOffset)

	var params = cfg.det_params()
	assert.Equal(t, uint(8000), params.fs)
	assert.Equal(t, 1000.0, params.fc)
	assert.Equal(t, 300.0, params.lpf1)
	assert.Equal(t, 50.0, params.lpf2)
	assert.Equal(t, 2.0, params.threshold)
	assert.Equal(t, 1, params.multiplicity)

	require.NoError(t, graves_det_check_params(&params))
}

func TestConfigLoad(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "station.yaml")

	var yaml = `
device: "GRAVES RX"
output_dir: /var/lib/clistones
snr_threshold_db: 3
zhr_cycle_len: 25
detector:
  fc: 1200
  multiplicity: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	var cfg, err = config_load(path)
	require.NoError(t, err)

	assert.Equal(t, "GRAVES RX", cfg.Device)
	assert.Equal(t, "/var/lib/clistones", cfg.OutputDir)
	assert.Equal(t, 3.0, cfg.SNRDB)
	assert.Equal(t, uint(25), cfg.CycleLen)

	/* Untouched keys keep their defaults. */
	assert.Equal(t, 0.25, cfg.DurationS)
	assert.Equal(t, 300.0, cfg.Detector.LPF1)

	var params = cfg.det_params()
	assert.Equal(t, 1200.0, params.fc)
	assert.Equal(t, 3, params.multiplicity)
}

func TestConfigLoadErrors(t *testing.T) {
	var _, err = config_load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	var path = filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: [unclosed"), 0644))

	_, err = config_load(path)
	assert.Error(t, err)
}
