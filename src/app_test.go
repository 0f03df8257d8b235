package clistones

import (
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func test_app(t *testing.T) *clistones {
	t.Helper()

	var cfg = config_default()

	return &clistones{
		params:     clistones_params_from_config(&cfg),
		det_params: cfg.det_params(),
		directory:  t.TempDir(),
	}
}

func test_chirp_info(n int, snr float64) *graves_chirp_info {
	var info = &graves_chirp_info{
		fs:     8000,
		rbw:    50. / 300.,
		length: n,
		x:      make([]complex128, n),
		snr:    make([]float64, n),
		S:      make([]float64, n),
		N:      make([]float64, n),
	}

	for i := 0; i < n; i++ {
		info.x[i] = cmplx.Exp(complex(0, 0.05*float64(i)))
		info.snr[i] = snr
		info.S[i] = snr
		info.N[i] = 1
	}

	return info
}

func TestRegisterChirpStrongEvent(t *testing.T) {
	var app = test_app(t)

	/* 0.5 s at SNR 100: above both thresholds. */
	var info = test_chirp_info(4000, 100)

	var summary chirp_summary
	require.NoError(t, clistones_register_chirp(app, &summary, time.Now(), info))

	assert.False(t, summary.weak)
	assert.InEpsilon(t, 0.5, summary.duration, 1e-12)
	assert.InEpsilon(t, 100, summary.mean_snr, 1e-9)
	assert.InEpsilon(t, 100, summary.max_snr, 1e-9)

	/* Constant phase step of 0.05 rad per sample. */
	assert.InEpsilon(t, doppler_k(8000)*0.05, summary.mean_vel, 1e-3)

	var path = filepath.Join(app.directory, "event_000000.dat")
	var _, err = os.Stat(path)
	require.NoError(t, err, "strong event file must remain on disk")

	var sf *stonefile
	sf, err = stonefile_load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, sf.length)
}

func TestRegisterChirpWeakEventRemoved(t *testing.T) {
	var app = test_app(t)

	/* Strong enough but too short: 0.1 s < 0.25 s threshold. */
	var info = test_chirp_info(800, 100)

	var summary chirp_summary
	require.NoError(t, clistones_register_chirp(app, &summary, time.Now(), info))

	assert.True(t, summary.weak)

	var _, err = os.Stat(filepath.Join(app.directory, "event_000000.dat"))
	assert.True(t, os.IsNotExist(err), "weak event file must be removed")
}

func TestRegisterChirpLowSNRIsWeak(t *testing.T) {
	var app = test_app(t)

	/* Long enough but below the 1 dB SNR threshold. */
	var info = test_chirp_info(4000, 0.5)

	var summary chirp_summary
	require.NoError(t, clistones_register_chirp(app, &summary, time.Now(), info))

	assert.True(t, summary.weak)
}

func TestOnChirpWeakEventsNotCounted(t *testing.T) {
	var app = test_app(t)

	var rep, err = reporter_new(app.directory, 0)
	require.NoError(t, err)
	defer rep.close()
	app.rep = rep

	require.True(t, clistones_on_chirp(app, test_chirp_info(800, 100)))
	assert.Equal(t, 0, app.event_count)

	require.True(t, clistones_on_chirp(app, test_chirp_info(4000, 100)))
	assert.Equal(t, 1, app.event_count)
}
