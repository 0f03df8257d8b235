package clistones

import (
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func test_event_arrays(n int) ([]complex128, []float64, []float64) {
	var x = make([]complex128, n)
	var snr = make([]float64, n)
	var doppler = make([]float64, n)

	var K = doppler_k(8000)
	var prev complex128

	for i := range x {
		x[i] = cmplx.Exp(complex(0, 0.1*float64(i)))
		snr[i] = 1 + float64(i)/10
		doppler[i] = K * cmplx.Phase(x[i]*complexconj(prev))
		prev = x[i]
	}

	return x, snr, doppler
}

func TestStonefileRoundTrip(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "event_000007.dat")

	var x, snr, doppler = test_event_arrays(100)
	var tv = time.Date(2026, 8, 12, 3, 14, 15, 926535000, time.UTC)

	require.NoError(t, stonefile_save(path, 7, tv, 8000, x, snr, doppler))

	var raw, err = os.ReadFile(path)
	require.NoError(t, err)

	/* Six 32 byte header records plus four floats per sample. */
	assert.Len(t, raw, 6*32+4*4*100)
	assert.Equal(t, "EVENT_INDEX     =              7", string(raw[0:32]))
	assert.Equal(t, "SAMPLE_RATE     =           8000", string(raw[3*32:4*32]))
	assert.Equal(t, "CAPTURE_LEN     =            100", string(raw[4*32:5*32]))
	assert.Equal(t, stonefile_data_start, string(raw[5*32:6*32]))

	var sf *stonefile
	sf, err = stonefile_load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, sf.index)
	assert.Equal(t, uint(8000), sf.samp_rate)
	assert.Equal(t, 100, sf.length)
	assert.Equal(t, tv.Unix(), sf.tv.Unix())
	assert.Equal(t, 926535, sf.tv.Nanosecond()/1000)

	require.Len(t, sf.iq, 100)
	require.Len(t, sf.snr, 100)
	require.Len(t, sf.doppler, 100)

	for i := range x {
		assert.Equal(t, float32(real(x[i])), real(sf.iq[i]))
		assert.Equal(t, float32(imag(x[i])), imag(sf.iq[i]))
		assert.Equal(t, float32(snr[i]), sf.snr[i])
		assert.Equal(t, float32(doppler[i]), sf.doppler[i])
	}
}

func TestStonefileDumpSections(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "event_000000.dat")

	var x, snr, doppler = test_event_arrays(50)
	require.NoError(t, stonefile_save(path, 0, time.Now(), 8000, x, snr, doppler))

	var sf, err = stonefile_load(path)
	require.NoError(t, err)

	var out = filepath.Join(dir, "snr.raw")
	require.NoError(t, sf.dump_section("snr", out))

	var raw []byte
	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, raw, 4*50)

	out = filepath.Join(dir, "iq.raw")
	require.NoError(t, sf.dump_section("IQ", out))

	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, raw, 2*4*50)

	out = filepath.Join(dir, "doppler.raw")
	require.NoError(t, sf.dump_section("doppler", out))

	raw, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, raw, 4*50)

	assert.Error(t, sf.dump_section("bogus", filepath.Join(dir, "bogus.raw")))
}

func TestStonefileMissingDataSection(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "broken.dat")

	var header []byte
	header = append(header, stonefile_header_record("EVENT_INDEX", 1)...)
	header = append(header, stonefile_header_record("CAPTURE_LEN", 10)...)
	require.NoError(t, os.WriteFile(path, header, 0644))

	var _, err = stonefile_load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA section")
}

func TestStonefileStraySampleRateByte(t *testing.T) {
	/* Files from very old captures carry a stray 'u' right after the
	 * SAMPLE_RATE record.  The parser has to step over it. */
	var path = filepath.Join(t.TempDir(), "legacy.dat")

	var image []byte
	image = append(image, stonefile_header_record("EVENT_INDEX", 3)...)
	image = append(image, stonefile_header_record("SAMPLE_RATE", 8000)...)
	image = append(image, 'u')
	image = append(image, stonefile_header_record("TIMESTAMP_SEC", 1700000000)...)
	image = append(image, stonefile_header_record("TIMESTAMP_USEC", 250000)...)
	image = append(image, stonefile_header_record("CAPTURE_LEN", 0)...)
	image = append(image, stonefile_data_start...)
	require.NoError(t, os.WriteFile(path, image, 0644))

	var sf, err = stonefile_load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, sf.index)
	assert.Equal(t, uint(8000), sf.samp_rate)
	assert.Equal(t, int64(1700000000), sf.tv.Unix())
	assert.Equal(t, 0, sf.length)
}

func TestStonefileTruncatedData(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "short.dat")

	var image []byte
	image = append(image, stonefile_header_record("CAPTURE_LEN", 100)...)
	image = append(image, stonefile_data_start...)
	image = append(image, make([]byte, 64)...)
	require.NoError(t, os.WriteFile(path, image, 0644))

	var _, err = stonefile_load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestDopplerScale(t *testing.T) {
	/* 8000 * 0.25 * c / (143.05 MHz * pi) */
	assert.InEpsilon(t, 1334.1, doppler_k(8000), 1e-3)

	/* A constant phase step maps to a constant radial velocity. */
	var x, _, doppler = test_event_arrays(10)
	_ = x

	for i := 1; i < len(doppler); i++ {
		assert.InEpsilon(t, doppler_k(8000)*0.1, doppler[i], 1e-9)
	}
}

func TestPowerDBRoundTrip(t *testing.T) {
	assert.InDelta(t, 0.0, power_db(1), 1e-12)
	assert.InDelta(t, 10.0, power_db(10), 1e-12)
	assert.InEpsilon(t, 100.0, power_mag(20), 1e-12)

	for _, db := range []float64{-30, -3, 0, 1, 12.5} {
		assert.InDelta(t, db, power_db(power_mag(db)), 1e-9)
	}
}

func TestQToSNR(t *testing.T) {
	var ratio = 50. / 300.

	assert.Zero(t, graves_det_q_to_snr(ratio, ratio))
	assert.True(t, math.IsInf(graves_det_q_to_snr(ratio, 1), 1) ||
		graves_det_q_to_snr(ratio, 1) > 1e15)

	/* Q = 0.9, near the top of the interval, is an SNR above 7. */
	assert.Greater(t, graves_det_q_to_snr(ratio, 0.9), 7.0)
}
