package clistones

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIIRBwlpfDCGain(t *testing.T) {
	var filt iir_bwlpf
	require.NoError(t, iir_bwlpf_init(&filt, 50./8000))

	var y complex128
	for i := 0; i < 8000; i++ {
		y = filt.feed(1)
	}

	assert.InDelta(t, 1.0, real(y), 1e-3, "unity gain at DC")
	assert.InDelta(t, 0.0, imag(y), 1e-9)
}

func TestIIRBwlpfImpulseDecay(t *testing.T) {
	var filt iir_bwlpf
	require.NoError(t, iir_bwlpf_init(&filt, 300./8000))

	var y = filt.feed(1)
	var total = real(y) * real(y)

	var late float64
	for i := 1; i < 4000; i++ {
		y = filt.feed(0)
		total += real(y) * real(y)
		if i >= 2000 {
			late += real(y) * real(y)
		}
	}

	assert.Greater(t, total, 0.0)
	assert.Less(t, late, total*1e-9, "impulse response has died out")
}

func TestIIRBwlpfNoiseBandwidthRatio(t *testing.T) {
	var wide, narrow iir_bwlpf
	require.NoError(t, iir_bwlpf_init(&wide, 300./8000))
	require.NoError(t, iir_bwlpf_init(&narrow, 50./8000))

	var rng = rand.New(rand.NewSource(5))

	var p_w, p_n float64
	const n_samples = 80000

	for i := 0; i < n_samples; i++ {
		var x = complex(rng.NormFloat64(), rng.NormFloat64())

		var y = wide.feed(x)
		p_w += real(y)*real(y) + imag(y)*imag(y)

		y = narrow.feed(x)
		p_n += real(y)*real(y) + imag(y)*imag(y)
	}

	/* Output powers of the two filters over the same white noise
	 * should sit close to the bandwidth ratio. */
	var q = p_n / p_w
	assert.Greater(t, q, 50./300.*0.8)
	assert.Less(t, q, 50./300.*1.2)
}

func TestIIRBwlpfRejectsBadCutoff(t *testing.T) {
	var filt iir_bwlpf

	assert.Error(t, iir_bwlpf_init(&filt, 0))
	assert.Error(t, iir_bwlpf_init(&filt, 0.5))
	assert.Error(t, iir_bwlpf_init(&filt, -0.1))
	assert.NoError(t, iir_bwlpf_init(&filt, 0.49))
}

func TestIIRBwlpfReset(t *testing.T) {
	var filt iir_bwlpf
	require.NoError(t, iir_bwlpf_init(&filt, 100./8000))

	for i := 0; i < 100; i++ {
		filt.feed(complex(1, 1))
	}

	filt.reset()

	assert.Equal(t, complex128(0), filt.feed(0))
}
