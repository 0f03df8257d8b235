package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Butterworth low-pass filters used by the detector.
 *
 * Description:	Each sub-band element probes the stream with two 4th
 *		order Butterworth low-pass filters of different
 *		cutoffs: a wide one to track the noise floor and a
 *		narrow one to isolate chirps.  The 4th order filter is
 *		realized as a cascade of two direct form II biquad
 *		sections running on complex baseband samples.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

/* Q factors of the two second order sections of a 4th order
 * Butterworth low-pass: 1 / (2 cos(22.5 deg)) and 1 / (2 cos(67.5 deg)). */
var bwlpf4_section_q = [2]float64{0.5411961001461970, 1.3065629648763766}

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	w1, w2 complex128 /* Direct form II delay line */
}

/*------------------------------------------------------------------
 *
 * Name:        biquad_lowpass_init
 *
 * Purpose:     Compute low-pass coefficients for one biquad section.
 *
 * Inputs:   	fc	- Cutoff frequency as fraction of the sample rate.
 *		q	- Q factor of the section.
 *
 *----------------------------------------------------------------*/

func biquad_lowpass_init(bq *biquad, fc float64, q float64) {

	Assert(fc > 0 && fc < 0.5)

	var w0 = 2 * math.Pi * fc
	var alpha = math.Sin(w0) / (2 * q)
	var cw = math.Cos(w0)
	var a0 = 1 + alpha

	bq.b0 = (1 - cw) / 2 / a0
	bq.b1 = (1 - cw) / a0
	bq.b2 = (1 - cw) / 2 / a0
	bq.a1 = -2 * cw / a0
	bq.a2 = (1 - alpha) / a0

	bq.w1 = 0
	bq.w2 = 0
}

func (bq *biquad) feed(x complex128) complex128 {
	var w0 = x - complex(bq.a1, 0)*bq.w1 - complex(bq.a2, 0)*bq.w2
	var y = complex(bq.b0, 0)*w0 + complex(bq.b1, 0)*bq.w1 + complex(bq.b2, 0)*bq.w2

	bq.w2 = bq.w1
	bq.w1 = w0

	return y
}

/* 4th order Butterworth low-pass, the only IIR design the detector
 * needs. */
type iir_bwlpf struct {
	sections [2]biquad
}

/*------------------------------------------------------------------
 *
 * Name:        iir_bwlpf_init
 *
 * Purpose:     Initialize a 4th order Butterworth low-pass filter.
 *
 * Inputs:   	fc	- Cutoff frequency as fraction of the sample rate.
 *			  Must lie in (0, 0.5).
 *
 * Returns:	Error if the cutoff is outside the representable range.
 *
 *----------------------------------------------------------------*/

func iir_bwlpf_init(filt *iir_bwlpf, fc float64) error {

	if fc <= 0 || fc >= 0.5 {
		return fmt.Errorf("cutoff %g is not a valid normalized frequency", fc)
	}

	for i := range filt.sections {
		biquad_lowpass_init(&filt.sections[i], fc, bwlpf4_section_q[i])
	}

	return nil
}

func (filt *iir_bwlpf) feed(x complex128) complex128 {
	for i := range filt.sections {
		x = filt.sections[i].feed(x)
	}
	return x
}

func (filt *iir_bwlpf) reset() {
	for i := range filt.sections {
		filt.sections[i].w1 = 0
		filt.sections[i].w2 = 0
	}
}
