package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Numerically controlled quadrature oscillator.
 *
 * Description:	Generates exp(j 2 pi f n / fs) one sample at a time by
 *		accumulating phase.  The detector keeps three of these:
 *		the local oscillator that tunes the stream to baseband,
 *		the mixer that steps the signal across sub-bands, and
 *		the centerer that re-centers the stitched chirp.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

type ncqo struct {
	phi   float64
	omega float64 /* Phase increment per sample, radians */
}

/* freq is normalized (fraction of the sample rate). */
func ncqo_init(nco *ncqo, freq float64) {
	nco.phi = 0
	nco.omega = 2 * math.Pi * freq
}

/*------------------------------------------------------------------
 *
 * Name:        read
 *
 * Purpose:     Return the current oscillator sample and advance the
 *		phase by one sample period.
 *
 *----------------------------------------------------------------*/

func (nco *ncqo) read() complex128 {
	var y = complex(math.Cos(nco.phi), math.Sin(nco.phi))

	nco.phi += nco.omega

	/* Keep the accumulator small so precision does not degrade over
	 * long captures. */
	if nco.phi > math.Pi {
		nco.phi -= 2 * math.Pi
	} else if nco.phi < -math.Pi {
		nco.phi += 2 * math.Pi
	}

	return y
}

/* Retune without a phase discontinuity. */
func (nco *ncqo) set_freq(freq float64) {
	nco.omega = 2 * math.Pi * freq
}
