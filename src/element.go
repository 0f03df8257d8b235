package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	One filtered channel of the detector bank.
 *
 * Description:	Every sub-band is watched by a band element.  The
 *		element runs the two Butterworth low-pass filters,
 *		keeps exponential averages of their output powers,
 *		derives the power quotient Q = p_n / p_w, and decides
 *		whether a signal is present by integrating Q over a
 *		sliding window one minimum-chirp long.
 *
 *		Under noise only conditions both filters see the same
 *		white spectrum, so Q settles at the bandwidth ratio
 *		lpf2/lpf1.  A chirp is narrow enough to fit inside
 *		both passbands and pushes Q toward 1.  Values outside
 *		[ratio, 1) are measurement noise and are replaced by
 *		the last value that made sense.
 *
 *----------------------------------------------------------------*/

import (
	"math"
)

type graves_det_element struct {
	lpf1 iir_bwlpf /* Wide band filter: probes noise power */
	lpf2 iir_bwlpf /* Narrow band filter: isolates chirps */

	alpha        float64
	ratio        float64
	energy_thres float64

	hist_len int

	p_w float64
	p_n float64

	/* Most recent Q inside [ratio, 1).  Starts at 0, which is below
	 * ratio, so the first window integrates substituted zeros (or
	 * NaNs before the averages are charged) and cannot trigger.
	 * That doubles as start-up transient suppression. */
	last_good_q float64

	pres_hist []bool
	p_n_hist  []float64
	p_w_hist  []float64
	q_hist    []float64
	samp_hist []complex128

	present bool
	y       complex128
}

func graves_det_element_init(elem *graves_det_element, params *graves_det_params) error {

	elem.ratio = params.lpf2 / params.lpf1
	elem.alpha = 1 - math.Exp(-1/(float64(params.fs)*MIN_CHIRP_DURATION))
	elem.hist_len = int(math.Ceil(float64(params.fs) * MIN_CHIRP_DURATION))
	elem.energy_thres = params.threshold * elem.ratio * float64(elem.hist_len)

	if err := iir_bwlpf_init(&elem.lpf1, abs2norm_freq(params.fs, params.lpf1)); err != nil {
		return err
	}

	if err := iir_bwlpf_init(&elem.lpf2, abs2norm_freq(params.fs, params.lpf2)); err != nil {
		return err
	}

	elem.pres_hist = make([]bool, elem.hist_len)
	elem.p_n_hist = make([]float64, elem.hist_len)
	elem.p_w_hist = make([]float64, elem.hist_len)
	elem.q_hist = make([]float64, elem.hist_len)
	elem.samp_hist = make([]complex128, elem.hist_len)

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:        feed
 *
 * Purpose:     Process one baseband sample through this element.
 *
 * Inputs:   	x	- Complex sample, already tuned to this
 *			  element's sub-band.
 *		p	- Ring write cursor, shared by the whole bank.
 *
 * Returns:     True if the integrated Q says a signal is present.
 *
 *----------------------------------------------------------------*/

func (elem *graves_det_element) feed(x complex128, p int) bool {

	var y = elem.lpf1.feed(x)
	elem.p_w += elem.alpha * (real(y)*real(y) + imag(y)*imag(y) - elem.p_w)

	y = elem.lpf2.feed(x)
	elem.p_n += elem.alpha * (real(y)*real(y) + imag(y)*imag(y) - elem.p_n)

	/* Compute power quotient.  0/0 yields NaN here, which fails both
	 * comparisons below, so it is not replaced: it goes into the ring
	 * and becomes last_good_q. */
	var Q = elem.p_n / elem.p_w

	if Q >= 1 || Q < elem.ratio {
		Q = elem.last_good_q
	} else {
		elem.last_good_q = Q
	}

	/* Update histories */
	elem.p_n_hist[p] = elem.p_n
	elem.p_w_hist[p] = elem.p_w
	elem.q_hist[p] = Q

	/* Integrate Q over the whole window.  A NaN anywhere in the ring
	 * poisons the sum and keeps the element silent, which is exactly
	 * what we want during warm-up. */
	var energy float64
	for i := 0; i < elem.hist_len; i++ {
		energy += elem.q_hist[i]
	}

	elem.present = energy >= elem.energy_thres
	elem.samp_hist[p] = y
	elem.pres_hist[p] = elem.present
	elem.y = y

	return elem.present
}
