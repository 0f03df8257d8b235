package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Multi-channel meteor chirp detector.
 *
 * Description:	The detector consumes one complex audio sample per
 *		call.  A local oscillator tunes the stream down to the
 *		lowest sub-band, then the sample is walked across the
 *		bank: each band element sees the previous element's
 *		input shifted down by the mixer frequency, so together
 *		they cover a band multiplicity times wider than one
 *		narrow filter.
 *
 *		A chirp starts when any element reports presence and
 *		ends when all of them go quiet.  On the rising edge
 *		the per-element history rings are flushed into the
 *		chirp buffers so the capture includes one window of
 *		pre-trigger samples; on the falling edge the power
 *		trajectories are re-filtered backwards to undo the
 *		group delay of the forward averages, and the consumer
 *		callback is invoked with the result.
 *
 *----------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math"
)

type graves_det_params struct {
	fs           uint    /* Sample rate, Hz */
	fc           float64 /* Center of the lowest sub-band, Hz of audio offset */
	lpf1         float64 /* Wide cutoff, Hz */
	lpf2         float64 /* Narrow cutoff, Hz */
	threshold    float64 /* Detection threshold on the integrated power ratio */
	multiplicity int     /* Number of adjacent sub-bands */
}

func graves_det_params_default() graves_det_params {
	return graves_det_params{
		fs:           CLISTONES_SAMP_RATE,
		fc:           1000,
		lpf1:         300,
		lpf2:         50,
		threshold:    2,
		multiplicity: 1,
	}
}

var ErrConsumerReject = errors.New("chirp consumer rejected the event")

type graves_det struct {
	params graves_det_params
	n      uint64 /* Samples consumed */

	lo     ncqo /* Local oscillator (tuned to lowest sub-band) */
	mixer  ncqo /* Multichannel mixer */
	center ncqo /* Channel centerer */

	det_bank []graves_det_element

	hist_len int
	p        int /* Ring write cursor, shared by bank and mixer_hist */
	alpha    float64

	in_chirp   bool
	mixer_hist []complex128

	/* Growable capture buffers.  Cleared, not reallocated, between
	 * events, so steady state operation stops allocating once the
	 * capacity covers the site's typical chirp length. */
	chirp   []complex128
	S_buf   []float64
	N_buf   []float64
	snr_buf []float64

	on_chirp graves_chirp_cb_t
}

/*------------------------------------------------------------------
 *
 * Name:        graves_det_check_params
 *
 * Purpose:     Validate detector parameters before construction.
 *
 *----------------------------------------------------------------*/

func graves_det_check_params(params *graves_det_params) error {

	if params.multiplicity < 1 {
		return errors.New("at least one channel is required")
	}

	if params.lpf1 <= params.lpf2 {
		return errors.New("illegal filter cutoff frequencies (lpf1 <= lpf2)")
	}

	if abs2norm_freq(params.fs, params.lpf1) < GRAVES_MIN_LPF_CUTOFF {
		return fmt.Errorf(
			"lpf1 is too narrow (safe minimum is %g Hz)",
			norm2abs_freq(params.fs, GRAVES_MIN_LPF_CUTOFF))
	}

	if abs2norm_freq(params.fs, params.lpf2) < GRAVES_MIN_LPF_CUTOFF {
		return fmt.Errorf(
			"lpf2 is too narrow (safe minimum is %g Hz)",
			norm2abs_freq(params.fs, GRAVES_MIN_LPF_CUTOFF))
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:        graves_det_new
 *
 * Purpose:     Construct a detector.
 *
 * Inputs:   	params	 - Detector parameters.  Copied; immutable
 *			   afterwards.
 *		on_chirp - Consumer invoked synchronously from feed
 *			   whenever a chirp ends.
 *
 *----------------------------------------------------------------*/

func graves_det_new(params *graves_det_params, on_chirp graves_chirp_cb_t) (*graves_det, error) {

	if err := graves_det_check_params(params); err != nil {
		return nil, err
	}

	var md = &graves_det{
		params:   *params,
		on_chirp: on_chirp,
	}

	md.hist_len = int(math.Ceil(float64(params.fs) * MIN_CHIRP_DURATION))
	md.alpha = 1 - math.Exp(-1/(float64(params.fs)*MIN_CHIRP_DURATION))
	md.mixer_hist = make([]complex128, md.hist_len)

	var m = float64(params.multiplicity - 1)

	ncqo_init(&md.lo, abs2norm_freq(params.fs, params.fc-m*params.lpf2))
	ncqo_init(&md.mixer, abs2norm_freq(params.fs, 2*params.lpf2))
	ncqo_init(&md.center, abs2norm_freq(params.fs, m*params.lpf2))

	md.det_bank = make([]graves_det_element, params.multiplicity)
	for i := range md.det_bank {
		if err := graves_det_element_init(&md.det_bank[i], params); err != nil {
			return nil, err
		}
	}

	return md, nil
}

func graves_det_get_ratio(md *graves_det) float64 {
	return md.det_bank[0].ratio
}

/* Retune only the local oscillator. */
func graves_det_set_center_freq(md *graves_det, fc float64) {
	var m = float64(md.params.multiplicity - 1)

	md.lo.set_freq(abs2norm_freq(md.params.fs, fc-m*md.params.lpf2))
}

/*------------------------------------------------------------------
 *
 * Name:        graves_det_estimate
 *
 * Purpose:     Derive combined signal and noise power at one index of
 *		the common history ring.
 *
 * Description:	With W_n and W_w proportional to the two cutoffs,
 *		p_n = W_n N0 + S and p_w = W_w N0 + S for a chirp that
 *		fits inside both passbands.  Solving per element gives
 *		its share of S; shares from simultaneously present
 *		sub-bands add (they cover different spectral regions
 *		of the chirp) while the noise estimates average.
 *
 *----------------------------------------------------------------*/

func graves_det_estimate(md *graves_det, at int) (float64, float64) {

	var S, N float64

	for i := range md.det_bank {
		var elem = &md.det_bank[i]

		var p_n = elem.p_n_hist[at]
		var p_w = elem.p_w_hist[at]

		var curr_S = p_n - md.params.lpf2*(p_w-p_n)/(md.params.lpf1-md.params.lpf2)

		if elem.pres_hist[at] {
			S += curr_S
		}

		N += p_n - curr_S
	}

	return S, N / float64(md.params.multiplicity)
}

/*------------------------------------------------------------------
 *
 * Name:        graves_det_filt_back
 *
 * Purpose:     Re-filter the captured power trajectories in reverse.
 *
 * Description:	By the time a chirp becomes detectable the forward
 *		exponential averages lag behind the signal.  Running
 *		the same single pole filter backwards from the tail
 *		pulls the estimates back in time.  The result is then
 *		shifted left by one window so the SNR vector the
 *		consumer sees lines up with the chirp samples; the
 *		trailing window corresponds to the decay of the
 *		averages after signal end and is discarded.
 *
 *----------------------------------------------------------------*/

func graves_det_filt_back(md *graves_det) {

	var length = len(md.S_buf)
	var S, N float64

	for i := length - 1; i >= 0; i-- {
		S += md.alpha * (md.S_buf[i] - S)
		N += md.alpha * (md.N_buf[i] - N)

		md.S_buf[i] = S
		md.N_buf[i] = N
	}

	/* Shift left by one window and derive the aligned SNR curve. */
	md.snr_buf = md.snr_buf[:0]

	for i := 0; i < length-md.hist_len; i++ {
		md.S_buf[i] = md.S_buf[i+md.hist_len]
		md.N_buf[i] = md.N_buf[i+md.hist_len]
		md.snr_buf = append(md.snr_buf, md.S_buf[i]/md.N_buf[i])
	}
}

/*------------------------------------------------------------------
 *
 * Name:        graves_det_feed
 *
 * Purpose:     Process one complex audio sample.  The single hot path.
 *
 * Returns:	ErrConsumerReject if this sample ended a chirp and the
 *		consumer returned false; nil otherwise.
 *
 *----------------------------------------------------------------*/

func graves_det_feed(md *graves_det, x complex128) error {

	var m = md.mixer.read()

	x *= complexconj(md.lo.read())

	var any_present = false
	var xi = x

	for i := range md.det_bank {
		if md.det_bank[i].feed(xi, md.p) {
			any_present = true
		}
		xi *= complexconj(m)
	}

	md.mixer_hist[md.p] = m

	md.p++
	if md.p == md.hist_len {
		md.p = 0
	}

	/* md.p now points to the OLDEST ring slot */

	if md.in_chirp {
		if !any_present {
			/* DETECTED: CHIRP END */
			md.in_chirp = false

			graves_det_filt_back(md)

			var length = len(md.chirp) - md.hist_len

			if length > 0 {
				var info = graves_chirp_info{
					t0:     (md.n - uint64(length)) / uint64(md.params.fs),
					t0f:    float64((md.n-uint64(length))%uint64(md.params.fs)) / float64(md.params.fs),
					fs:     md.params.fs,
					rbw:    graves_det_get_ratio(md),
					length: length,
					x:      md.chirp[:length],
					snr:    md.snr_buf[:length],
					S:      md.S_buf[:length],
					N:      md.N_buf[:length],
				}

				if !md.on_chirp(&info) {
					md.n++
					return ErrConsumerReject
				}
			}
		} else {
			/* Sample belongs to the chirp.  Save it for later
			 * processing, along with the power estimate at the
			 * newest complete ring slot. */
			var S, N = graves_det_estimate(md, md.prev_index())

			var curr_m = complexconj(md.center.read())
			var y complex128

			for i := range md.det_bank {
				if md.det_bank[i].present {
					y += md.det_bank[i].y * curr_m
				}
				curr_m *= m
			}

			md.chirp = append(md.chirp, y)
			md.S_buf = append(md.S_buf, S)
			md.N_buf = append(md.N_buf, N)
		}
	} else {
		if any_present {
			/* DETECTED: CHIRP START.  Flush the whole delay line
			 * into the capture buffers so the event includes the
			 * window that triggered it. */
			md.in_chirp = true

			md.chirp = md.chirp[:0]
			md.S_buf = md.S_buf[:0]
			md.N_buf = md.N_buf[:0]
			md.snr_buf = md.snr_buf[:0]

			for i := 0; i < md.hist_len; i++ {
				var idx = (i + md.p) % md.hist_len

				var S, N = graves_det_estimate(md, idx)
				var mi = md.mixer_hist[idx]

				var curr_m = complexconj(md.center.read())
				var y complex128

				for n := range md.det_bank {
					if md.det_bank[n].pres_hist[idx] {
						y += md.det_bank[n].samp_hist[idx] * curr_m
					}
					curr_m *= mi
				}

				md.chirp = append(md.chirp, y)
				md.S_buf = append(md.S_buf, S)
				md.N_buf = append(md.N_buf, N)
			}
		}
	}

	md.n++
	return nil
}

func (md *graves_det) prev_index() int {
	if md.p == 0 {
		return md.hist_len - 1
	}
	return md.p - 1
}

func complexconj(x complex128) complex128 {
	return complex(real(x), -imag(x))
}
