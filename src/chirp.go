package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Description of a detected meteor chirp, as delivered
 *		to the detector's consumer.
 *
 *----------------------------------------------------------------*/

/* All slices are views into the detector's internal buffers.  They
 * remain valid only until the callback returns; a consumer that wants
 * to keep the data must copy it. */
type graves_chirp_info struct {
	t0  uint64  /* Start time, integer seconds in sample units */
	t0f float64 /* Decimal part of the start time */

	fs  uint
	rbw float64 /* Bandwidth ratio lpf2/lpf1 */

	length int

	x   []complex128 /* Chirp samples */
	snr []float64    /* Per-sample SNR, S/N */
	S   []float64    /* Effective signal power */
	N   []float64    /* Effective noise power */
}

/* Return false to abort the feed. */
type graves_chirp_cb_t func(info *graves_chirp_info) bool

/*------------------------------------------------------------------
 *
 * Name:        graves_det_q_to_snr
 *
 * Purpose:     Convert a narrow/wide power quotient into a linear SNR.
 *
 * Description: Q is the ratio of the two filter output powers for a
 *		narrowband signal in white noise.  With W_n and W_w the
 *		equivalent noise bandwidths, p_n = W_n N + S and
 *		p_w = W_w N + S; eliminating N and S gives
 *		SNR = (Q - ratio) / (1 - Q) where ratio = W_n / W_w.
 *
 *----------------------------------------------------------------*/

func graves_det_q_to_snr(ratio float64, q float64) float64 {
	return (q - ratio) / (1 - q)
}
