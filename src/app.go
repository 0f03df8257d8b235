package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Top level application object.
 *
 * Description:	Owns the detector, the sound card, the data directory
 *		and the reporter, and runs the capture loop.  Each
 *		detected chirp is written to its own event file, then
 *		judged: events below the SNR or duration thresholds
 *		are considered weak, removed again and never reported.
 *		Writing first costs nothing and means a crash can
 *		never lose a strong event that was already detected.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

type clistones_params struct {
	device             string
	output_dir         string
	freq_offset        float64
	snr_threshold      float64 /* Linear */
	duration_threshold float64 /* Seconds */
	cycle_len          uint
}

type clistones struct {
	params     clistones_params
	det_params graves_det_params

	directory string
	detector  *graves_det
	audio     *audio_in
	rep       *reporter

	event_count int
	cancelled   atomic.Bool
}

func clistones_params_from_config(cfg *config) clistones_params {
	return clistones_params{
		device:             cfg.Device,
		output_dir:         cfg.OutputDir,
		freq_offset:        cfg.FreqOffset,
		snr_threshold:      power_mag(cfg.SNRDB),
		duration_threshold: cfg.DurationS,
		cycle_len:          cfg.CycleLen,
	}
}

/*------------------------------------------------------------------
 *
 * Name:        clistones_register_chirp
 *
 * Purpose:     Persist one chirp to its event file and build the
 *		summary used for reporting.
 *
 *----------------------------------------------------------------*/

func clistones_register_chirp(app *clistones, summary *chirp_summary, tv time.Time, chirp *graves_chirp_info) error {

	var path = filepath.Join(app.directory, fmt.Sprintf("event_%06d.dat", app.event_count))

	var K = doppler_k(app.det_params.fs)

	var doppler = make([]float64, chirp.length)
	var prev complex128

	var cum_doppler, cum_snr, max_snr float64

	for i := 0; i < chirp.length; i++ {
		var offset = cmplx.Phase(chirp.x[i] * complexconj(prev))
		prev = chirp.x[i]
		doppler[i] = K * offset

		var snr = chirp.snr[i]
		cum_snr += snr
		if snr > max_snr {
			max_snr = snr
		}

		cum_doppler += doppler[i] * snr
	}

	if err := stonefile_save(path, app.event_count, tv, chirp.fs, chirp.x, chirp.snr, doppler); err != nil {
		return err
	}

	summary.index = app.event_count
	summary.tv = tv
	summary.duration = float64(chirp.length) / float64(app.det_params.fs)
	summary.mean_snr = cum_snr / float64(chirp.length)
	summary.max_snr = max_snr
	summary.mean_vel = cum_doppler / cum_snr

	summary.weak = summary.max_snr < app.params.snr_threshold ||
		summary.duration < app.params.duration_threshold

	if summary.weak {
		os.Remove(path)
	}

	return nil
}

func clistones_on_chirp(app *clistones, chirp *graves_chirp_info) bool {

	var summary chirp_summary
	var now = time.Now()

	if err := clistones_register_chirp(app, &summary, now, chirp); err != nil {
		log.Error("failed to register chirp", "err", err)
		return false
	}

	/* We ignore weak chirps */
	if summary.weak {
		return true
	}

	if err := app.rep.report(&summary); err != nil {
		log.Error("failed to report event", "err", err)
		return false
	}

	app.event_count++

	return true
}

/*------------------------------------------------------------------
 *
 * Name:        clistones_new
 *
 * Purpose:     Construct the application: data directory, detector,
 *		sound card and reporter, in that order.  Tears partial
 *		state back down on any failure.
 *
 *----------------------------------------------------------------*/

func clistones_new(cfg *config) (*clistones, error) {

	var app = &clistones{
		params:     clistones_params_from_config(cfg),
		det_params: cfg.det_params(),
	}

	if app.params.output_dir == "" {
		var name, err = strftime.Format("clistones_%Y%m%d_%H%M%S", time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("cannot format directory name: %w", err)
		}
		app.directory = name
	} else {
		app.directory = app.params.output_dir
	}

	if app.directory != "." {
		if err := os.Mkdir(app.directory, 0755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create output directory `%s': %w", app.directory, err)
		}
	}

	var err error

	app.detector, err = graves_det_new(&app.det_params, func(info *graves_chirp_info) bool {
		return clistones_on_chirp(app, info)
	})
	if err != nil {
		return nil, err
	}

	graves_det_set_center_freq(app.detector, app.params.freq_offset)

	app.audio, err = audio_in_open(app.params.device, app.det_params.fs, CLISTONES_READ_SIZE)
	if err != nil {
		return nil, err
	}

	app.rep, err = reporter_new(app.directory, app.params.cycle_len)
	if err != nil {
		app.audio.close()
		return nil, err
	}

	return app, nil
}

func (app *clistones) data_directory() string {
	return app.directory
}

func (app *clistones) cancel() {
	app.cancelled.Store(true)
}

/*------------------------------------------------------------------
 *
 * Name:        loop
 *
 * Purpose:     Pump sound card samples into the detector until
 *		cancelled or a feed failure.
 *
 *----------------------------------------------------------------*/

func (app *clistones) loop() error {

	defer app.cancelled.Store(true)

	for !app.cancelled.Load() {
		var buffer, err = app.audio.read()
		if err != nil {
			if app.cancelled.Load() {
				/* Reads aborted by close during shutdown are fine. */
				return nil
			}
			return err
		}

		/* Forward them to the meteorite detector */
		for _, s := range buffer {
			if err = graves_det_feed(app.detector, complex(float64(s)/65535., 0)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (app *clistones) destroy() {
	if app.rep != nil {
		app.rep.close()
		app.rep = nil
	}
	if app.audio != nil {
		app.audio.close()
		app.audio = nil
	}
}
