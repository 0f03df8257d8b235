package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Event reporting.
 *
 * Description: Rather than saving the raw, sometimes rather cryptic
 *		and unreadable capture data alone, every strong event
 *		also produces:
 *
 *		- A line on the console with a colored signal bar,
 *		  so an operator glancing at the terminal sees the
 *		  shower activity at once.
 *
 *		- A row in events.csv with separated properties for
 *		  easy reading and later processing.
 *
 *		- A ZHR (hourly rate) notice every cycle_len events.
 *
 *----------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type chirp_summary struct {
	index    int
	tv       time.Time
	duration float64
	mean_snr float64
	max_snr  float64
	mean_vel float64
	weak     bool
}

type reporter struct {
	fp   *os.File
	csvw *csv.Writer

	cycle_len   uint
	event_count int
	first       time.Time
}

func reporter_new(directory string, cycle_len uint) (*reporter, error) {

	var path = filepath.Join(directory, "events.csv")

	var fp, err = os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log file `%s': %w", path, err)
	}

	return &reporter{
		fp:        fp,
		csvw:      csv.NewWriter(fp),
		cycle_len: cycle_len,
		first:     time.Now(),
	}, nil
}

func (rep *reporter) close() {
	if rep.fp != nil {
		rep.csvw.Flush()
		rep.fp.Close()
		rep.fp = nil
	}
}

func report_timestamp(tv time.Time) string {
	var tm = tv.UTC()
	return fmt.Sprintf(
		"[%04d/%02d/%02d - %02d:%02d:%02d U] ",
		tm.Year(), int(tm.Month()), tm.Day(),
		tm.Hour(), tm.Minute(), tm.Second())
}

/*------------------------------------------------------------------
 *
 * Name:        report
 *
 * Purpose:     Report one strong event: console line, CSV row and,
 *		when due, the ZHR notice.
 *
 *----------------------------------------------------------------*/

func (rep *reporter) report(summary *chirp_summary) error {

	var snr = power_db(summary.mean_snr)

	var ticks = 1
	if snr >= 1 {
		ticks = int(math.Floor(snr))
	}

	fmt.Print(report_timestamp(summary.tv))
	fmt.Printf(
		"STONE EVENT %07d %6.2f s (%+6.2f m/s) SNR: %+6.2f dB (max %+6.2f dB) [",
		summary.index+1,
		summary.duration,
		summary.mean_vel,
		snr,
		power_db(summary.max_snr))

	switch {
	case ticks >= 10:
		fmt.Print("\033[1;31m")
	case ticks >= 5:
		fmt.Print("\033[1;33m")
	default:
		fmt.Print("\033[1;32m")
	}

	if ticks > 16 {
		ticks = 16
	}

	for i := 0; i < ticks; i++ {
		fmt.Print("|")
	}

	fmt.Print("\033[0m")

	if ticks == 16 {
		ticks--
		fmt.Print("+")
	}

	for i := 0; i < 16-ticks; i++ {
		fmt.Print(" ")
	}
	fmt.Println("]")

	var record = []string{
		strconv.Itoa(summary.index),
		fmt.Sprintf("%d.%06d", summary.tv.Unix(), summary.tv.Nanosecond()/1000),
		strconv.FormatFloat(summary.duration, 'e', 10, 64),
		strconv.FormatFloat(summary.mean_snr, 'e', 10, 64),
		strconv.FormatFloat(summary.max_snr, 'e', 10, 64),
		strconv.FormatFloat(summary.mean_vel, 'e', 10, 64),
	}

	if err := rep.csvw.Write(record); err != nil {
		return fmt.Errorf("failed to append to event log: %w", err)
	}
	rep.csvw.Flush()
	if err := rep.csvw.Error(); err != nil {
		return fmt.Errorf("failed to flush event log: %w", err)
	}

	rep.event_count++

	rep.zhr_notice(summary.tv)

	return nil
}

/* Show the hourly rate once per cycle of events.  Disabled when
 * cycle_len is 0. */
func (rep *reporter) zhr_notice(now time.Time) {

	if rep.cycle_len == 0 {
		return
	}

	if rep.event_count%int(rep.cycle_len) != 0 {
		return
	}

	var delta_t = now.Sub(rep.first).Seconds()

	if delta_t > 0 {
		fmt.Print(report_timestamp(now))
		fmt.Printf(
			"ZHR report update: %g events / hour\n",
			3600.*float64(rep.cycle_len)/delta_t)
	}

	rep.first = now
}
