package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Per-event binary record files.
 *
 * Description: Every detected chirp is persisted as one file in the
 *		data directory.  The format is a sequence of 32 byte
 *		ASCII header records, "KEY<spaces>=<right aligned
 *		value>", terminated by a "DATA SECTION START" record,
 *		followed by three contiguous blocks of little endian
 *		single precision floats: I/Q pairs, SNR and Doppler,
 *		each CAPTURE_LEN samples long.
 *
 *		The reader side also feeds the stonetool utility, so
 *		it tolerates the quirks of files written by old
 *		captures (a stray 'u' after the SAMPLE_RATE record).
 *
 *----------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const stonefile_rec_size = 32

const stonefile_data_start = "DATA SECTION START              "

func stonefile_header_record(key string, value int64) []byte {
	return []byte(fmt.Sprintf("%-16s=%15d", key, value))
}

/*------------------------------------------------------------------
 *
 * Name:        stonefile_save
 *
 * Purpose:     Write one event record file.
 *
 * Inputs:   	path	- Destination file name.
 *		index	- Event sequence number.
 *		tv	- Wall clock time of the detection.
 *		fs	- Sample rate.
 *		x	- Chirp samples.
 *		snr	- Per sample linear SNR, same length as x.
 *		doppler	- Per sample radial velocity, same length as x.
 *
 *----------------------------------------------------------------*/

func stonefile_save(path string, index int, tv time.Time, fs uint, x []complex128, snr []float64, doppler []float64) error {

	Assert(len(snr) == len(x) && len(doppler) == len(x))

	var fp, err = os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open `%s' for writing: %w", path, err)
	}
	defer fp.Close()

	var header []byte
	header = append(header, stonefile_header_record("EVENT_INDEX", int64(index))...)
	header = append(header, stonefile_header_record("TIMESTAMP_SEC", tv.Unix())...)
	header = append(header, stonefile_header_record("TIMESTAMP_USEC", int64(tv.Nanosecond()/1000))...)
	header = append(header, stonefile_header_record("SAMPLE_RATE", int64(fs))...)
	header = append(header, stonefile_header_record("CAPTURE_LEN", int64(len(x)))...)
	header = append(header, stonefile_data_start...)

	if _, err = fp.Write(header); err != nil {
		return fmt.Errorf("failed to write header to `%s': %w", path, err)
	}

	/* The real valued sections use the real valued element size.
	 * Some very old captures used the complex stride for all three
	 * blocks, which misaligned everything past the I/Q section;
	 * nothing reads those files anymore. */
	var data = make([]byte, 0, 4*(2*len(x)+2*len(x)))

	for _, v := range x {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(real(v))))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(imag(v))))
	}
	for _, v := range snr {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
	}
	for _, v := range doppler {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
	}

	if _, err = fp.Write(data); err != nil {
		return fmt.Errorf("failed to write samples to `%s': %w", path, err)
	}

	return nil
}

type stonefile struct {
	index     int
	tv        time.Time
	samp_rate uint
	length    int

	iq      []complex64
	snr     []float32
	doppler []float32
}

/*------------------------------------------------------------------
 *
 * Name:        stonefile_parse_keys
 *
 * Purpose:     Parse the header records and data blocks of an event
 *		file image.
 *
 *----------------------------------------------------------------*/

func stonefile_parse_keys(sf *stonefile, bytes []byte) error {

	var p = 0
	var have_data = false
	var sec, usec int64

	for p+stonefile_rec_size <= len(bytes) {
		var record = string(bytes[p : p+stonefile_rec_size])
		p += stonefile_rec_size

		if record == stonefile_data_start {
			have_data = true
			break
		}

		var key, value, found = strings.Cut(record, "=")
		if !found {
			return fmt.Errorf("invalid metadata entry at offset %d", p-stonefile_rec_size)
		}

		key = strings.TrimRight(key, " ")
		value = strings.TrimSpace(value)

		switch key {
		case "EVENT_INDEX":
			var v, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s (%s)", key, value)
			}
			sf.index = v

		case "SAMPLE_RATE":
			var v, err = strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid %s (%s)", key, value)
			}
			sf.samp_rate = uint(v)

			/* Old captures wrote this record one byte long. */
			if p < len(bytes) && bytes[p] == 'u' {
				p++
			}

		case "TIMESTAMP_SEC":
			var v, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s (%s)", key, value)
			}
			sec = v

		case "TIMESTAMP_USEC":
			var v, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s (%s)", key, value)
			}
			usec = v

		case "CAPTURE_LEN":
			var v, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s (%s)", key, value)
			}
			sf.length = v
		}
	}

	if !have_data {
		return fmt.Errorf("file does not have a DATA section")
	}

	sf.tv = time.Unix(sec, usec*1000).UTC()

	if sf.length > 0 {
		var want = 4 * 4 * sf.length
		if len(bytes)-p < want {
			return fmt.Errorf("truncated data section: %d bytes, need %d", len(bytes)-p, want)
		}

		sf.iq = make([]complex64, sf.length)
		sf.snr = make([]float32, sf.length)
		sf.doppler = make([]float32, sf.length)

		for i := 0; i < sf.length; i++ {
			var re = math.Float32frombits(binary.LittleEndian.Uint32(bytes[p:]))
			var im = math.Float32frombits(binary.LittleEndian.Uint32(bytes[p+4:]))
			sf.iq[i] = complex(re, im)
			p += 8
		}
		for i := 0; i < sf.length; i++ {
			sf.snr[i] = math.Float32frombits(binary.LittleEndian.Uint32(bytes[p:]))
			p += 4
		}
		for i := 0; i < sf.length; i++ {
			sf.doppler[i] = math.Float32frombits(binary.LittleEndian.Uint32(bytes[p:]))
			p += 4
		}
	}

	return nil
}

func stonefile_load(path string) (*stonefile, error) {

	var bytes, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read `%s': %w", path, err)
	}

	var sf = new(stonefile)
	if err = stonefile_parse_keys(sf, bytes); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sf, nil
}

func (sf *stonefile) info(fp io.Writer) {

	fmt.Fprintf(fp, "Event number: %d\n", sf.index)
	fmt.Fprintf(fp, "Sample rate:  %d\n", sf.samp_rate)

	if sf.tv.Unix() > 0 {
		fmt.Fprintf(fp, "Timestamp:    %s (+%d usec)\n",
			sf.tv.Format("Mon Jan  2 15:04:05 2006"),
			sf.tv.Nanosecond()/1000)
	}

	if sf.samp_rate > 0 {
		fmt.Fprintf(fp, "Duration:     %g s\n", float64(sf.length)/float64(sf.samp_rate))
	} else {
		fmt.Fprintf(fp, "Duration:     %d samples\n", sf.length)
	}
}

func stonefile_dump_float_array(path string, data []float32) error {

	var fp, err = os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot open `%s' for writing: %w", path, err)
	}
	defer fp.Close()

	var out = make([]byte, 0, 4*len(data))
	for _, v := range data {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}

	if _, err = fp.Write(out); err != nil {
		return fmt.Errorf("write samples to `%s' failed: %w", path, err)
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:        dump_section
 *
 * Purpose:     Write one section of the event file as a raw float
 *		array (two floats per sample for "iq").
 *
 *----------------------------------------------------------------*/

func (sf *stonefile) dump_section(section string, path string) error {

	switch strings.ToLower(section) {
	case "doppler":
		return stonefile_dump_float_array(path, sf.doppler)

	case "snr":
		return stonefile_dump_float_array(path, sf.snr)

	case "iq":
		var flat = make([]float32, 0, 2*len(sf.iq))
		for _, v := range sf.iq {
			flat = append(flat, real(v), imag(v))
		}
		return stonefile_dump_float_array(path, flat)
	}

	return fmt.Errorf("unknown section `%s' (expected iq, snr or doppler)", section)
}
