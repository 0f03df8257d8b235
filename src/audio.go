package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Interface to the sound card.
 *
 * Description:	The receiver's audio output is the only input of the
 *		whole program.  We capture single channel signed 16
 *		bit samples at 8000 Hz through portaudio, in blocks
 *		small enough that the detector keeps up with the wall
 *		clock.
 *
 *		Device selection: "default" (or empty) opens the
 *		system default capture device; anything else is
 *		matched against the portaudio device names, substring
 *		match, first hit wins.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

type audio_in struct {
	stream *portaudio.Stream
	buffer []int16
}

/*------------------------------------------------------------------
 *
 * Name:        audio_in_open
 *
 * Purpose:     Open the capture device and start the stream.
 *
 * Inputs:   	device	  - Capture device name or "default".
 *		fs	  - Sample rate, Hz.
 *		read_size - Samples per read.
 *
 *----------------------------------------------------------------*/

func audio_in_open(device string, fs uint, read_size int) (*audio_in, error) {

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("cannot initialize portaudio: %w", err)
	}

	var ain = &audio_in{
		buffer: make([]int16, read_size),
	}

	var err error

	if device == "" || device == "default" {
		ain.stream, err = portaudio.OpenDefaultStream(
			1, 0, float64(fs), len(ain.buffer), ain.buffer)
	} else {
		var dev *portaudio.DeviceInfo
		dev, err = audio_find_device(device)
		if err == nil {
			var params = portaudio.LowLatencyParameters(dev, nil)
			params.Input.Channels = 1
			params.SampleRate = float64(fs)
			params.FramesPerBuffer = len(ain.buffer)
			ain.stream, err = portaudio.OpenStream(params, ain.buffer)
		}
	}

	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("cannot open audio device `%s': %w", device, err)
	}

	if err = ain.stream.Start(); err != nil {
		ain.stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("cannot start capture on `%s': %w", device, err)
	}

	return ain, nil
}

func audio_find_device(name string) (*portaudio.DeviceInfo, error) {

	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		if dev.MaxInputChannels > 0 && strings.Contains(dev.Name, name) {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("no capture device matches `%s'", name)
}

/* Read one block.  The returned slice is reused by the next call. */
func (ain *audio_in) read() ([]int16, error) {

	if err := ain.stream.Read(); err != nil {
		return nil, fmt.Errorf("error while capturing samples: %w", err)
	}

	return ain.buffer, nil
}

func (ain *audio_in) close() {
	if ain.stream != nil {
		ain.stream.Stop()
		ain.stream.Close()
		ain.stream = nil
	}
	portaudio.Terminate()
}
