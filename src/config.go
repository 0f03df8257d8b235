package clistones

/*------------------------------------------------------------------
 *
 * Purpose:	Station configuration.
 *
 * Description:	Everything the command line can set, plus the detector
 *		tuning knobs that rarely change, can live in a small
 *		YAML file so a station runs unattended with a single
 *		-c option.  Command line flags override file values.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type detector_config struct {
	FC           float64 `yaml:"fc"`
	LPF1         float64 `yaml:"lpf1"`
	LPF2         float64 `yaml:"lpf2"`
	Threshold    float64 `yaml:"threshold"`
	Multiplicity int     `yaml:"multiplicity"`
}

type config struct {
	Device     string  `yaml:"device"`
	OutputDir  string  `yaml:"output_dir"`
	SNRDB      float64 `yaml:"snr_threshold_db"`
	DurationS  float64 `yaml:"duration_threshold"`
	CycleLen   uint    `yaml:"zhr_cycle_len"`
	FreqOffset float64 `yaml:"freq_offset"`

	Detector detector_config `yaml:"detector"`
}

func config_default() config {
	return config{
		Device:     "default",
		OutputDir:  "",
		SNRDB:      1,
		DurationS:  0.25,
		CycleLen:   10,
		FreqOffset: 1000,
		Detector: detector_config{
			FC:           1000,
			LPF1:         300,
			LPF2:         50,
			Threshold:    2,
			Multiplicity: 1,
		},
	}
}

/*------------------------------------------------------------------
 *
 * Name:        config_load
 *
 * Purpose:     Read a YAML config file over the defaults.
 *
 *----------------------------------------------------------------*/

func config_load(path string) (config, error) {

	var cfg = config_default()

	var data, err = os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file `%s': %w", path, err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file `%s': %w", path, err)
	}

	return cfg, nil
}

func (cfg *config) det_params() graves_det_params {
	var params = graves_det_params_default()

	params.fc = cfg.Detector.FC
	params.lpf1 = cfg.Detector.LPF1
	params.lpf2 = cfg.Detector.LPF2
	params.threshold = cfg.Detector.Threshold
	params.multiplicity = cfg.Detector.Multiplicity

	return params
}
