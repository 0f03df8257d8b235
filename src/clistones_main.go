package clistones

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for CliStones, the automatic meteor echo
 *		detector:
 *
 *			Sound card capture of the receiver audio.
 *			Multi-channel chirp detector.
 *			Per-event binary capture files.
 *			Console + CSV event reporting with ZHR rates.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func ClistonesMain() {

	var device = pflag.StringP("device", "d", "default", "Sets the capture device to DEV")
	var dir = pflag.StringP("dir", "o", "", "Sets the output data directory to DIR")
	var snr = pflag.Float64P("snr", "s", 1, "Sets the SNR threshold for detection (dB)")
	var duration = pflag.Float64P("duration", "t", 0.25, "Sets the duration threshold in seconds")
	var zhr = pflag.UintP("zhr", "Z", 10, "Sets the ZHR report update interval (0 disables)")
	var config_path = pflag.StringP("config", "c", "", "Reads station configuration from FILE")

	pflag.Parse()

	var cfg = config_default()

	if *config_path != "" {
		var err error
		cfg, err = config_load(*config_path)
		if err != nil {
			log.Fatal("bad configuration", "err", err)
		}
	}

	/* Explicit flags win over the config file. */
	if pflag.CommandLine.Changed("device") {
		cfg.Device = *device
	}
	if pflag.CommandLine.Changed("dir") {
		cfg.OutputDir = *dir
	}
	if pflag.CommandLine.Changed("snr") {
		cfg.SNRDB = *snr
	}
	if pflag.CommandLine.Changed("duration") {
		cfg.DurationS = *duration
	}
	if pflag.CommandLine.Changed("zhr") {
		cfg.CycleLen = *zhr
	}

	var app, err = clistones_new(&cfg)
	if err != nil {
		log.Fatal("failed to create clistones object", "err", err)
	}
	defer app.destroy()

	fmt.Print(
		"Welcome to...\n" +
			"   _____ _ _  _____ _                        \n" +
			"  / ____| (_)/ ____| |                       \n" +
			" | |    | |_| (___ | |_ ___  _ __   ___  ___ \n" +
			" | |    | | |\\___ \\| __/ _ \\| '_ \\ / _ \\/ __|\n" +
			" | |____| | |____) | || (_) | | | |  __/\\__ \\\n" +
			"  \\_____|_|_|_____/ \\__\\___/|_| |_|\\___||___/\n" +
			"                                             \n" +
			"      The automatic meteor echo detector\n\n")
	fmt.Printf("  Listening samples from audio device \"%s\"\n", cfg.Device)
	fmt.Printf("  Data directory:  %s\n", app.data_directory())
	fmt.Printf("  SNR threshold:   %g dB\n", cfg.SNRDB)
	fmt.Printf("  Min duration:    %g seconds\n", cfg.DurationS)

	if cfg.CycleLen != 0 {
		fmt.Printf("  ZHR report update every %d events\n", cfg.CycleLen)
	} else {
		fmt.Printf("  ZHR reports disabled\n")
	}

	fmt.Printf("\n")

	var sigch = make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigch
		log.Info("shutting down")
		app.cancel()
	}()

	if err = app.loop(); err != nil {
		log.Fatal("capture loop failed", "err", err)
	}
}
