package clistones

/*------------------------------------------------------------------
 *
 * Purpose:   	Utility program for inspecting event capture files.
 *
 * Description:	With one file argument, prints the event metadata.
 *		With --dump SECT and two file arguments, also writes
 *		the chosen section (iq, snr or doppler) as a raw
 *		float array for external plotting tools.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func StonetoolMain() {

	var flags = pflag.NewFlagSet("stonetool", pflag.ExitOnError)

	var dump = flags.StringP("dump", "d", "", "Dumps section SECT to a file")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [OPTIONS] FILE [OUTPUT]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		fmt.Fprint(os.Stderr, flags.FlagUsages())
	}

	flags.Parse(os.Args[1:])

	if *dump == "" {
		if flags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "%s: expected one file argument\n", os.Args[0])
			os.Exit(1)
		}

		var file, err = stonefile_load(flags.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
			os.Exit(1)
		}

		file.info(os.Stdout)
		return
	}

	if flags.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "%s: expected two file arguments\n", os.Args[0])
		os.Exit(1)
	}

	var file, err = stonefile_load(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}

	file.info(os.Stderr)

	if err = file.dump_section(*dump, flags.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}
