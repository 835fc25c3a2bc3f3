// Command gencast writes a deterministic synthetic CNV cast file for
// exercising the conversion and QC pipelines without instrument data.
// The profile is a smooth downcast with a fill sentinel and a
// temperature spike injected at fixed rows, so a QC run over the
// output has known findings.
//
// Usage:
//
//	gencast -output testdata/synthetic.cnv -rows 120
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const fillValue = -9.990e-29

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	output := flag.String("output", "", "output path for the synthetic CNV file")
	rows := flag.Int("rows", 120, "number of data rows to generate")
	flag.Parse()

	if *output == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -output")
	}
	if *rows < 1 {
		return fmt.Errorf("-rows must be positive")
	}

	var b strings.Builder
	writeHeader(&b, *rows)
	writeRows(&b, *rows)

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*output, []byte(b.String()), 0o600); err != nil {
		return err
	}
	log.Printf("wrote %s: %d rows", *output, *rows)
	return nil
}

func writeHeader(b *strings.Builder, rows int) {
	b.WriteString("* Sea-Bird SBE 9 Data File:\n")
	b.WriteString("* FileName = synthetic.hex\n")
	b.WriteString("* Temperature SN = 0000\n")
	b.WriteString("* NMEA Latitude = 60 05.92 N\n")
	b.WriteString("* NMEA Longitude = 003 44.17 E\n")
	b.WriteString("# nquan = 5\n")
	b.WriteString("# name 0 = timeJ: Julian Days\n")
	b.WriteString("# name 1 = prDM: Pressure, Digiquartz [db]\n")
	b.WriteString("# name 2 = tv290C: Temperature [ITS-90, deg C]\n")
	b.WriteString("# name 3 = sal00: Salinity, Practical [PSU]\n")
	b.WriteString("# name 4 = flECO-AFL: Fluorescence, WET Labs ECO-AFL/FL [mg/m^3]\n")
	fmt.Fprintf(b, "# bad_flag = %g\n", fillValue)
	b.WriteString("# start_time = Jun 02 2021 10:32:15 [NMEA time, header]\n")
	b.WriteString("*END*\n")
}

func writeRows(b *strings.Builder, rows int) {
	const (
		startJulian = 153.4390972 // Jun 02, fractional day
		interval    = 1.0 / 86400.0
	)

	for i := 0; i < rows; i++ {
		depth := float64(i) * 0.5
		pressure := depth * 1.007
		temp := 12.0 - 8.0*(depth/(depth+30.0))
		sal := 34.5 + 0.6*(depth/(depth+50.0))
		fluor := 2.0*math.Exp(-depth/25.0) + 0.05

		// Known defects for QC runs: a spike a third of the way down
		// and a dropped salinity sample two thirds of the way down.
		if i == rows/3 {
			temp += 2.5
		}
		salStr := fmt.Sprintf("%.4f", sal)
		if i == 2*rows/3 {
			salStr = fmt.Sprintf("%g", fillValue)
		}

		fmt.Fprintf(b, "%11.7f %9.3f %8.4f %s %8.4f\n",
			startJulian+float64(i)*interval, pressure, temp, salStr, fluor)
	}
}
