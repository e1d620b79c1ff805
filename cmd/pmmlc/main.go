// Command pmmlc compiles a three-channel MML source file into the PSG
// driver's binary object file.
package main

import (
	"bufio"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/andkrau/p6psgmmlc-go/internal/driver"
	"github.com/andkrau/p6psgmmlc-go/internal/objfile"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

type cliFlags struct {
	BaseAddr string
	Input    string
	Output   string
}

func parseFlags() cliFlags {
	var f cliFlags
	pflag.StringVarP(&f.BaseAddr, "base", "b", "0", "base address for the compiled object (decimal, 0x hex, or 0 octal)")
	pflag.Parse()

	if pflag.NArg() != 2 {
		logger.Fatal("usage: pmmlc [-b addr] input.mml output.bin")
	}
	f.Input = pflag.Arg(0)
	f.Output = pflag.Arg(1)
	return f
}

func parseBaseAddr(s string) (uint16, bool) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil || v < 0 || v > 0xFFFF {
		return 0, false
	}
	return uint16(v), true
}

func main() {
	f := parseFlags()

	base, ok := parseBaseAddr(f.BaseAddr)
	if !ok {
		logger.Fatal("base address out of range 0..0xFFFF", "value", f.BaseAddr)
	}

	in, err := os.Open(f.Input)
	if err != nil {
		logger.Fatal("failed to open input", "path", f.Input, "err", err)
	}
	defer in.Close()

	d := driver.New()
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		d.ProcessLine(lineNo, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal("failed reading input", "path", f.Input, "err", err)
	}

	results, ok := d.Finish()
	if !ok {
		for i, r := range results {
			if r.Err == nil {
				continue
			}
			logger.Error("compile error",
				"channel", channelLetter(i),
				"line", r.LineNo,
				"col", r.Err.Column,
				"kind", r.Err.Kind.String(),
				"msg", r.Err.Msg,
			)
			if r.Line != "" {
				logger.Error(driver.FormatDiagnostic(r.Err, r.Line))
			}
		}
		logger.Fatal("compile failed, no output written")
	}

	var channels [3][]byte
	for i, r := range results {
		channels[i] = r.Bytes
	}
	out := objfile.Assemble(base, channels)

	if err := os.WriteFile(f.Output, out, 0o644); err != nil {
		logger.Fatal("failed to write output", "path", f.Output, "err", err)
	}
	logger.Info("compiled", "output", f.Output, "bytes", len(out))
}

func channelLetter(i int) string {
	return string(rune('D' + i))
}
