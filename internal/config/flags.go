package config

import (
	"flag"
	"io"
)

// Flags holds the global rosetool flags. They come before the command name:
//
//	rosetool -debug -workers 4 verify 3DDATA/
var Flags = flag.NewFlagSet("rosetool", flag.ContinueOnError)

var (
	flagConfig  = Flags.String("config", "", "Path to config file")
	flagDebug   = Flags.Bool("debug", false, "Enable debug logging")
	flagLogFile = Flags.String("log-file", "", "Also write logs to this file")
	flagWorkers = Flags.Int("workers", 0, "Concurrent decoders for verify")
	flagFormat  = Flags.String("format", "", "Output format: text, yaml or spew")
)

// ParseFlags parses global flags from args and returns the rest, starting
// with the command name.
func ParseFlags(args []string) ([]string, error) {
	if err := Flags.Parse(args); err != nil {
		return nil, err
	}
	return Flags.Args(), nil
}

// PrintDefaults writes the global flag help to w. Parse errors keep going
// to the output set with Flags.SetOutput.
func PrintDefaults(w io.Writer) {
	prev := Flags.Output()
	Flags.SetOutput(w)
	Flags.PrintDefaults()
	Flags.SetOutput(prev)
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagWorkers > 0 {
		cfg.Inspect.Workers = *flagWorkers
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
}
