package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved command configuration. Precedence, highest first:
// flags, DOCXHTML_* environment variables (a .env file is loaded into the
// environment), docxhtml.yaml, defaults.
type Config struct {
	Output       string
	LogLevel     string
	LogFormat    string
	MaxInputSize int64
	DateLayout   string
	TimeLayout   string

	// Encode only.
	Header       string
	Footer       string
	HeaderHeight float64
	FooterHeight float64
	Title        string
	Author       string
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("output", "o", "", "output file (default: stdout for decode, <input>.docx for encode)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
	fs.Int64("max-input-size", 0, "reject inputs larger than this many bytes (0: no limit)")
	fs.String("date-layout", "", "Go layout for DATE fields without a picture")
	fs.String("time-layout", "", "Go layout for TIME fields without a picture")
	fs.String("header", "", "encode: HTML file for the page header")
	fs.String("footer", "", "encode: HTML file for the page footer")
	fs.Float64("header-height", 0, "encode: header strip height in cm")
	fs.Float64("footer-height", 0, "encode: footer strip height in cm")
	fs.String("title", "", "encode: document title")
	fs.String("author", "", "encode: document author")
	return fs
}

// loadConfig parses args and merges them with the environment and the
// optional config file. It returns the positional arguments.
func loadConfig(name string, args []string, stderr io.Writer) (*Config, []string, error) {
	// A missing .env is not an error.
	_ = godotenv.Load()

	fs := newFlagSet(name, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("DOCXHTML")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigName("docxhtml")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("reading config: %w", err)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		Output:       v.GetString("output"),
		LogLevel:     v.GetString("log-level"),
		LogFormat:    v.GetString("log-format"),
		MaxInputSize: v.GetInt64("max-input-size"),
		DateLayout:   v.GetString("date-layout"),
		TimeLayout:   v.GetString("time-layout"),
		Header:       v.GetString("header"),
		Footer:       v.GetString("footer"),
		HeaderHeight: v.GetFloat64("header-height"),
		FooterHeight: v.GetFloat64("footer-height"),
		Title:        v.GetString("title"),
		Author:       v.GetString("author"),
	}
	return cfg, fs.Args(), nil
}
