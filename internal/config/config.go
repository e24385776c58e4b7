package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"blotch-banisher/internal/inpaint"
)

var ErrMissingImage = errors.New("no image path given")

// Config carries everything the tool needs at startup. Sources stack
// in precedence order: built-in defaults, then the YAML file, then
// environment variables, then explicitly set flags.
type Config struct {
	ImagePath  string `yaml:"image"`
	Method     string `yaml:"method"`
	Radius     int    `yaml:"radius"`
	Debug      bool   `yaml:"debug"`
	Production bool   `yaml:"production"`
	JSONLogs   bool   `yaml:"json_logs"`
	Trail      bool   `yaml:"trail"`
	TrailDir   string `yaml:"trail_dir"`
}

func Default() Config {
	return Config{
		Method:   inpaint.MethodTelea.String(),
		Radius:   inpaint.DefaultRadius,
		TrailDir: ".",
	}
}

// LoadFile overlays the YAML file onto the config. Fields absent from
// the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overlays the BLOTCH_* environment toggles.
func (c *Config) ApplyEnv() {
	if os.Getenv("BLOTCH_DEBUG") == "true" {
		c.Debug = true
	}
	if os.Getenv("BLOTCH_PRODUCTION") == "true" {
		c.Production = true
	}
	if os.Getenv("BLOTCH_JSON_LOGS") == "true" {
		c.JSONLogs = true
	}
	if os.Getenv("BLOTCH_TRAIL") == "true" {
		c.Trail = true
	}
	if dir := os.Getenv("BLOTCH_TRAIL_DIR"); dir != "" {
		c.TrailDir = dir
	}
}

func (c *Config) Validate() error {
	if c.ImagePath == "" {
		return ErrMissingImage
	}

	if _, err := inpaint.ParseMethod(c.Method); err != nil {
		return err
	}

	if c.Radius < inpaint.MinRadius || c.Radius > inpaint.MaxRadius {
		return fmt.Errorf("radius %d out of range [%d, %d]", c.Radius, inpaint.MinRadius, inpaint.MaxRadius)
	}

	return nil
}

// ParseFlags builds the effective config from the command line. The
// image path is the positional argument; flags beat the YAML file and
// environment because they are the most deliberate choice.
func ParseFlags(name string, args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "path to YAML config file")
	method := fs.String("method", cfg.Method, "inpainting method: telea or ns")
	radius := fs.Int("radius", cfg.Radius, "patch radius in pixels")
	debug := fs.Bool("debug", false, "enable debug logging and resource trackers")
	jsonLogs := fs.Bool("json-logs", false, "emit logs as JSON instead of console lines")
	trail := fs.Bool("trail", false, "write a click-trail PNG on exit")
	trailDir := fs.String("trail-dir", cfg.TrailDir, "directory for the click-trail PNG")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] IMAGE\n\n", name)
		fmt.Fprintf(fs.Output(), "Click a blotch to banish it. Press Escape to quit.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	// Parse errors are already printed by the flag package; print the
	// rest here so callers only have to branch on the returned error.
	fail := func(err error) (Config, error) {
		fmt.Fprintf(output, "%s: %v\n", name, err)
		return cfg, err
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return fail(err)
		}
	}

	cfg.ApplyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Method = *method
		case "radius":
			cfg.Radius = *radius
		case "debug":
			cfg.Debug = *debug
		case "json-logs":
			cfg.JSONLogs = *jsonLogs
		case "trail":
			cfg.Trail = *trail
		case "trail-dir":
			cfg.TrailDir = *trailDir
		}
	})

	switch fs.NArg() {
	case 0:
		// The YAML file may have supplied the path.
	case 1:
		cfg.ImagePath = fs.Arg(0)
	default:
		return fail(fmt.Errorf("unexpected arguments: %v", fs.Args()[1:]))
	}

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	return cfg, nil
}
