package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/richinsley/goshadereffect/uniforms"
)

const (
	ModeView     = "view"
	ModeRecord   = "record"
	ModeSnapshot = "snapshot"
)

// EffectOptions is fixed once the scene is initialized.
type EffectOptions struct {
	Effect           string               `toml:"effect" yaml:"effect"`
	Image            string               `toml:"image" yaml:"image"`
	TextureRectangle bool                 `toml:"texture_rectangle" yaml:"texture_rectangle"`
	Debug            bool                 `toml:"debug" yaml:"debug"`
	Parameters       map[string][]float32 `toml:"parameters" yaml:"parameters"`

	Width         int     `toml:"width" yaml:"width"`
	Height        int     `toml:"height" yaml:"height"`
	RotationSpeed float64 `toml:"rotation_speed" yaml:"rotation_speed"` // degrees per second
	Resources     string  `toml:"resources" yaml:"resources"`           // directory overriding the embedded library
	HotReload     bool    `toml:"hot_reload" yaml:"hot_reload"`
	Headless      bool    `toml:"headless" yaml:"headless"` // EGL context for record and snapshot

	Mode       string  `toml:"mode" yaml:"mode"`
	Duration   float64 `toml:"duration" yaml:"duration"`
	FPS        int     `toml:"fps" yaml:"fps"`
	Output     string  `toml:"output" yaml:"output"`
	FFmpegPath string  `toml:"ffmpeg" yaml:"ffmpeg"`
	Codec      string  `toml:"codec" yaml:"codec"`

	// Command line only.
	ConfigFile string   `toml:"-" yaml:"-"`
	Overrides  []string `toml:"-" yaml:"-"`
	List       bool     `toml:"-" yaml:"-"`
	Help       bool     `toml:"-" yaml:"-"`
}

func Defaults() *EffectOptions {
	return &EffectOptions{
		Effect:           "passthrough",
		Image:            "checker",
		TextureRectangle: true,
		Width:            800,
		Height:           600,
		RotationSpeed:    30,
		Mode:             ModeView,
		Duration:         10,
		FPS:              30,
		Codec:            "h264",
	}
}

type overrideList struct {
	values *[]string
}

func (o overrideList) String() string {
	if o.values == nil {
		return ""
	}
	return strings.Join(*o.values, " ")
}

// Set only collects; values are checked by ParameterOverrides so that a
// malformed one surfaces as a *uniforms.ParseError.
func (o overrideList) Set(s string) error {
	*o.values = append(*o.values, s)
	return nil
}

// Bind registers the command line flags on fs, writing into o.
func (o *EffectOptions) Bind(fs *flag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "Configuration file (.toml, .yaml or .yml)")
	fs.StringVar(&o.Effect, "effect", o.Effect, "Effect name")
	fs.StringVar(&o.Image, "image", o.Image, "Image name")
	fs.BoolVar(&o.TextureRectangle, "rect", o.TextureRectangle, "Use rectangle textures with texel coordinates")
	fs.BoolVar(&o.Debug, "debug", o.Debug, "Enable debug logging, including shader compiler logs")
	fs.Var(overrideList{&o.Overrides}, "param", "Parameter name=v1[,v2,...] for uniforms the effect's properties file does not set; may be repeated")
	fs.IntVar(&o.Width, "width", o.Width, "Width of the window or output")
	fs.IntVar(&o.Height, "height", o.Height, "Height of the window or output")
	fs.Float64Var(&o.RotationSpeed, "speed", o.RotationSpeed, "Rotation speed in degrees per second")
	fs.StringVar(&o.Resources, "resources", o.Resources, "Directory with effects/ and images/ used instead of the bundled ones")
	fs.BoolVar(&o.HotReload, "reload", o.HotReload, "Rebuild the scene when files under -resources change")
	fs.BoolVar(&o.Headless, "headless", o.Headless, "Use an EGL context instead of a hidden window (record and snapshot, linux)")
	fs.StringVar(&o.Mode, "mode", o.Mode, "Mode: view, record or snapshot")
	fs.Float64Var(&o.Duration, "duration", o.Duration, "Duration to record in seconds")
	fs.IntVar(&o.FPS, "fps", o.FPS, "Frames per second for recording")
	fs.StringVar(&o.Output, "output", o.Output, "Output file (default effect.mp4 or effect.png)")
	fs.StringVar(&o.FFmpegPath, "ffmpeg", o.FFmpegPath, "Path to ffmpeg executable")
	fs.StringVar(&o.Codec, "codec", o.Codec, "Video codec for recording: h264 or hevc")
	fs.BoolVar(&o.List, "list", false, "List available effects and images")
	fs.BoolVar(&o.Help, "help", false, "Show help message")
}

// Parse layers defaults, the optional -config file and the flags in args,
// later layers winning. Nothing is printed: flag errors, config file errors
// and malformed -param values are all returned, and -h yields flag.ErrHelp.
func Parse(name string, args []string) (*EffectOptions, error) {
	opts := Defaults()
	if err := opts.parseFlags(name, args); err != nil {
		return nil, err
	}
	if configFile := opts.ConfigFile; configFile != "" {
		opts = Defaults()
		if err := opts.LoadFile(configFile); err != nil {
			return nil, err
		}
		if err := opts.parseFlags(name, args); err != nil {
			return nil, err
		}
	}
	if _, err := opts.ParameterOverrides(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *EffectOptions) parseFlags(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o.Bind(fs)
	return fs.Parse(args)
}

// Usage writes the flag documentation to w.
func Usage(name string, w io.Writer) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	Defaults().Bind(fs)
	fs.PrintDefaults()
}

// LoadFile reads settings from a TOML or YAML file on top of o.
func (o *EffectOptions) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, o)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ParameterOverrides returns the uniform values from the config file
// overlaid with the -param flags.
func (o *EffectOptions) ParameterOverrides() (uniforms.Parameters, error) {
	params := uniforms.Parameters{}
	for name, values := range o.Parameters {
		if err := params.Set(name, values...); err != nil {
			return nil, err
		}
	}
	for _, s := range o.Overrides {
		name, values, err := uniforms.ParseOverride(s)
		if err != nil {
			return nil, err
		}
		params[name] = values
	}
	return params, nil
}

// OutputFile returns Output or the default for the current mode.
func (o *EffectOptions) OutputFile() string {
	if o.Output != "" {
		return o.Output
	}
	if o.Mode == ModeSnapshot {
		return "effect.png"
	}
	return "effect.mp4"
}

func (o *EffectOptions) Validate() error {
	var errs []error
	switch o.Mode {
	case ModeView, ModeRecord, ModeSnapshot:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", o.Mode))
	}
	if o.Effect == "" {
		errs = append(errs, errors.New("effect name is required"))
	}
	if o.Image == "" {
		errs = append(errs, errors.New("image name is required"))
	}
	if o.Width <= 0 || o.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", o.Width, o.Height))
	}
	if o.Mode == ModeRecord {
		if o.FPS <= 0 {
			errs = append(errs, fmt.Errorf("invalid fps %d", o.FPS))
		}
		if o.Duration <= 0 {
			errs = append(errs, fmt.Errorf("invalid duration %v", o.Duration))
		}
		if o.Codec != "h264" && o.Codec != "hevc" {
			errs = append(errs, fmt.Errorf("unknown codec %q", o.Codec))
		}
	}
	if o.Headless && o.Mode == ModeView {
		errs = append(errs, errors.New("headless rendering needs record or snapshot mode"))
	}
	if o.HotReload && o.Resources == "" {
		errs = append(errs, errors.New("hot reload requires a resources directory"))
	}
	return errors.Join(errs...)
}
