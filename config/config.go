package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"video2midi/encoder"
	"video2midi/keyboard"
	"video2midi/logging"
	"video2midi/pixelcolor"
)

const DefaultFileName = "video2midi.yaml"

var ErrInvalid = errors.New("invalid configuration")

const (
	StrategyThreshold = "threshold"
	StrategyGeometry  = "geometry"
)

// Config is everything one conversion needs besides the frames themselves.
type Config struct {
	Song        SongConfig        `yaml:"song"`
	Frames      FramesConfig      `yaml:"frames"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Scan        ScanConfig        `yaml:"scan"`
	Colors      ColorsConfig      `yaml:"colors"`
	Tempo       encoder.Tempo     `yaml:"tempo"`
	// Workers bounds parallel frame scans. Zero means GOMAXPROCS.
	Workers int           `yaml:"workers"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`

	// Source is the file the configuration came from, or <defaults>.
	Source string `yaml:"-"`
}

type SongConfig struct {
	Name string `yaml:"name"`
	FPS  int    `yaml:"fps"`
}

type FramesConfig struct {
	// Video, when set, is decoded with ffmpeg into Dir before scanning.
	Video   string `yaml:"video"`
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
	// Count of zero counts the frames on disk.
	Count int `yaml:"count"`
	// ClearFrame is an image with nothing covering the keyboard. When empty
	// frame ClearIndex of the sequence is used.
	ClearFrame string `yaml:"clearFrame"`
	ClearIndex int    `yaml:"clearIndex"`
}

type CalibrationConfig struct {
	Strategy string `yaml:"strategy"`

	BlackKeyHeight int `yaml:"blackKeyHeight"`
	WhiteKeyHeight int `yaml:"whiteKeyHeight"`
	Threshold      int `yaml:"threshold"`
	Gap            int `yaml:"gap"`

	FirstNote        string  `yaml:"firstNote"`
	FirstWhiteColumn float64 `yaml:"firstWhiteColumn"`
	TenthWhiteColumn float64 `yaml:"tenthWhiteColumn"`
}

type ScanConfig struct {
	ReadHeight int `yaml:"readHeight"`
	Gap        int `yaml:"gap"`
}

// ColorsConfig holds RGB triples, 0-255 per channel.
type ColorsConfig struct {
	Background []int `yaml:"background"`
	Left       []int `yaml:"left"`
	Right      []int `yaml:"right"`
}

type OutputConfig struct {
	Dir  string `yaml:"dir"`
	MIDI bool   `yaml:"midi"`
	CSV  bool   `yaml:"csv"`
	JSON bool   `yaml:"json"`
	// Matrices writes the activity matrices so encode can run again later.
	Matrices bool `yaml:"matrices"`
	Wav      bool `yaml:"wav"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Song: SongConfig{Name: "song", FPS: 30},
		Frames: FramesConfig{
			Dir:     "frames",
			Pattern: "frame_%d.jpg",
		},
		Calibration: CalibrationConfig{
			Strategy:       StrategyThreshold,
			BlackKeyHeight: 620,
			WhiteKeyHeight: 690,
			Threshold:      150,
			Gap:            3,
			FirstNote:      "A",
		},
		Scan: ScanConfig{ReadHeight: 50, Gap: 3},
		Colors: ColorsConfig{
			Background: []int{33, 33, 33},
			Left:       []int{85, 123, 222},
			Right:      []int{255, 218, 225},
		},
		Tempo: encoder.DefaultTempo(),
		Output: OutputConfig{
			Dir:      "output",
			MIDI:     true,
			CSV:      true,
			JSON:     false,
			Matrices: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Source:  "<defaults>",
	}
}

// Load reads a YAML file over the defaults. With an empty path it tries
// DefaultFileName in the working directory and tolerates its absence.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", candidate, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", candidate, err)
	}
	cfg.Source = candidate

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c Config) Validate() error {
	if c.Song.FPS <= 0 {
		return invalid("song.fps must be positive, got %d", c.Song.FPS)
	}
	if c.Frames.Count < 0 {
		return invalid("frames.count must not be negative")
	}

	switch c.Calibration.Strategy {
	case StrategyThreshold:
		if c.Calibration.Threshold < 0 || c.Calibration.Threshold > 255 {
			return invalid("calibration.threshold must be in [0, 255], got %d", c.Calibration.Threshold)
		}
		if c.Calibration.Gap < 0 {
			return invalid("calibration.gap must not be negative")
		}
		if c.Calibration.BlackKeyHeight < 0 || c.Calibration.WhiteKeyHeight < 0 {
			return invalid("calibration key heights must not be negative")
		}
	case StrategyGeometry:
		if _, err := keyboard.PitchClass(c.Calibration.FirstNote); err != nil {
			return invalid("calibration.firstNote: %v", err)
		}
		if c.Calibration.TenthWhiteColumn <= c.Calibration.FirstWhiteColumn {
			return invalid("calibration.tenthWhiteColumn must be right of firstWhiteColumn")
		}
	default:
		return invalid("calibration.strategy must be %q or %q, got %q", StrategyThreshold, StrategyGeometry, c.Calibration.Strategy)
	}

	if c.Scan.ReadHeight < 1 {
		return invalid("scan.readHeight needs a row above it, got %d", c.Scan.ReadHeight)
	}
	if c.Scan.Gap < 0 {
		return invalid("scan.gap must not be negative")
	}

	if _, err := c.Classifier(); err != nil {
		return err
	}

	if err := c.Tempo.Validate(); err != nil {
		return invalid("tempo: %v", err)
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level: %v", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return invalid("logging.format: %v", err)
	}

	return nil
}

func toRGB(v []int) (pixelcolor.RGB, error) {
	if len(v) != 3 {
		return pixelcolor.RGB{}, fmt.Errorf("need 3 components, got %d", len(v))
	}
	var out pixelcolor.RGB
	for i, c := range v {
		if c < 0 || c > 255 {
			return pixelcolor.RGB{}, fmt.Errorf("component %d is %d, outside [0, 255]", i, c)
		}
		out[i] = uint8(c)
	}
	return out, nil
}

// Classifier builds the color classifier from the validated colors.
func (c Config) Classifier() (*pixelcolor.Classifier, error) {
	bg, err := toRGB(c.Colors.Background)
	if err != nil {
		return nil, invalid("colors.background: %v", err)
	}
	left, err := toRGB(c.Colors.Left)
	if err != nil {
		return nil, invalid("colors.left: %v", err)
	}
	right, err := toRGB(c.Colors.Right)
	if err != nil {
		return nil, invalid("colors.right: %v", err)
	}
	return pixelcolor.New(bg, left, right), nil
}

// Calibrator builds the configured calibration strategy.
func (c Config) Calibrator(log *zap.Logger) keyboard.Calibrator {
	if c.Calibration.Strategy == StrategyGeometry {
		return keyboard.NewGeometryCalibrator(keyboard.GeometryOptions{
			FirstNote:        c.Calibration.FirstNote,
			FirstWhiteColumn: c.Calibration.FirstWhiteColumn,
			TenthWhiteColumn: c.Calibration.TenthWhiteColumn,
		})
	}

	return keyboard.NewThresholdCalibrator(keyboard.ThresholdOptions{
		BlackKeyHeight: c.Calibration.BlackKeyHeight,
		WhiteKeyHeight: c.Calibration.WhiteKeyHeight,
		Threshold:      uint8(c.Calibration.Threshold),
		Gap:            c.Calibration.Gap,
		Logger:         log,
	})
}
