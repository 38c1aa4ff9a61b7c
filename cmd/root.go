package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"video2midi/config"
	"video2midi/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "video2midi",
	Short: "Turns falling-note piano videos into MIDI",
	Long: `video2midi reads a falling-note piano tutorial frame by frame, works out
which keys each hand plays and writes the performance as MIDI, midicsv and JSON.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging.format (json or console)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// setup loads the configuration, applies the logging flags and builds the
// logger. Commands apply their own flags to the returned config.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return cfg, nil, err
	}
	log.Debug("configuration loaded", zap.String("source", cfg.Source))
	return cfg, log, nil
}
