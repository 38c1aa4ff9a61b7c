package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"video2midi/config"
	"video2midi/converter"
	"video2midi/framesource"
	"video2midi/matrix"
)

var convertFlags struct {
	video      string
	frames     string
	pattern    string
	count      int
	clear      string
	fps        int
	out        string
	workers    int
	keepFrames bool
	noProgress bool
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFlags.video, "video", "", "video file to decode with ffmpeg (overrides frames.video)")
	f.StringVar(&convertFlags.frames, "frames", "", "directory of numbered frames (overrides frames.dir)")
	f.StringVar(&convertFlags.pattern, "pattern", "", "frame file name pattern, e.g. frame_%d.jpg")
	f.IntVar(&convertFlags.count, "count", 0, "number of frames, 0 counts them")
	f.StringVar(&convertFlags.clear, "clear", "", "reference image with nothing covering the keyboard")
	f.IntVar(&convertFlags.fps, "fps", 0, "frames per second (probed from --video when unset)")
	f.StringVarP(&convertFlags.out, "out", "o", "", "output directory (overrides output.dir)")
	f.IntVar(&convertFlags.workers, "workers", -1, "parallel frame scans, 0 = all cores")
	f.BoolVar(&convertFlags.keepFrames, "keep-frames", false, "keep frames extracted from --video")
	f.BoolVar(&convertFlags.noProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert [song-name]",
	Short: "Scans a frame sequence and writes the song",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if len(args) == 1 {
			cfg.Song.Name = args[0]
		}
		applyConvertFlags(&cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return convert(ctx, cmd, cfg, log)
	},
}

func applyConvertFlags(cfg *config.Config) {
	if convertFlags.video != "" {
		cfg.Frames.Video = convertFlags.video
	}
	if convertFlags.frames != "" {
		cfg.Frames.Dir = convertFlags.frames
	}
	if convertFlags.pattern != "" {
		cfg.Frames.Pattern = convertFlags.pattern
	}
	if convertFlags.count > 0 {
		cfg.Frames.Count = convertFlags.count
	}
	if convertFlags.clear != "" {
		cfg.Frames.ClearFrame = convertFlags.clear
	}
	if convertFlags.fps > 0 {
		cfg.Song.FPS = convertFlags.fps
	}
	if convertFlags.out != "" {
		cfg.Output.Dir = convertFlags.out
	}
	if convertFlags.workers >= 0 {
		cfg.Workers = convertFlags.workers
	}
}

func convert(ctx context.Context, cmd *cobra.Command, cfg config.Config, log *zap.Logger) error {
	var src *framesource.Dir
	var err error

	if cfg.Frames.Video != "" {
		if cfg.Song.Name == "" || cfg.Song.Name == config.Default().Song.Name {
			cfg.Song.Name = framesource.BaseName(cfg.Frames.Video)
		}
		if !cmd.Flags().Changed("fps") {
			fps, err := framesource.ProbeFPS(ctx, cfg.Frames.Video)
			if err != nil {
				return err
			}
			cfg.Song.FPS = fps
			log.Info("probed frame rate", zap.Int("fps", fps))
		}

		var dir = ""
		if cmd.Flags().Changed("frames") {
			dir = cfg.Frames.Dir
		}
		log.Info("extracting frames", zap.String("video", cfg.Frames.Video))
		src, err = framesource.Extract(ctx, cfg.Frames.Video, dir)
		if err != nil {
			return err
		}
		if !convertFlags.keepFrames {
			defer func() {
				if err := src.Remove(); err != nil {
					log.Warn("remove extracted frames", zap.Error(err))
				}
			}()
		}
	} else {
		src, err = framesource.NewDir(cfg.Frames.Dir, cfg.Frames.Pattern, cfg.Frames.Count)
		if err != nil {
			return err
		}
	}

	ref, err := loadReference(cfg, src)
	if err != nil {
		return err
	}

	var opts = converter.Options{Logger: log}
	if !convertFlags.noProgress {
		bar := pb.StartNew(src.Len())
		defer bar.Finish()
		opts.Progress = func(done, total int) { bar.Increment() }
	}

	conv, err := converter.New(cfg, opts)
	if err != nil {
		return err
	}

	res, err := conv.Convert(ctx, ref, src)
	if err != nil {
		return err
	}

	written, err := writeOutputs(ctx, cfg, res.Song, &matrix.Dump{FPS: cfg.Song.FPS, Left: res.Left, Right: res.Right}, log)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func loadReference(cfg config.Config, src matrix.FrameSource) (image.Image, error) {
	if cfg.Frames.ClearFrame != "" {
		return framesource.LoadImage(cfg.Frames.ClearFrame)
	}
	if cfg.Frames.ClearIndex < 0 || cfg.Frames.ClearIndex >= src.Len() {
		return nil, fmt.Errorf("frames.clearIndex %d outside [0, %d)", cfg.Frames.ClearIndex, src.Len())
	}
	ref, err := src.Frame(cfg.Frames.ClearIndex)
	if err != nil {
		return nil, fmt.Errorf("reference frame: %w", err)
	}
	return ref, nil
}
