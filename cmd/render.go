package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"video2midi/framesource"
	"video2midi/keyboard"
	"video2midi/matrix"
	"video2midi/pianoroll"
)

var renderFlags struct {
	out     string
	video   string
	fps     int
	workers int
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.out, "out", "o", "rendered", "directory for the frames")
	f.StringVar(&renderFlags.video, "video", "", "also encode the frames into this video with ffmpeg")
	f.IntVar(&renderFlags.fps, "fps", 0, "frame rate of the demo and the video (default: the rate stored with the matrices)")
	f.IntVar(&renderFlags.workers, "workers", 0, "parallel renders, 0 = all cores")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [file.matrices]",
	Short: "Renders activity matrices as a falling-note video",
	Long: `Renders activity matrices as falling-note frames, with a clear reference
frame next to them. Without a matrices file a short two-hand scale is rendered,
together with its matrices, which makes a known input for convert.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		var dump matrix.Dump
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			dump, err = matrix.ReadDump(f)
			f.Close()
			if err != nil {
				return err
			}
		} else {
			dump = demoScale(30)
		}
		if renderFlags.fps > 0 {
			dump.FPS = renderFlags.fps
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		r, err := pianoroll.NewRenderer(pianoroll.DefaultLayout())
		if err != nil {
			return err
		}
		if err := r.RenderMatrices(ctx, renderFlags.out, dump.Left, dump.Right, pianoroll.RenderOptions{
			Workers: renderFlags.workers,
			Logger:  log,
		}); err != nil {
			return err
		}

		if len(args) == 0 {
			f, err := os.Create(filepath.Join(renderFlags.out, "demo.matrices"))
			if err != nil {
				return err
			}
			if err := matrix.WriteDump(f, dump); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}

		if renderFlags.video != "" {
			src, err := framesource.NewDir(renderFlags.out, "", dump.Left.Frames())
			if err != nil {
				return err
			}
			if err := framesource.Assemble(ctx, src, dump.FPS, renderFlags.video); err != nil {
				return err
			}
			log.Info("video written", zap.String("path", renderFlags.video))
		}

		l := r.Layout()
		fmt.Fprintf(cmd.OutOrStdout(), "frames: %s\nblackKeyHeight: %d\nwhiteKeyHeight: %d\nreadHeight: %d\n",
			renderFlags.out, l.BlackProbe(), l.WhiteProbe(), l.ReadHeight())
		return nil
	},
}

// demoScale is one octave of C major, the right hand going up while the left
// hand comes down an octave lower, one note every half second.
func demoScale(fps int) matrix.Dump {
	var up = []int{39, 41, 43, 44, 46, 48, 50, 51}
	var noteFrames = fps / 2
	var frames = noteFrames*len(up) + fps

	left := matrix.New(frames, keyboard.MaxKeys)
	right := matrix.New(frames, keyboard.MaxKeys)
	for i, key := range up {
		for f := i * noteFrames; f < (i+1)*noteFrames-2; f++ {
			right.Set(f, key, true)
			left.Set(f, up[len(up)-1-i]-12, true)
		}
	}
	return matrix.Dump{FPS: fps, Left: left, Right: right}
}
