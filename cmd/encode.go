package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"video2midi/converter"
	"video2midi/framesource"
	"video2midi/matrix"
)

var encodeFlags struct {
	out string
	fps int
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeFlags.out, "out", "o", "", "output directory (overrides output.dir)")
	encodeCmd.Flags().IntVar(&encodeFlags.fps, "fps", 0, "frames per second (default: the rate stored with the matrices)")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <file.matrices>",
	Short: "Encodes activity matrices from an earlier scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		dump, err := matrix.ReadDump(f)
		f.Close()
		if err != nil {
			return err
		}

		if encodeFlags.fps > 0 {
			dump.FPS = encodeFlags.fps
		}
		if encodeFlags.out != "" {
			cfg.Output.Dir = encodeFlags.out
		}
		if !cmd.Flags().Changed("config") && cfg.Song.Name == "song" {
			cfg.Song.Name = framesource.BaseName(args[0])
		}
		cfg.Song.FPS = dump.FPS
		cfg.Output.Matrices = false

		conv, err := converter.New(cfg, converter.Options{Logger: log})
		if err != nil {
			return err
		}
		song, err := conv.Encode(dump.Left, dump.Right, dump.FPS)
		if err != nil {
			return err
		}

		written, err := writeOutputs(context.Background(), cfg, song, nil, log)
		if err != nil {
			return err
		}
		for _, p := range written {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
