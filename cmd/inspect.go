package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"video2midi/converter"
	"video2midi/framesource"
	"video2midi/matrix"
	"video2midi/midifile"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspects a MIDI file, a matrices dump or a reference frame",
	Long: `Inspects a file produced or consumed by convert:
  .mid       tracks and note events
  .matrices  size and activity of both hands
  image      the key map calibration finds on it, with the current config`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var v any
		var err error

		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".mid", ".midi":
			v, err = inspectMIDI(args[0])
		case ".matrices":
			v, err = inspectMatrices(args[0])
		default:
			v, err = inspectReference(args[0])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	},
}

func inspectMIDI(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return midifile.Read(f)
}

type handStats struct {
	ActiveCells int `json:"activeCells"`
	ActiveKeys  int `json:"activeKeys"`
}

func statsOf(a *matrix.Activity) handStats {
	var s handStats
	for k := 0; k < a.Keys(); k++ {
		var used = false
		for _, on := range a.Column(k) {
			if on {
				s.ActiveCells++
				used = true
			}
		}
		if used {
			s.ActiveKeys++
		}
	}
	return s
}

func inspectMatrices(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := matrix.ReadDump(f)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"fps":    d.FPS,
		"frames": d.Left.Frames(),
		"keys":   d.Left.Keys(),
		"left":   statsOf(d.Left),
		"right":  statsOf(d.Right),
	}, nil
}

func inspectReference(path string) (any, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	ref, err := framesource.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s is not a MIDI file, a matrices dump or an image: %w", path, err)
	}

	conv, err := converter.New(cfg, converter.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	km, err := conv.Calibrate(ref)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"keys":    km.Len(),
		"lastKey": km.LastKey(),
		"entries": km.Entries(),
	}, nil
}
