package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"video2midi/config"
	"video2midi/encoder"
	"video2midi/matrix"
	"video2midi/midifile"
)

// writeOutputs writes every enabled rendering of the song into the output
// directory and returns the paths written.
func writeOutputs(ctx context.Context, cfg config.Config, song encoder.Song, dump *matrix.Dump, log *zap.Logger) ([]string, error) {
	var dir = cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written = []string{}
	var create = func(name string, write func(f *os.File) error) error {
		var path = filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for _, out := range song.Outputs() {
		var base = fmt.Sprintf("%s_%s", cfg.Song.Name, out.Name)
		out := out

		if cfg.Output.CSV {
			if err := create(base+".csv", func(f *os.File) error { return out.WriteCSV(f) }); err != nil {
				return written, err
			}
		}
		if cfg.Output.MIDI {
			if err := create(base+".mid", func(f *os.File) error { return midifile.Write(f, out) }); err != nil {
				return written, err
			}
			if cfg.Output.Wav {
				wav, err := midifile.RenderWav(ctx, filepath.Join(dir, base+".mid"))
				if err != nil {
					log.Warn("wav preview skipped", zap.Error(err))
				} else {
					written = append(written, wav)
				}
			}
		}
		if cfg.Output.JSON {
			if err := create(base+".json", func(f *os.File) error {
				enc := json.NewEncoder(f)
				enc.SetIndent("", "  ")
				return enc.Encode(midifile.ToJSON(out))
			}); err != nil {
				return written, err
			}
		}
	}

	if cfg.Output.Matrices && dump != nil {
		if err := create(cfg.Song.Name+".matrices", func(f *os.File) error { return matrix.WriteDump(f, *dump) }); err != nil {
			return written, err
		}
	}

	log.Info("outputs written", zap.String("dir", dir), zap.Int("files", len(written)))
	return written, nil
}
