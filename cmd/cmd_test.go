package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video2midi/matrix"
	"video2midi/midifile"
)

const renderedConfig = `
song:
  fps: 30
calibration:
  strategy: threshold
  blackKeyHeight: 110
  whiteKeyHeight: 160
  threshold: 128
  gap: 4
scan:
  readHeight: 78
  gap: 3
colors:
  background: [30, 30, 30]
  left: [60, 120, 230]
  right: [70, 200, 90]
output:
  midi: true
  csv: true
  json: true
  matrices: true
logging:
  level: error
`

func run(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), strings.Join(args, " "))
	return out.String()
}

func TestDemoScale(t *testing.T) {
	d := demoScale(30)

	assert.Equal(t, 150, d.Left.Frames())
	assert.True(t, d.Right.At(0, 39))
	assert.True(t, d.Right.At(12, 39))
	assert.False(t, d.Right.At(13, 39))
	assert.True(t, d.Right.At(15, 41))
	assert.True(t, d.Left.At(0, 39))
	assert.True(t, d.Left.At(15, 38))
}

func TestRenderThenConvert(t *testing.T) {
	tmp := t.TempDir()
	frames := filepath.Join(tmp, "frames")
	out := filepath.Join(tmp, "out")
	cfgPath := filepath.Join(tmp, "video2midi.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(renderedConfig), 0o644))

	stdout := run(t, "render", "-c", cfgPath, "-o", frames)
	assert.Contains(t, stdout, "readHeight: 78")

	run(t, "convert", "demo",
		"-c", cfgPath,
		"--frames", frames,
		"--pattern", "frame_%d.png",
		"--clear", filepath.Join(frames, "clear.png"),
		"-o", out,
		"--no-progress",
	)

	f, err := os.Open(filepath.Join(out, "demo.matrices"))
	require.NoError(t, err)
	got, err := matrix.ReadDump(f)
	f.Close()
	require.NoError(t, err)

	want := demoScale(30)
	assert.Equal(t, 30, got.FPS)
	assert.True(t, want.Left.Equal(got.Left))
	assert.True(t, want.Right.Equal(got.Right))

	csv, err := os.ReadFile(filepath.Join(out, "demo_right.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "1, 0, Note_on_c, 0, 60, 127")

	mid, err := os.Open(filepath.Join(out, "demo_combined.mid"))
	require.NoError(t, err)
	defer mid.Close()
	sum, err := midifile.Read(mid)
	require.NoError(t, err)
	require.Len(t, sum.Tracks, 2)
	assert.Len(t, sum.Tracks[0].Notes, 16)
	assert.Len(t, sum.Tracks[1].Notes, 16)

	_, err = os.Stat(filepath.Join(out, "demo_left.json"))
	assert.NoError(t, err)
}
