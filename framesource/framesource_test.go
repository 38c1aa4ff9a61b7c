package framesource

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T, dir string, n int) {
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 4, 2))
		img.Set(0, 0, color.RGBA{uint8(i), 0, 0, 255})

		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%02d.png", i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
}

func TestDirCountsFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 12)

	d, err := NewDir(dir, "frame_%02d.png", 0)
	require.NoError(t, err)
	assert.Equal(t, 12, d.Len())

	img, err := d.Frame(7)
	require.NoError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.EqualValues(t, 7, r>>8)

	_, err = d.Frame(12)
	assert.Error(t, err)
}

func TestDirFixedCountReportsMissingFrame(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 3)

	d, err := NewDir(dir, "frame_%02d.png", 5)
	require.NoError(t, err)

	_, err = d.Frame(4)
	assert.Error(t, err)
}

func TestDirCorruptFrame(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame_0.png"), []byte("garbage"), 0o644))

	d, err := NewDir(dir, "", 0)
	require.NoError(t, err)

	_, err = d.Frame(0)
	assert.Error(t, err)
}

func TestNewDirEmpty(t *testing.T) {
	_, err := NewDir(t.TempDir(), "", 0)
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestDirRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	require.NoError(t, os.Mkdir(dir, 0o755))
	writeFrames(t, dir, 4)

	d, err := NewDir(dir, "frame_%02d.png", 0)
	require.NoError(t, err)
	require.NoError(t, d.Remove())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestParseRate(t *testing.T) {
	cases := map[string]int{
		"30/1\n":     30,
		"30000/1001": 30,
		"24000/1001": 24,
		"25":         25,
	}
	for in, want := range cases {
		got, err := parseRate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0/0", "abc", "0/1"} {
		_, err := parseRate(in)
		assert.Error(t, err, in)
	}
}

func TestExtractWithoutFFmpeg(t *testing.T) {
	old := ffmpegBin
	ffmpegBin = "video2midi-missing-ffmpeg"
	defer func() { ffmpegBin = old }()

	_, err := Extract(context.Background(), "song.mp4", t.TempDir())
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "song", BaseName("/videos/song.mp4"))
	assert.Equal(t, "song.v2", BaseName("song.v2.webm"))
}
