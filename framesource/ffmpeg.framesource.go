package framesource

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ffmpegBin  = "ffmpeg"
	ffprobeBin = "ffprobe"
)

// Extract decodes every frame of video into dir as numbered PNGs starting
// at frame 0. An empty dir extracts into a fresh scratch directory under the
// system temp dir.
func Extract(ctx context.Context, video, dir string) (*Dir, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "video2midi-"+uuid.NewString())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cmdArgs := []string{
		"-i", video,
		"-start_number", "0",
		"-vsync", "passthrough",
		"-y",
		filepath.Join(dir, DefaultPattern),
	}

	cmd := exec.CommandContext(ctx, ffmpegBin, cmdArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("error executing FFmpeg command: %s %s; %v: %s",
			ffmpegBin, strings.Join(cmdArgs, " "), err, lastLine(out))
	}

	return NewDir(dir, DefaultPattern, 0)
}

// ProbeFPS reads the frame rate of the first video stream, rounded to a
// whole number of frames per second.
func ProbeFPS(ctx context.Context, video string) (int, error) {
	cmdArgs := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		video,
	}

	out, err := exec.CommandContext(ctx, ffprobeBin, cmdArgs...).Output()
	if err != nil {
		return 0, fmt.Errorf("error executing ffprobe on %s: %v", video, err)
	}
	return parseRate(string(out))
}

// parseRate reads ffprobe rates such as "30/1" or "30000/1001".
func parseRate(s string) (int, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bad frame rate %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("bad frame rate %q", s)
	}

	var fps = int(math.Round(n / d))
	if fps <= 0 {
		return 0, fmt.Errorf("bad frame rate %q", s)
	}
	return fps, nil
}

func lastLine(out []byte) string {
	var lines = strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}

// Assemble encodes numbered PNG frames from dir into an H.264 video.
func Assemble(ctx context.Context, d *Dir, fps int, outputPath string) error {
	cmdArgs := []string{
		"-framerate", fmt.Sprintf("%d", fps),
		"-start_number", "0",
		"-i", filepath.Join(d.Dir(), d.pattern),
		"-preset", "veryfast",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-tune", "animation",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, ffmpegBin, cmdArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("error executing FFmpeg command: %s %s; %v: %s",
			ffmpegBin, strings.Join(cmdArgs, " "), err, lastLine(out))
	}
	return nil
}
