package midifile

import (
	"context"
	"fmt"
	"os/exec"
)

var timidityBin = "timidity"

// RenderWav synthesizes a preview of a MIDI file next to it and returns the
// path of the wav.
func RenderWav(ctx context.Context, midiFilePath string) (string, error) {
	var outputPath = midiFilePath + ".wav"
	timidityCmdArgs := []string{
		midiFilePath, "-Ow",
		"--preserve-silence",
		"-o", outputPath,
	}

	cmd := exec.CommandContext(ctx, timidityBin, timidityCmdArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("error executing timidity: %v: %s", err, out)
	}

	return outputPath, nil
}
