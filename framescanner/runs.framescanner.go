package framescanner

import "video2midi/pixelcolor"

type run struct {
	mid  int
	hand pixelcolor.Hand
}

// denoise resets every interior pixel that differs from both neighbours.
// Decisions read the unmodified row so one reset never feeds the next.
func denoise(row []pixelcolor.Hand) {
	if len(row) < 3 {
		return
	}

	var prev = row[0]
	for i := 1; i < len(row)-1; i++ {
		var cur = row[i]
		if cur != prev && cur != row[i+1] {
			row[i] = pixelcolor.Background
		}
		prev = cur
	}
}

// findRuns returns the colored runs of row longer than gap. A run is closed
// by the next change of class; a run still open at the right edge is not a
// note because its extent is unknown.
func findRuns(row []pixelcolor.Hand, gap int) []run {
	var runs = []run{}
	var runStart = 0

	for i := 1; i < len(row); i++ {
		if row[i] == row[i-1] {
			continue
		}

		if row[i-1] != pixelcolor.Background && i-runStart > gap {
			var mid = runStart + (i-runStart)/2
			runs = append(runs, run{mid: mid, hand: row[mid]})
		}

		if row[i] != pixelcolor.Background {
			runStart = i
		}
	}

	return runs
}
