// Package media extracts playback metadata from uploaded files by
// shelling out to ffprobe. Probe failures never fail an upload: the
// duration simply falls back to "00:00".
package media

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

// ZeroDuration is the fallback when ffprobe is unavailable or cannot
// read the file.
const ZeroDuration = "00:00"

// ProbeDuration returns the duration of the media file at path in
// MM:SS form. Any failure is logged and reported as ZeroDuration.
func ProbeDuration(ctx context.Context, path string) string {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path).Output()
	if err != nil {
		log.Printf("ffprobe failed for %s: %v", path, err)
		return ZeroDuration
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		log.Printf("ffprobe returned unparseable duration for %s: %q", path, out)
		return ZeroDuration
	}
	return FormatDuration(seconds)
}

// FormatDuration renders a duration in seconds as MM:SS, truncating
// fractional seconds. Durations of an hour or more keep accumulating
// minutes rather than rolling over.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return ZeroDuration
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
