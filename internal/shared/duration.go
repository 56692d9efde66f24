package shared

import (
	"fmt"
	"regexp"
	"strconv"
)

// isoDuration matches the subset of ISO-8601 durations the YouTube Data API emits,
// e.g. PT4M13S, PT1H2M3S, P1DT2H or P0D for live streams.
var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration string into whole seconds.
//
// Missing components count as zero. Empty or malformed input yields 0.
func ParseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	part := func(i int) int {
		if m[i] == "" {
			return 0
		}
		n, err := strconv.Atoi(m[i])
		if err != nil {
			return 0
		}
		return n
	}

	return part(1)*86400 + part(2)*3600 + part(3)*60 + part(4)
}

// FormatDuration renders seconds as m:ss, or h:mm:ss for an hour or more.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Minutes converts seconds to fractional minutes.
func Minutes(seconds int) float64 {
	return float64(seconds) / 60
}
