package astro

import (
	"fmt"
	"math"
)

// FormatRA formats right ascension hours as "06h45m09s".
func FormatRA(hours float64) string {
	total := int(math.Round(NormalizeHours(hours) * 3600))
	total %= 24 * 3600
	return fmt.Sprintf("%02dh%02dm%02ds", total/3600, total/60%60, total%60)
}

// FormatDec formats declination degrees as "-16°42'58\"".
func FormatDec(deg float64) string {
	sign := '+'
	if deg < 0 {
		sign = '-'
	}
	total := int(math.Round(math.Abs(deg) * 3600))
	return fmt.Sprintf("%c%02d°%02d'%02d\"", sign, total/3600, total/60%60, total%60)
}

// FormatAzimuth returns the 16-point compass direction for an azimuth.
func FormatAzimuth(azDeg float64) string {
	points := [...]string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	return points[int(math.Round(NormalizeDegrees(azDeg)/22.5))%16]
}
