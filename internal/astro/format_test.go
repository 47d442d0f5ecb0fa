package astro

import "testing"

func TestFormatRA(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "00h00m00s"},
		{6.75247, "06h45m09s"},  // Sirius
		{23.99999, "00h00m00s"}, // rounds up and wraps
		{-1, "23h00m00s"},
		{12.5, "12h30m00s"},
	}

	for _, tt := range tests {
		if got := FormatRA(tt.hours); got != tt.want {
			t.Errorf("FormatRA(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestFormatDec(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "+00°00'00\""},
		{-16.716, "-16°42'58\""},
		{89.264, "+89°15'50\""},
		{-0.5, "-00°30'00\""},
		{45.99999, "+46°00'00\""},
	}

	for _, tt := range tests {
		if got := FormatDec(tt.deg); got != tt.want {
			t.Errorf("FormatDec(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}

func TestFormatAzimuth(t *testing.T) {
	tests := []struct {
		az   float64
		want string
	}{
		{0, "N"},
		{11, "N"},
		{12, "NNE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{350, "N"},
		{-90, "W"},
		{720, "N"},
	}

	for _, tt := range tests {
		if got := FormatAzimuth(tt.az); got != tt.want {
			t.Errorf("FormatAzimuth(%v) = %q, want %q", tt.az, got, tt.want)
		}
	}
}
