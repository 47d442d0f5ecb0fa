package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/ephem"
	"github.com/litescript/ls-starmap/internal/state"
	"github.com/litescript/ls-starmap/internal/version"
)

// greenwichArgs pins the observer and display zone so output is stable.
var greenwichArgs = []string{"--observer", "Greenwich", "--lat", "51.4769", "--lon=-0.0005", "--tz", "UTC"}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func withGreenwich(args ...string) []string {
	return append(args, greenwichArgs...)
}

func TestCommands_Registered(t *testing.T) {
	want := []string{"lst", "altaz", "riseset", "trace", "ecliptic", "planets", "moon",
		"almanac", "compare", "tui", "sites", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected %q subcommand to be registered on rootCmd", name)
		}
	}
}

func TestCommands_Flags(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		flag string
	}{
		{rootCmd, "config"},
		{rootCmd, "log-level"},
		{rootCmd, "site"},
		{rootCmd, "sites-file"},
		{rootCmd, "lat"},
		{rootCmd, "lon"},
		{rootCmd, "elevation"},
		{rootCmd, "catalog"},
		{rootCmd, "time"},
		{rootCmd, "tz"},
		{rootCmd, "horizons-url"},
		{altazCmd, "ra"},
		{altazCmd, "dec"},
		{altazCmd, "source"},
		{traceCmd, "window"},
		{traceCmd, "step"},
		{eclipticCmd, "step"},
		{almanacCmd, "json"},
		{almanacCmd, "mini-sky"},
		{almanacCmd, "watch"},
		{almanacCmd, "events"},
		{almanacCmd, "mag"},
		{almanacCmd, "up"},
		{almanacCmd, "constellation"},
		{compareCmd, "span"},
		{compareCmd, "step"},
		{compareCmd, "helio"},
		{tuiCmd, "rate"},
		{tuiCmd, "mag"},
		{tuiCmd, "frame"},
		{tuiCmd, "no-labels"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name()+"/"+tt.flag, func(t *testing.T) {
			f := tt.cmd.Flags().Lookup(tt.flag)
			if f == nil {
				f = tt.cmd.PersistentFlags().Lookup(tt.flag)
			}
			if f == nil {
				t.Errorf("expected flag %q to be registered on %s", tt.flag, tt.cmd.Name())
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2024-06-21T12:00:00Z", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), false},
		{"rfc3339 offset", "2024-06-21T21:00:00+09:00", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), false},
		{"local minutes", "2024-06-21 21:00", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), false},
		{"local T", "2024-06-21T21:00", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), false},
		{"date only", "2024-06-21", time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC), false},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.in, tokyo)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.in, got.UTC(), tt.want)
			}
		})
	}

	for _, in := range []string{"", "now", " NOW "} {
		got, err := parseTime(in, tokyo)
		if err != nil {
			t.Fatal(err)
		}
		if d := time.Since(got); d < 0 || d > time.Second {
			t.Errorf("parseTime(%q) is %v from now", in, d)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "starmap " + version.Version; !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestLSTCmd(t *testing.T) {
	out, err := run(t, withGreenwich("lst", "--time", "2000-01-01T12:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"JD:    2451545.00000", "GMST:  18h41m5", "LST:   18h41m5", "Greenwich"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLSTCmd_Site(t *testing.T) {
	out, err := run(t, "lst", "--site", "vlt", "--time", "2024-03-20T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Paranal (-24.6275, -70.4044)") {
		t.Errorf("site not resolved:\n%s", out)
	}

	if _, err := run(t, "lst", "--site", "atlantis"); !errors.Is(err, config.ErrUnknownSite) {
		t.Errorf("unknown site error = %v", err)
	}
}

func TestLSTCmd_CoordinatesClearName(t *testing.T) {
	out, err := run(t, "lst", "--lat", "10", "--lon", "20", "--time", "2024-03-20T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Site:  10.0000, 20.0000") {
		t.Errorf("explicit coordinates should drop the default name:\n%s", out)
	}
}

func TestAltAzCmd(t *testing.T) {
	// From the pole, altitude equals declination
	out, err := run(t, "altaz", "--ra", "6", "--dec", "45", "--lat", "90", "--lon", "0", "--time", "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Alt 45.00°") {
		t.Errorf("output = %s", out)
	}

	if _, err := run(t, "altaz", "--ra", "6"); err == nil {
		t.Error("altaz without a target or --dec should fail")
	}
	if _, err := run(t, withGreenwich("altaz", "Vulcan")...); !errors.Is(err, almanac.ErrUnknownTarget) {
		t.Errorf("unknown target error = %v", err)
	}
}

func TestAltAzCmd_Target(t *testing.T) {
	out, err := run(t, withGreenwich("altaz", "sun", "--time", "2024-06-21T12:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Sun from Greenwich") {
		t.Errorf("output = %s", out)
	}
	if strings.Contains(out, "below the horizon") {
		t.Errorf("Sun below the horizon at midsummer noon:\n%s", out)
	}
}

func TestRiseSetCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "sunrise",
			args: withGreenwich("riseset", "Sun", "--time", "2024-06-21T12:00:00Z"),
			want: []string{"Sun from Greenwich on 2024-06-21 UTC", "Rise     03:4", "Transit  12:0", "Set      20:"},
		},
		{
			name: "circumpolar",
			args: withGreenwich("riseset", "Polaris", "--time", "2024-06-21T12:00:00Z"),
			want: []string{"circumpolar"},
		},
		{
			name: "never rises",
			args: []string{"riseset", "Sirius", "--lat", "89", "--lon", "0", "--tz", "UTC", "--time", "2024-01-15"},
			want: []string{"never rises"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestTraceCmd(t *testing.T) {
	out, err := run(t, withGreenwich("trace", "Sun", "--time", "2024-06-21T12:00:00Z", "--width", "40")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"peak", "now", "rise          Jun 21 03:", "set           Jun 21 20:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, withGreenwich("trace", "Sun", "--step", "0s")...); err == nil {
		t.Error("zero step should fail")
	}
}

func TestPlanetsCmd(t *testing.T) {
	out, err := run(t, withGreenwich("planets", "--time", "2024-01-01T00:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range ephem.PlanetNames() {
		if !strings.Contains(out, name) {
			t.Errorf("planets output missing %s", name)
		}
	}

	if _, err := run(t, withGreenwich("planets", "--time", "3500-01-01")...); !errors.Is(err, ephem.ErrTimeOutOfRange) {
		t.Errorf("out-of-range error = %v", err)
	}
}

func TestMoonCmd(t *testing.T) {
	// Full moon on 2024-01-25 17:54 UTC
	out, err := run(t, withGreenwich("moon", "--time", "2024-01-25T18:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Full Moon", "topocentric", "km"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEclipticCmd(t *testing.T) {
	out, err := run(t, withGreenwich("ecliptic", "--step", "30", "--time", "2024-03-20T12:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "of 12 points above the horizon") {
		t.Errorf("output = %s", out)
	}

	if _, err := run(t, withGreenwich("ecliptic", "--step", "0")...); err == nil {
		t.Error("zero step should fail")
	}
}

func TestAlmanacCmd_Summary(t *testing.T) {
	out, err := run(t, withGreenwich("almanac", "--time", "2024-06-21T12:00:00Z", "--mini-sky")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Sky @ 2024-06-21T12:00:00Z", "Greenwich", "Sun", "Sirius", "Above horizon:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestAlmanacCmd_JSON(t *testing.T) {
	out, err := run(t, withGreenwich("almanac", "--json", "--mag", "0", "--time", "2024-06-21T12:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}

	var export almanac.Export
	if err := json.Unmarshal([]byte(out), &export); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if export.Observer.Name != "Greenwich" {
		t.Errorf("observer = %+v", export.Observer)
	}
	// Sun, Moon, seven planets, then stars brighter than magnitude 0
	if n := len(export.Entries); n <= len(ephem.Bodies()) {
		t.Errorf("entries = %d, want bodies plus stars", n)
	}
	if export.Entries[0].Name != "Sun" || !export.Entries[0].Visible {
		t.Errorf("first entry = %+v", export.Entries[0])
	}
}

func TestAlmanacCmd_Filters(t *testing.T) {
	decode := func(t *testing.T, args ...string) almanac.Export {
		t.Helper()
		out, err := run(t, withGreenwich(append([]string{"almanac", "--json", "--time", "2024-06-21T12:00:00Z"}, args...)...)...)
		if err != nil {
			t.Fatal(err)
		}
		var export almanac.Export
		if err := json.Unmarshal([]byte(out), &export); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		return export
	}

	orion := decode(t, "--constellation", "ori")
	if n, want := len(orion.Entries), len(ephem.Bodies())+7; n != want {
		t.Errorf("Orion entries = %d, want %d", n, want)
	}

	bright := decode(t, "--constellation", "ori", "--mag", "0.5")
	if n, want := len(bright.Entries), len(ephem.Bodies())+2; n != want {
		t.Errorf("Orion brighter than 0.5 = %d entries, want %d", n, want)
	}

	up := decode(t, "--up")
	if len(up.Entries) == 0 || up.Entries[0].Name != "Sun" {
		t.Fatalf("--up entries = %+v", up.Entries)
	}
	for _, e := range up.Entries {
		if !e.Visible {
			t.Errorf("%s listed with --up but below the horizon", e.Name)
		}
	}
}

func TestWriteNewEvents(t *testing.T) {
	base := time.Date(2024, 6, 21, 3, 0, 0, 0, time.UTC)
	snap := state.Snapshot{Events: []state.Event{
		{Type: state.EventRise, Time: base.Add(45 * time.Minute), Body: "Sun", AzDeg: 49},
		{Type: state.EventSet, Time: base.Add(2 * time.Hour), Body: "Moon", AzDeg: 231},
	}}

	var buf bytes.Buffer
	seen := writeNewEvents(&buf, snap, time.Time{}, time.UTC)
	if !seen.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("seen = %v", seen)
	}
	if !strings.Contains(buf.String(), "03:45:00  Sun      RISE az  49°") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if again := writeNewEvents(&buf, snap, seen, time.UTC); !again.Equal(seen) || buf.Len() != 0 {
		t.Errorf("events repeated: %q", buf.String())
	}
}

const marsObserverResult = `
$$SOE
 2024-Jan-01 00:00 *m  266.69400 -23.94880  2.42380000000000  -5.1234567
$$EOE
`

const marsVectorResult = `
$$SOE
2460310.500000000 = A.D. 2024-Jan-01 00:00:00.0000 TDB
 X =-2.936958231470122E-01 Y =-1.451047306588417E+00 Z =-2.320564271891346E-02
$$EOE
`

func horizonsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("COMMAND"); got != "'499'" {
			t.Errorf("COMMAND = %q, want '499'", got)
		}
		result := marsObserverResult
		if r.URL.Query().Get("EPHEM_TYPE") == "VECTORS" {
			result = marsVectorResult
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"signature": map[string]string{"version": "1.2", "source": "NASA/JPL Horizons API"},
			"result":    result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompareCmd(t *testing.T) {
	srv := horizonsServer(t)

	out, err := run(t, withGreenwich("compare", "mars", "--horizons-url", srv.URL, "--time", "2024-01-01T00:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Mars (NAIF 499) from Greenwich: model vs Horizons", "17h46m47s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompareCmd_Span(t *testing.T) {
	srv := horizonsServer(t)

	out, err := run(t, withGreenwich("compare", "Mars", "--horizons-url", srv.URL,
		"--time", "2024-01-01T00:00:00Z", "--span", "2m", "--step", "1m")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "3 samples: mean error") {
		t.Errorf("output = %s", out)
	}
}

func TestAltAzCmd_Source(t *testing.T) {
	srv := horizonsServer(t)

	out, err := run(t, withGreenwich("altaz", "Mars", "--source", "horizons", "--horizons-url", srv.URL,
		"--time", "2024-01-01T00:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "RA 17h46m47s") {
		t.Errorf("output = %s", out)
	}

	model, err := run(t, withGreenwich("altaz", "Mars", "--source", "MODEL", "--time", "2024-01-01T00:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(model, "Mars from Greenwich") {
		t.Errorf("model output = %s", model)
	}

	if _, err := run(t, withGreenwich("altaz", "Mars", "--source", "spice")...); err == nil {
		t.Error("unknown source should fail")
	}
	if _, err := run(t, withGreenwich("altaz", "Sirius", "--source", "horizons", "--horizons-url", srv.URL)...); err == nil {
		t.Error("catalog star from Horizons should fail")
	}
}

func TestCompareCmd_Helio(t *testing.T) {
	srv := horizonsServer(t)

	out, err := run(t, withGreenwich("compare", "Mars", "--helio", "--horizons-url", srv.URL,
		"--time", "2024-01-01T00:00:00Z")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Heliocentric ecliptic (AU)", "reference  -0.293696 -1.451047 -0.023206", "direction"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompareCmd_Errors(t *testing.T) {
	if _, err := run(t, withGreenwich("compare", "Pluto")...); !errors.Is(err, ephem.ErrUnknownBody) {
		t.Errorf("unknown body error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	if _, err := run(t, withGreenwich("compare", "Mars", "--horizons-url", srv.URL)...); err == nil {
		t.Error("server failure should be reported")
	}
}

func TestSitesCmd(t *testing.T) {
	out, err := run(t, "sites")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Greenwich", "Mauna Kea", "Paranal", "(vlt)"} {
		if !strings.Contains(out, want) {
			t.Errorf("sites output missing %q", want)
		}
	}
}
