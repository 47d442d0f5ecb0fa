// Command starmap is a terminal sky simulator and planetary ephemeris.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/litescript/ls-starmap/internal/ephem"
)

var rootCmd = &cobra.Command{
	Use:   "starmap",
	Short: "Terminal sky simulator and planetary ephemeris",
	Long: `starmap shows the sky over any observing site: stars, the Sun, the Moon
and the planets, with rise, transit and set times. Run without a command to
open the interactive sky when attached to a terminal, or to print a summary
table otherwise.`,
	Args:          cobra.NoArgs,
	RunE:          runRootDefault,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .starmap.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("site", "", "named observing site (see 'starmap sites')")
	pf.String("sites-file", "", "YAML file of observing sites")
	pf.String("observer", "Greenwich", "observer name")
	pf.Float64("lat", 51.4769, "observer latitude in degrees, north positive")
	pf.Float64("lon", -0.0005, "observer longitude in degrees, east positive")
	pf.Float64("elevation", 46, "observer elevation in meters")
	pf.String("catalog", "", "star catalog JSON file (default built-in)")
	pf.String("time", "", "instant to compute for, RFC3339 or 2006-01-02 15:04 (default now)")
	pf.String("tz", "", "display time zone, IANA name (default site zone or local)")
	pf.String("horizons-url", "", "Horizons API endpoint (default "+ephem.HorizonsAPIURL+")")

	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("site", pf.Lookup("site"))
	_ = viper.BindPFlag("sites_file", pf.Lookup("sites-file"))
	_ = viper.BindPFlag("observer.name", pf.Lookup("observer"))
	_ = viper.BindPFlag("observer.lat", pf.Lookup("lat"))
	_ = viper.BindPFlag("observer.lon", pf.Lookup("lon"))
	_ = viper.BindPFlag("observer.elevation", pf.Lookup("elevation"))
	_ = viper.BindPFlag("catalog", pf.Lookup("catalog"))
	_ = viper.BindPFlag("horizons_url", pf.Lookup("horizons-url"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".starmap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("STARMAP")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runRootDefault opens the TUI on a terminal and prints the almanac
// summary when output is piped.
func runRootDefault(cmd *cobra.Command, _ []string) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return runTUI(cmd, nil)
	}
	return runAlmanacOnce(cmd, almanacOptions{mag: defaultAlmanacMag})
}
