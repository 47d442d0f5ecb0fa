package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "starmap %s\n", version.Version)
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List named observing sites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		sites, err := cfg.Sites()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, site := range sites.Sites {
			aliases := ""
			if len(site.Aliases) > 0 {
				aliases = " (" + strings.Join(site.Aliases, ", ") + ")"
			}
			fmt.Fprintf(out, "%-24s %9.4f %10.4f %6.0f m  %s%s\n",
				site.Name, site.Lat, site.Lon, site.Elevation, site.Timezone, aliases)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, sitesCmd)
}
