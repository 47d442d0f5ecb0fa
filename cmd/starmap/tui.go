package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/logging"
	"github.com/litescript/ls-starmap/internal/state"
	"github.com/litescript/ls-starmap/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive sky",
	Long: `tui opens the full-screen sky simulation. Keys: space pause, +/- rate,
r reverse, n now, O next site, tab switch view, arrows pan, j/k focus,
l labels, q quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	f := tuiCmd.Flags()
	f.Float64("rate", 1, "simulated seconds per wall-clock second (negative runs backwards)")
	f.Float64("mag", 4.5, "faintest star magnitude to draw")
	f.Duration("frame", 0, "frame interval (default 100ms)")
	f.Bool("no-labels", false, "label only the focused body")

	_ = viper.BindPFlag("ui.rate", f.Lookup("rate"))
	_ = viper.BindPFlag("ui.mag_limit", f.Lookup("mag"))
	_ = viper.BindPFlag("ui.frame_interval", f.Lookup("frame"))

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	// Anything written to stderr would tear the alternate screen
	e.logger = logging.Discard()
	log.Logger = e.logger

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	cfg := state.DefaultConfig(e.obs)
	cfg.Start = e.at
	mgr := state.NewManager(cfg)
	if err := mgr.SetRate(e.cfg.UI.Rate); err != nil {
		return fmt.Errorf("ui.rate: %w", err)
	}

	sites, err := e.cfg.Sites()
	if err != nil {
		return err
	}
	observers := make([]astro.Observer, len(sites.Sites))
	for i, s := range sites.Sites {
		observers[i] = s.Observer()
	}

	labels := e.cfg.UI.Labels
	if noLabels, err := cmd.Flags().GetBool("no-labels"); err == nil && noLabels {
		labels = false
	}

	model := ui.New(mgr, ui.Options{
		FrameInterval: e.cfg.UI.FrameInterval,
		MagLimit:      e.cfg.UI.MagLimit,
		Labels:        labels,
		Location:      e.loc,
		Catalog:       e.cat,
		Sites:         observers,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
