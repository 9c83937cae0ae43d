package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/cmdhl/internal/app"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/reload"
)

var initialText string

func init() {
	rootCmd.Flags().StringVarP(&initialText, "initial", "i", "", "start the editor with this command line")
}

// runEdit opens the interactive editor. The UI draws on stderr so that the
// accepted command can be captured from stdout, e.g. cmd=$(cmdhl).
func runEdit(cmd *cobra.Command, _ []string) error {
	provider, shutdown, err := startTracing(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	h, err := newHighlighter(cfg, provider.Tracer())
	if err != nil {
		return err
	}

	var reloader *reload.Reloader
	if path := cfg.RulesPath(); path != "" && cfg.Watch.Enabled {
		reloader, err = reload.New(reload.Config{
			Path:     path,
			Base:     h.registry,
			Debounce: cfg.Watch.Debounce,
			Tracer:   provider.Tracer(),
		})
		if err != nil {
			return err
		}
		if err := reloader.Start(context.Background()); err != nil {
			// The editor still works without hot reload.
			log.ErrorErr(log.CatWatcher, "Rules watcher failed to start", err, "path", path)
			_ = reloader.Stop()
			reloader = nil
		} else {
			defer func() { _ = reloader.Stop() }()
		}
	}

	model := app.New(app.Options{
		Config:     cfg,
		ConfigPath: viper.ConfigFileUsed(),
		Engine:     h.engine,
		Buffer:     h.buffer,
		Rules:      h.loader,
		Reloader:   reloader,
		Debug:      debugEnabled(),
		Initial:    initialText,
	})
	defer model.Close()

	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	if m, ok := final.(app.Model); ok && m.Accepted() {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), m.Value())
	}
	return err
}
