package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/checklist-sync/internal/app"
	appsync "github.com/nhle/checklist-sync/internal/sync"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive checklist view",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := requireName()
		if err != nil {
			return err
		}

		env, err := openEnv(true)
		if err != nil {
			return err
		}
		defer env.close()
		defer func() { _ = env.logger.Sync() }()

		store, err := env.openStore(name)
		if err != nil {
			return err
		}

		interval := time.Duration(env.cfg.Sync.IntervalSec) * time.Second
		poller := appsync.New(interval, env.logger)
		poller.Register(store)

		program := tea.NewProgram(
			app.New(store, poller, env.logger),
			tea.WithAltScreen(),
		)
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running UI: %w", err)
		}
		return nil
	},
}
