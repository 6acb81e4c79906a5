package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wpx/internal/session"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/wpx-tui.log"

// TUI launches the interactive post editor.
//
// Logs go to a file so they do not corrupt the rendered screen, and navigation
// requested by the session store on logout is delivered to the running program.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())

	// The sub-runner shares the database but logs to the file. It is not closed
	// here because the database belongs to r.
	sub := NewRunner(RunnerOpts{
		Config:     r.config,
		ConfigPath: r.configPath,
		DB:         r.db,
		HTTPClient: r.httpClient,
		Logger:     fileLogger,
		Output:     r.output,
	})

	model := ui.NewModel(ctx, sub.wp, sub.session, sub.editor, ui.WithPerPage(r.config.Editor.PerPage))
	p := tea.NewProgram(model, tea.WithContext(ctx))

	sub.nav.Set(session.NavigatorFunc(func(path string) {
		p.Send(ui.NavigateMsg(path))
	}))
	defer sub.nav.Set(nil)

	fileLogger.Info("starting TUI", "site", sub.wp.BaseURL(), "state", sub.session.State())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
