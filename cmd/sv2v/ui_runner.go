package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sv2v/internal/driver"
	"sv2v/internal/pipeline"
	"sv2v/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI drives the conversion in the background while a Bubble Tea
// program renders per-file progress. The UI draws on stderr so emitted
// Verilog on stdout stays clean.
func runWithUI(ctx context.Context, title string, files []string, req *driver.Request) (*driver.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, &reqCopy)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
