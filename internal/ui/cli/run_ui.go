package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// runUI opens the search view over the built index. With --watch the index
// keeps updating underneath and the view reruns its query after each cycle.
func (r *runner) runUI(ctx context.Context) int {
	p := tea.NewProgram(initialModel(r.idx), tea.WithAltScreen(), tea.WithContext(ctx))

	if r.opts.watch {
		w, err := r.startWatcher(ctx, func() { p.Send(indexUpdatedMsg{}) })
		if err != nil {
			r.fail("failed to start watcher", err)
			return 1
		}
		defer w.Close()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		r.fail("failed to run UI", err)
		return 1
	}
	return 0
}
