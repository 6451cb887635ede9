package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"symindex/internal/data/history"
	"symindex/internal/engine/symbols"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// formatSymbol renders one result line: name, type, location and signature.
func formatSymbol(sym symbols.Symbol) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(sym.Name))
	b.WriteString("  ")
	b.WriteString(typeStyle.Render(sym.Type))
	b.WriteString("  ")
	b.WriteString(locationStyle.Render(location(sym)))
	if sym.Signature != "" {
		b.WriteString("  ")
		b.WriteString(sym.Signature)
	}
	return b.String()
}

func location(sym symbols.Symbol) string {
	if sym.LineStart <= 0 {
		return sym.FilePath
	}
	if sym.LineEnd > sym.LineStart {
		return fmt.Sprintf("%s:%d-%d", sym.FilePath, sym.LineStart, sym.LineEnd)
	}
	return fmt.Sprintf("%s:%d", sym.FilePath, sym.LineStart)
}

func printSymbols(w io.Writer, title string, syms []symbols.Symbol) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(syms))))
	for _, sym := range syms {
		fmt.Fprintln(w, formatSymbol(sym))
	}
}

type buildSummary struct {
	dir      string
	id       string
	symbols  int
	pending  int
	duration time.Duration
}

func printBuildSummary(w io.Writer, s buildSummary) {
	fmt.Fprintln(w, titleStyle.Render("Symbol index"))
	fmt.Fprintf(w, "Directory: %s\n", s.dir)
	fmt.Fprintf(w, "Index ID: %s\n", s.id)
	fmt.Fprintf(w, "Symbols: %d\n", s.symbols)
	if s.pending > 0 {
		fmt.Fprintf(w, "Pending files: %d\n", s.pending)
	}
	if s.duration > 0 {
		fmt.Fprintln(w, statusStyle.Render("built in "+s.duration.Round(time.Millisecond).String()))
	}
}

func printHistory(w io.Writer, dir string, runs []history.Run) {
	fmt.Fprintln(w, titleStyle.Render("Build history for "+dir))
	if len(runs) == 0 {
		fmt.Fprintln(w, statusStyle.Render("no recorded builds"))
		return
	}
	for _, run := range runs {
		state := "complete"
		if !run.Complete {
			state = "partial"
		}
		fmt.Fprintf(w, "%s  %-11s  files=%d removed=%d symbols=%d pending=%d  %s  %s\n",
			run.Timestamp.Local().Format(time.RFC3339),
			run.Mode,
			run.FilesIndexed,
			run.Removed,
			run.Symbols,
			run.Pending,
			run.Duration.Round(time.Millisecond),
			state,
		)
	}

	sum := history.Summarize(runs)
	modes := make([]string, 0, len(sum.ByMode))
	for mode, n := range sum.ByMode {
		modes = append(modes, fmt.Sprintf("%s=%d", mode, n))
	}
	sort.Strings(modes)
	fmt.Fprintln(w, statusStyle.Render(fmt.Sprintf(
		"%d runs (%s), avg %s, %d files indexed, %d incomplete, last symbol count %d",
		sum.Runs, strings.Join(modes, " "), sum.AvgDuration.Round(time.Millisecond), sum.FilesIndexed, sum.Incomplete, sum.LastSymbols,
	)))
}
