package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const versionString = "1.0.0"
const defaultConfigPath = "./symindex.toml"

type cliOptions struct {
	configPath   string
	quick        bool
	find         string
	all          bool
	target       string
	remove       bool
	pending      bool
	history      bool
	historyLimit int
	watch        bool
	ui           bool
	verbose      bool
	version      bool
	args         []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("symindex", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.quick, "quick", false, "Register the directory without scanning it")
	fs.StringVar(&opts.find, "find", "", "Look up symbols by name after building")
	fs.BoolVar(&opts.all, "all", false, "Print every indexed symbol after building")
	fs.StringVar(&opts.target, "target", "", "Index a single file or directory and print its symbols")
	fs.BoolVar(&opts.remove, "remove", false, "Delete the stored index for the directory")
	fs.BoolVar(&opts.pending, "pending", false, "Run one bounded build cycle and report remaining work")
	fs.BoolVar(&opts.history, "history", false, "Print recent build cycles for the directory")
	fs.IntVar(&opts.historyLimit, "history-limit", 20, "Number of build cycles shown by --history")
	fs.BoolVar(&opts.watch, "watch", false, "Keep the index current while files change")
	fs.BoolVar(&opts.ui, "ui", false, "Open the interactive symbol search")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}

// validateModes rejects flag combinations that name more than one action.
// --watch may accompany the default build or --ui.
func validateModes(opts cliOptions) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("at most one directory argument is accepted, got %d", len(opts.args))
	}

	var selected []string
	add := func(on bool, name string) {
		if on {
			selected = append(selected, name)
		}
	}
	add(opts.quick, "--quick")
	add(strings.TrimSpace(opts.find) != "", "--find")
	add(opts.all, "--all")
	add(strings.TrimSpace(opts.target) != "", "--target")
	add(opts.remove, "--remove")
	add(opts.pending, "--pending")
	add(opts.history, "--history")
	add(opts.ui, "--ui")
	if len(selected) > 1 {
		return fmt.Errorf("%s cannot be combined", strings.Join(selected, " and "))
	}
	if opts.watch && len(selected) == 1 && !opts.ui {
		return fmt.Errorf("--watch cannot be combined with %s", selected[0])
	}
	if opts.history && opts.historyLimit <= 0 {
		return fmt.Errorf("--history-limit must be positive")
	}
	return nil
}
