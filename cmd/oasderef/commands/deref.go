package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasderef/deref"
	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/loader"
)

// ErrCollected is returned with --fail-on-errors when the run collected failures.
var ErrCollected = errors.New("dereference collected errors")

// watchDebounce coalesces the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

type derefFlags struct {
	mode             string
	allowMetaPatches bool
	noInternal       bool
	noExternal       bool
	baseURI          string
	maxRefDepth      int
	format           string
	output           string
	configPath       string
	watch            bool
	timeout          time.Duration
	failOnErrors     bool
	verbose          bool
}

func newDerefCmd() *cobra.Command {
	flags := &derefFlags{}
	cmd := &cobra.Command{
		Use:   "deref <file|url>",
		Short: "Dereference an OpenAPI document",
		Long: `Dereference an OpenAPI 3.x document and print the result.

Collected failures are printed to stderr with the JSON pointer of the node
they concern. Flags override the values of a --config file.

Examples:
  oasderef deref openapi.yaml
  oasderef deref --format yaml --output flat.yaml openapi.yaml
  oasderef deref --mode strict --allow-meta-patches https://example.com/openapi.json
  oasderef deref --watch openapi.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeref(cmd, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", "", `dereference mode: "default" or "strict" (strict keeps allOf)`)
	f.BoolVar(&flags.allowMetaPatches, "allow-meta-patches", false, "annotate dereferenced objects with $$ref")
	f.BoolVar(&flags.noInternal, "no-internal", false, "leave references within the document unresolved")
	f.BoolVar(&flags.noExternal, "no-external", false, "leave references into other documents unresolved")
	f.StringVar(&flags.baseURI, "base-uri", "", "location relative references resolve against (default: the input location)")
	f.IntVar(&flags.maxRefDepth, "max-ref-depth", 0, "nested reference expansion limit (default 100)")
	f.StringVarP(&flags.format, "format", "f", "json", "output format: json or yaml")
	f.StringVarP(&flags.output, "output", "o", "", "write the result to a file instead of stdout")
	f.StringVarP(&flags.configPath, "config", "c", "", "TOML file with dereference options")
	f.BoolVarP(&flags.watch, "watch", "w", false, "dereference again whenever the input directory changes")
	f.DurationVar(&flags.timeout, "timeout", 0, "time budget per run (0 = none)")
	f.BoolVar(&flags.failOnErrors, "fail-on-errors", false, "exit with status 1 when errors were collected")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output to stderr")
	return cmd
}

func runDeref(cmd *cobra.Command, flags *derefFlags, location string) error {
	if flags.format != "json" && flags.format != "yaml" {
		return fmt.Errorf("invalid format %q: expected json or yaml", flags.format)
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := loader.NewSlogAdapter(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	var fileCfg *deref.Config
	if flags.configPath != "" {
		c, err := deref.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		fileCfg = c
	}

	run := func(ctx context.Context) error {
		opts, err := flags.options(cmd, fileCfg, logger)
		if err != nil {
			return err
		}
		if flags.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, flags.timeout)
			defer cancel()
		}
		result, err := deref.DereferenceURL(ctx, location, opts...)
		if err != nil {
			return err
		}
		return writeResult(cmd, flags, result)
	}

	if !flags.watch {
		return run(cmd.Context())
	}
	return watch(cmd, location, logger, run)
}

// options merges the config file with the flags set on the command line.
func (f *derefFlags) options(cmd *cobra.Command, fileCfg *deref.Config, logger loader.Logger) ([]deref.Option, error) {
	var opts []deref.Option
	if fileCfg != nil {
		if err := fileCfg.Validate(); err != nil {
			return nil, err
		}
		opts = append(opts, fileCfg.Options(logger)...)
	} else {
		opts = append(opts, deref.WithLogger(logger), deref.WithLoader(loader.New(loader.WithLogger(logger))))
	}

	changed := cmd.Flags().Changed
	if changed("mode") {
		opts = append(opts, deref.WithMode(deref.Mode(f.mode)))
	}
	if changed("allow-meta-patches") {
		opts = append(opts, deref.WithAllowMetaPatches(f.allowMetaPatches))
	}
	if changed("no-internal") {
		opts = append(opts, deref.WithResolveInternal(!f.noInternal))
	}
	if changed("no-external") {
		opts = append(opts, deref.WithResolveExternal(!f.noExternal))
	}
	if changed("base-uri") {
		opts = append(opts, deref.WithBaseURI(f.baseURI))
	}
	if changed("max-ref-depth") {
		opts = append(opts, deref.WithMaxRefDepth(f.maxRefDepth))
	}
	return opts, nil
}

func writeResult(cmd *cobra.Command, flags *derefFlags, result *deref.Result) error {
	out := element.Patched(result.Element)
	var (
		data []byte
		err  error
	)
	if flags.format == "yaml" {
		data, err = element.MarshalYAML(out)
	} else {
		data, err = element.MarshalJSONIndent(out, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if flags.output != "" {
		file, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	for _, rec := range result.Errors {
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", rec.Kind, rec.String())
	}
	if len(result.Errors) > 0 {
		_, _ = fmt.Fprintf(stderr, "%d error(s) collected\n", len(result.Errors))
		if flags.failOnErrors {
			return ErrCollected
		}
	}
	return nil
}

// watch runs once, then again after every change to an OpenAPI file in the
// input's directory, until the command context is done. Failed runs are
// reported and do not end the watch.
func watch(cmd *cobra.Command, location string, logger loader.Logger, run func(context.Context) error) error {
	if strings.Contains(location, "://") {
		return errors.New("--watch requires a local file")
	}
	dir := filepath.Dir(loader.Normalize(location))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx := cmd.Context()
	report := func() {
		if err := run(ctx); err != nil && !errors.Is(err, ErrCollected) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	report()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDocumentEvent(event) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-debounce:
			debounce = nil
			report()
		}
	}
}

func isDocumentEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
