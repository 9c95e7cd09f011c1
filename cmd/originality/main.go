package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/originality/internal/app"
	"github.com/hyperifyio/originality/internal/report"
	"github.com/hyperifyio/originality/internal/text"
)

type options struct {
	inputs      []string
	kind        string
	format      string
	output      string
	configPath  string
	envFiles    string
	searchFile  string
	providers   string
	timeout     time.Duration
	metricsAddr string
	status      bool
	verbose     bool
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var opts options
	flag.StringVar(&opts.kind, "kind", string(text.KindText), "Document kind recorded in the report (text, pdf, docx, url)")
	flag.StringVar(&opts.format, "format", "json", "Output format: json, markdown or pdf")
	flag.StringVar(&opts.output, "output", "", "Write the report to this path instead of stdout (required for pdf)")
	flag.StringVar(&opts.configPath, "config", os.Getenv("ORIGINALITY_CONFIG"), "Path to a YAML or JSON config file")
	flag.StringVar(&opts.envFiles, "env", ".env", "Comma-separated dotenv files loaded before reading the environment")
	flag.StringVar(&opts.searchFile, "search.file", "", "Path to JSON file for the offline search provider")
	flag.StringVar(&opts.providers, "providers", "", "Comma-separated provider names to enable (default: all configured)")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Per-document check timeout (default from config)")
	flag.StringVar(&opts.metricsAddr, "metrics.addr", "", "Serve Prometheus metrics on this address while checking")
	flag.BoolVar(&opts.status, "status", false, "Print provider, key and cache status as JSON and exit")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()
	opts.inputs = flag.Args()

	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("check failed")
		var ie *app.InputError
		if errors.As(err, &ie) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(opts options) (app.Config, error) {
	if err := app.LoadEnvFiles(splitComma(opts.envFiles)...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}
	cfg := app.DefaultConfig()
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	if opts.searchFile != "" {
		cfg.FileSearchPath = opts.searchFile
	}
	if p := splitComma(opts.providers); len(p) > 0 {
		cfg.Providers = p
	}
	if opts.timeout > 0 {
		cfg.RequestTimeout = opts.timeout
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	switch opts.format {
	case "json", "markdown", "pdf":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.format == "pdf" && opts.output == "" {
		return errors.New("pdf output requires -output")
	}
	if opts.format == "pdf" && len(opts.inputs) > 1 {
		return errors.New("pdf output takes a single input")
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	checker, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init checker: %w", err)
	}

	if opts.status {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(checker.Status())
	}

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: checker.Metrics().Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Str("addr", opts.metricsAddr).Msg("metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	inputs := opts.inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	out := stdout
	if opts.output != "" && opts.format != "pdf" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	for _, in := range inputs {
		raw, err := readInput(in, stdin)
		if err != nil {
			return err
		}
		rep, err := checker.CheckPlagiarism(ctx, raw, text.Kind(opts.kind))
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		log.Info().Str("input", in).Float64("score", rep.PlagiarismPercentage).Str("risk", rep.Summary.RiskLevel).Msg("document checked")
		if err := write(out, opts, rep); err != nil {
			return err
		}
	}
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input %s: %w", path, err)
	}
	return string(b), nil
}

func write(w io.Writer, opts options, rep report.Report) error {
	switch opts.format {
	case "markdown":
		_, err := io.WriteString(w, report.Markdown(rep))
		return err
	case "pdf":
		return report.WritePDFFile(rep, opts.output)
	default:
		return json.NewEncoder(w).Encode(rep)
	}
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
