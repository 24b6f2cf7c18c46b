package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethanolivertroy/dojo-gate/internal/clients"
	"github.com/ethanolivertroy/dojo-gate/internal/config"
	"github.com/ethanolivertroy/dojo-gate/internal/gate"
	"github.com/ethanolivertroy/dojo-gate/internal/logging"
	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"github.com/ethanolivertroy/dojo-gate/internal/pipeline"
	"github.com/ethanolivertroy/dojo-gate/internal/reporter"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagConfig        string
	flagHost          string
	flagAPIKey        string
	flagUser          string
	flagProduct       string
	flagProxy         string
	flagBuildID       string
	flagFile          string
	flagScanner       string
	flagDir           string
	flagCritical      int
	flagHigh          int
	flagMedium        int
	flagOutput        string
	flagFormat        string
	flagSettle        int
	flagTimeout       int
	flagInsecure      bool
	flagCollectErrors bool
	flagDebug         bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dojo-gate",
	Short: "Gate CI/CD builds on new DefectDojo findings",
	Long: `dojo-gate uploads scanner results into a DefectDojo engagement, waits
for deduplication to settle, counts the findings the build introduced and
fails the build when a severity threshold is exceeded.

A single report is uploaded with --file and --scanner. With --dir every file
below the directory is uploaded and the scanner is taken from the folder that
holds it:

  reports/
    ZAP Scan/zap.xml
    Nmap Scan/nmap.csv

Exit codes:
  0  gate passed
  1  gate failed (a threshold was exceeded)
  2  the run itself failed (configuration, service or upload error)

Settings can also come from .dojo-gate.toml, a .env file or the DOJO_HOST,
DOJO_API_KEY, DOJO_USER, DOJO_PRODUCT and DOJO_PROXY environment variables.
Flags win over all of them.

Examples:
  # Upload one report, fail on any new critical or more than 5 new highs
  dojo-gate --host https://dojo.example.com --api-key $KEY --user ci \
    --product 3 --file zap.xml --scanner "ZAP Scan" --critical 0 --high 5

  # Upload a directory of reports and write JUnit for the CI test view
  dojo-gate --product 3 --dir reports --build-id $BUILD_NUMBER \
    --format junit --output dojo-junit.xml`,
	SilenceUsage: true,
	RunE:         runGate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(gate.ExitError)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "Config file (default: ./"+config.DefaultConfigFile+" if present)")
	f.StringVar(&flagHost, "host", "", "DefectDojo base URL")
	f.StringVar(&flagAPIKey, "api-key", "", "DefectDojo API key")
	f.StringVar(&flagUser, "user", "", "DefectDojo user, lead of the engagement")
	f.StringVar(&flagProduct, "product", "", "DefectDojo product ID")
	f.StringVar(&flagProxy, "proxy", "", "Proxy URL, e.g. localhost:8080 or socks5://host:1080")
	f.StringVar(&flagBuildID, "build-id", "", "Reference to the external build")
	f.StringVar(&flagFile, "file", "", "Scanner report to upload (requires --scanner)")
	f.StringVar(&flagScanner, "scanner", "", "Scanner type of --file")
	f.StringVar(&flagDir, "dir", "", "Directory of reports laid out as <dir>/<scanner>/<file>")
	f.IntVar(&flagCritical, "critical", 0, "Maximum new critical findings to pass")
	f.IntVar(&flagHigh, "high", 0, "Maximum new high findings to pass")
	f.IntVar(&flagMedium, "medium", 0, "Maximum new medium findings to pass")
	f.StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	f.StringVarP(&flagFormat, "format", "f", "terminal", "Output format: "+strings.Join(reporter.Formats, ", "))
	f.IntVar(&flagSettle, "settle", 10, "Seconds to wait for deduplication before counting")
	f.IntVar(&flagTimeout, "timeout", 360, "HTTP request timeout in seconds")
	f.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	f.BoolVar(&flagCollectErrors, "collect-errors", false, "With --dir, attempt every upload before failing")
	f.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func runGate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd.Flags(), cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	runID := uuid.NewString()
	logger = logger.With("run", runID)

	client, err := clients.NewDojoClient(clients.DojoConfig{
		Host:     cfg.Host,
		User:     cfg.User,
		APIKey:   cfg.APIKey,
		Proxy:    cfg.Proxy,
		Insecure: cfg.Insecure,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the gate
	p := pipeline.New(cfg, client, pipeline.WithLogger(logger), pipeline.WithRunID(runID))
	summary, err := p.Run(ctx)
	if err != nil {
		logger.Errorw("Run aborted, no verdict produced", "error", err)
		return err
	}

	// Generate report
	rep := reporter.Get(cfg.OutputFormat)
	output, err := rep.Report(summary)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Write output
	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", cfg.OutputFile)
	} else {
		fmt.Print(string(output))
	}

	// Exit with the gate status; errors above already exit with ExitError
	if code := gate.ExitCode(gate.Verdict{Reasons: summary.Reasons}); code != gate.ExitPassed {
		_ = logger.Sync()
		os.Exit(code)
	}

	return nil
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(flags *pflag.FlagSet, cfg *models.Config) {
	str := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	str("host", &cfg.Host, flagHost)
	str("api-key", &cfg.APIKey, flagAPIKey)
	str("user", &cfg.User, flagUser)
	str("product", &cfg.ProductID, flagProduct)
	str("proxy", &cfg.Proxy, flagProxy)
	str("build-id", &cfg.BuildID, flagBuildID)
	str("file", &cfg.File, flagFile)
	str("scanner", &cfg.Scanner, flagScanner)
	str("dir", &cfg.Dir, flagDir)
	str("output", &cfg.OutputFile, flagOutput)
	str("format", &cfg.OutputFormat, flagFormat)

	threshold := func(name string, dst **int, v int) {
		if flags.Changed(name) {
			*dst = models.Int(v)
		}
	}
	threshold("critical", &cfg.Thresholds.Critical, flagCritical)
	threshold("high", &cfg.Thresholds.High, flagHigh)
	threshold("medium", &cfg.Thresholds.Medium, flagMedium)

	if flags.Changed("settle") {
		cfg.SettleWait = time.Duration(flagSettle) * time.Second
	}
	if flags.Changed("timeout") {
		cfg.Timeout = time.Duration(flagTimeout) * time.Second
	}
	if flags.Changed("insecure") {
		cfg.Insecure = flagInsecure
	}
	if flags.Changed("collect-errors") {
		cfg.CollectErrors = flagCollectErrors
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
}
