package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/saeedalam/stacksignal/internal/config"
	"github.com/saeedalam/stacksignal/internal/intent"
	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/patterns"
	"github.com/saeedalam/stacksignal/internal/scan"
	"github.com/saeedalam/stacksignal/internal/techstack"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	settings  *viper.Viper
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "stacksignal",
	Short: "Detect a repository's tech stack and interpret coding requests",
	Long: heredoc.Doc(`
		stacksignal - Technology stack and request intent classifier

		stacksignal looks at a source tree and scores which technologies and
		frameworks it uses, then suggests stack improvements. It also reads
		free-text requests ("Analyze this Django code for security issues") and
		extracts the action, technologies, focus areas, constraints and any
		quoted code, files or URLs.

		Every command reports a success envelope or a typed error
		(AnalysisError, IntentError, ProcessingError, ValidationError).

		Quick Start:
		  stacksignal analyze .                 Score the current repository
		  stacksignal process "Optimize my React app for performance"
		  stacksignal patterns                  Show the pattern tables
		  stacksignal serve                     Start the MCP server for IDE agents
		  stacksignal watch .                   Re-analyze on every change

		Configuration is read from .stacksignal.yaml in the working directory or
		$HOME, and from STACKSIGNAL_* environment variables.
	`),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.stacksignal.yaml or $HOME/.stacksignal.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	// versionCmd is registered in version.go
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	settings = config.New(cfgFile)
	_ = settings.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = settings.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	configErr = config.Read(settings)
}

// app wires the components a command needs from the loaded configuration
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *patterns.Registry
	reader    *scan.Reader
	analyzer  *techstack.Analyzer
	processor *intent.Processor
}

func newApp(cmd *cobra.Command) (*app, error) {
	if configErr != nil {
		return nil, configErr
	}
	if settings == nil {
		initConfig()
	}

	cfg, err := config.Load(settings)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if used := settings.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file", "path", used)
	}

	reg := patterns.Default()
	collector, err := scan.NewCollector(cfg.ScanOptions(), logger)
	if err != nil {
		return nil, err
	}
	reader := scan.NewReader(cfg.Scan.MaxFileBytes)

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		reader:    reader,
		analyzer:  techstack.NewAnalyzer(reg, collector, reader, cfg.AnalyzerOptions(), logger),
		processor: intent.NewProcessor(reg, cfg.Intent.Weights, logger),
	}, nil
}
