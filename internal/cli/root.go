package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rohmanhakim/webqa/internal/build"
	"github.com/rohmanhakim/webqa/internal/config"
	"github.com/rohmanhakim/webqa/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names double as viper keys. Every key can also be set through the
// environment as WEBQA_<NAME>, e.g. WEBQA_MAX_LINKS=50.
const (
	keyConfigFile          = "config-file"
	keyDebug               = "debug"
	keyLogJSON             = "log-json"
	keyQuiet               = "quiet"
	keyMaxDepth            = "max-depth"
	keyMaxLinks            = "max-links"
	keyDelay               = "delay"
	keyRespectRobots       = "respect-robots"
	keyCrawlTimeout        = "crawl-timeout"
	keyProbeTimeout        = "probe-timeout"
	keyUserAgent           = "user-agent"
	keyInsecure            = "insecure"
	keyConcurrency         = "concurrency"
	keyAnalyzerConcurrency = "analyzer-concurrency"
	keyMaxAnalyzerPages    = "max-analyzer-pages"
	keyAnalyzers           = "analyzer"
	keyOutputDir           = "output-dir"
	keyFormat              = "format"
	keyDBPath              = "db-path"
	keyListen              = "listen"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webqa",
	Short: "Automated website QA: link checks and page analysis.",
	Long: `webqa discovers the links of a website (or takes a list of URLs),
checks every link concurrently and runs page analyzers (SEO, accessibility,
buttons, performance) on the first healthy pages.

Every check becomes a numbered test case that can be exported as JSON or CSV,
stored in a local SQLite history, or served over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWith runs the CLI with explicit arguments and output streams.
func ExecuteWith(args []string, stdout io.Writer, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func init() {
	config.DefaultUserAgent = build.UserAgent()

	flags := rootCmd.PersistentFlags()
	flags.String(keyConfigFile, "", "config file path, JSON or YAML (e.g., ./webqa.yaml)")
	flags.Bool(keyDebug, false, "enable debug logging")
	flags.Bool(keyLogJSON, false, "log as JSON")
	flags.BoolP(keyQuiet, "q", false, "only log errors")
	flags.Int(keyMaxDepth, 0, "maximum link depth from the seed (pages at this depth are not fetched)")
	flags.Int(keyMaxLinks, 0, "maximum number of links to discover")
	flags.Duration(keyDelay, 0, "delay between two crawl requests")
	flags.Bool(keyRespectRobots, false, "skip links disallowed by robots.txt while crawling")
	flags.Duration(keyCrawlTimeout, 0, "timeout for crawl and analyzer page fetches")
	flags.Duration(keyProbeTimeout, 0, "timeout for one link probe")
	flags.String(keyUserAgent, "", "user agent string for HTTP requests")
	flags.Bool(keyInsecure, false, "skip TLS certificate verification")
	flags.Int(keyConcurrency, 0, "number of concurrent link probes")
	flags.Int(keyAnalyzerConcurrency, 0, "number of pages analyzed concurrently")
	flags.Int(keyMaxAnalyzerPages, 0, "number of healthy pages given to analyzers")
	flags.StringSlice(keyAnalyzers, nil, "analyzers to run: seo, accessibility, buttons, performance")
	flags.String(keyOutputDir, "", "directory for report files")
	flags.String(keyFormat, "", "report format: json or csv")
	flags.String(keyDBPath, "", "SQLite file for run history (empty disables history)")
	flags.String(keyListen, "", "listen address of the HTTP API")

	rootCmd.AddCommand(crawlCmd, probeCmd, runCmd, serveCmd, historyCmd, versionCmd)
	bindFlags()
}

func bindFlags() {
	viper.SetEnvPrefix("WEBQA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

// InitConfigWithError builds the config from the config file when one is
// given, otherwise from the defaults overridden by flags and environment.
func InitConfigWithError() (config.Config, error) {
	if path := viper.GetString(keyConfigFile); path != "" {
		cfg, err := config.WithConfigFile(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if viper.IsSet(keyMaxDepth) {
		configBuilder = configBuilder.WithMaxDepth(viper.GetInt(keyMaxDepth))
	}
	if viper.IsSet(keyMaxLinks) {
		configBuilder = configBuilder.WithMaxLinks(viper.GetInt(keyMaxLinks))
	}
	if viper.IsSet(keyDelay) {
		configBuilder = configBuilder.WithPolitenessDelay(viper.GetDuration(keyDelay))
	}
	if viper.IsSet(keyRespectRobots) {
		configBuilder = configBuilder.WithRespectRobots(viper.GetBool(keyRespectRobots))
	}
	if viper.IsSet(keyCrawlTimeout) {
		configBuilder = configBuilder.WithCrawlTimeout(viper.GetDuration(keyCrawlTimeout))
	}
	if viper.IsSet(keyProbeTimeout) {
		configBuilder = configBuilder.WithProbeTimeout(viper.GetDuration(keyProbeTimeout))
	}
	if viper.IsSet(keyUserAgent) {
		configBuilder = configBuilder.WithUserAgent(viper.GetString(keyUserAgent))
	}
	if viper.IsSet(keyInsecure) {
		configBuilder = configBuilder.WithInsecureSkipVerify(viper.GetBool(keyInsecure))
	}
	if viper.IsSet(keyConcurrency) {
		configBuilder = configBuilder.WithProbeConcurrency(viper.GetInt(keyConcurrency))
	}
	if viper.IsSet(keyAnalyzerConcurrency) {
		configBuilder = configBuilder.WithAnalyzerConcurrency(viper.GetInt(keyAnalyzerConcurrency))
	}
	if viper.IsSet(keyMaxAnalyzerPages) {
		configBuilder = configBuilder.WithMaxAnalyzerPages(viper.GetInt(keyMaxAnalyzerPages))
	}
	if viper.IsSet(keyAnalyzers) {
		configBuilder = configBuilder.WithAnalyzers(splitList(viper.GetStringSlice(keyAnalyzers)))
	}
	if viper.IsSet(keyOutputDir) {
		configBuilder = configBuilder.WithOutputDir(viper.GetString(keyOutputDir))
	}
	if viper.IsSet(keyFormat) {
		configBuilder = configBuilder.WithReportFormat(viper.GetString(keyFormat))
	}
	if viper.IsSet(keyDBPath) {
		configBuilder = configBuilder.WithDBPath(viper.GetString(keyDBPath))
	}
	if viper.IsSet(keyListen) {
		configBuilder = configBuilder.WithListenAddr(viper.GetString(keyListen))
	}

	return configBuilder.Build()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return logger.New(logger.Options{
		Debug:  viper.GetBool(keyDebug),
		JSON:   viper.GetBool(keyLogJSON),
		Quiet:  viper.GetBool(keyQuiet),
		Output: cmd.ErrOrStderr(),
	})
}

// splitList accepts both repeated values and comma separated values.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ResetFlags restores every flag to its default and forgets viper overrides.
func ResetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, sub := range rootCmd.Commands() {
		sub.Flags().VisitAll(reset)
	}
	viper.Reset()
	bindFlags()
}

// SetFlagForTest sets a persistent flag as if it was given on the command line.
func SetFlagForTest(name string, value string) error {
	return rootCmd.PersistentFlags().Set(name, value)
}
