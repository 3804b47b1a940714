package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/robotx/internal/build"
	"github.com/rohmanhakim/robotx/internal/config"
	"github.com/rohmanhakim/robotx/internal/metadata"
	"github.com/rohmanhakim/robotx/internal/robots"
	"github.com/rohmanhakim/robotx/pkg/retry"
	"github.com/rohmanhakim/robotx/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	targetURLs  []string
	userAgent   string
	cacheDir    string
	cacheExpiry time.Duration
	timeout     time.Duration
	maxAttempt  int
	jitter      time.Duration
	randomSeed  int64
	logLevel    string
)

// parseTargetURLs converts a string slice of URLs to []url.URL
func parseTargetURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("target URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing target URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "robotx",
	Short: "A robots.txt exclusion checker.",
	Long: `robotx answers, for a URL and an agent, whether the agent may fetch the URL
and how long it should wait between requests, following the Robots Exclusion
Protocol. Declarations can be cached on disk between runs.`,
	SilenceUsage: true,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether URLs may be fetched",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := parseTargetURLs(append(append([]string{}, targetURLs...), args...))
		if err != nil {
			return fmt.Errorf("%w (use --url or pass URLs as arguments)", err)
		}

		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		recorder, err := metadata.NewRecorder(cfg.LogLevel(), "stderr")
		if err != nil {
			return err
		}
		defer recorder.Sync()

		engine := NewEngine(cfg, recorder)
		return RunCheck(cmd.Context(), cmd.OutOrStdout(), engine, urls, cfg.UserAgent())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the robotx version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), build.Summary())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := ExecuteWithArgs(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the root command with explicit arguments and writers.
func ExecuteWithArgs(ctx context.Context, args []string, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/robotx.json)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "agent string sent with requests and matched against declarations")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory for cached declarations (empty disables caching)")
	rootCmd.PersistentFlags().DurationVar(&cacheExpiry, "cache-expiry", 0, "how long a cached declaration stays fresh")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for declaration requests")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "attempts per declaration fetch (1 disables retry)")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to retry backoff")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")

	checkCmd.Flags().StringArrayVar(&targetURLs, "url", []string{}, "URL to check (can be repeated)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError builds the Config from the config file when one is
// given, otherwise from defaults overridden by flags.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}

	if cacheExpiry > 0 {
		configBuilder = configBuilder.WithCacheExpiry(cacheExpiry)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewEngine wires an Engine from cfg: an HTTP source, retried when
// MaxAttempt is above one, behind the directory cache when CacheDir is set.
func NewEngine(cfg config.Config, metadataSink metadata.MetadataSink) *robots.Engine {
	var source robots.StreamSource = robots.NewHTTPSource(metadataSink, cfg.UserAgent(), cfg.Timeout())
	if cfg.MaxAttempt() > 1 {
		source = robots.NewRetryingSource(source, retry.NewRetryParam(
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		))
	}

	return robots.NewEngine(
		source,
		robots.WithCacheDir(cfg.CacheDir()),
		robots.WithExpiry(cfg.CacheExpiry()),
		robots.WithMetadataSink(metadataSink),
	)
}

// RunCheck writes one line per URL: "<url>\tallowed=<bool>\tcrawl-delay=<n>".
func RunCheck(ctx context.Context, out io.Writer, engine *robots.Engine, urls []url.URL, agent string) error {
	for _, target := range urls {
		decision := engine.Decide(ctx, target, agent)
		crawlDelay := 0
		if decision.CrawlDelay != nil {
			crawlDelay = int(*decision.CrawlDelay / time.Second)
		}
		if _, err := fmt.Fprintf(out, "%s\tallowed=%t\tcrawl-delay=%d\n", target.String(), decision.Allowed, crawlDelay); err != nil {
			return err
		}
	}
	return nil
}

func ResetFlags() {
	cfgFile = ""
	targetURLs = []string{}
	userAgent = ""
	cacheDir = ""
	cacheExpiry = 0
	timeout = 0
	maxAttempt = 0
	jitter = 0
	randomSeed = 0
	logLevel = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetTargetURLsForTest(urls []string) {
	targetURLs = urls
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetCacheExpiryForTest(expiry time.Duration) {
	cacheExpiry = expiry
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetLogLevelForTest(level string) {
	logLevel = level
}
