package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/eransh/subtle/internal/constants"
	"github.com/eransh/subtle/internal/settings"
	"github.com/eransh/subtle/pkg/core/opensubtitles"
)

var (
	// Used for flags.
	cfgFile string
	noInput bool
	verbose bool

	// RootCmd represents the base command when called without any subcommands.
	// Exported for use in tests.
	RootCmd = &cobra.Command{
		Use:   "subtle",
		Short: "Find and download subtitles for your video files.",
		Long: `subtle locates subtitles matching a local video file on OpenSubtitles,
using the file's OSDb hash, its parsed filename or an IMDb ID, and downloads
the best match next to the video.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.subtle/config.yaml)")
	RootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "never prompt; fail instead of asking to retry")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initConfig reads in the config file and ENV variables and sets up logging.
func initConfig() {
	if err := settings.Init(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
	}
	setupLogging()
}

// setupLogging configures logrus: level from settings (--verbose wins) and
// an optional rotating file sink alongside stderr.
func setupLogging() {
	level, err := logrus.ParseLevel(settings.LogLevel())
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if logFile := settings.LogFile(); logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}
}

// newClient creates the XML-RPC client against the production endpoint.
func newClient() (*opensubtitles.Client, error) {
	client, err := opensubtitles.NewClient(constants.XmlRpcEndpoint, constants.DefaultUserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenSubtitles client: %w", err)
	}
	return client, nil
}

// openSession creates a client and logs in with the stored credentials
// (anonymous when none are stored). The login itself goes through the
// retry prompt.
func openSession() (*opensubtitles.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	username, password := settings.Credentials()
	err = withRetry("login", func() error {
		return client.Login(username, password, "en")
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// withRetry runs fn and, on failure, asks the user whether to try again.
// With --no-input set the first error is final. Declining the prompt
// aborts with the last error.
func withRetry(what string, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if noInput {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, err)
		if !promptYesNo(fmt.Sprintf("Retry %s?", what)) {
			return err
		}
	}
}

// promptYesNo asks a [y/N] question on stderr and reads the answer from
// stdin. Anything but "y"/"yes" counts as no.
func promptYesNo(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptLine reads one input line with a prompt on stderr.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
