package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/cmdhl/internal/config"
	"github.com/zjrosen/cmdhl/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	colorMode string
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "cmdhl",
	Short: "Highlight shell command lines as you type",
	Long: `cmdhl tokenizes a shell command line and paints it with declarative
highlight rules. Run without arguments to open the interactive editor; the
accepted command is printed to stdout.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPostRunE: teardown,
	RunE:               runEdit,
}

func init() {
	// Assigned here rather than in the literal: setup refers to rootCmd,
	// which would otherwise form an initialization cycle.
	rootCmd.PersistentPreRunE = setup

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/cmdhl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also CMDHL_DEBUG)")
	rootCmd.PersistentFlags().String("rules", "",
		"rules file replacing the built-in rules")
	rootCmd.PersistentFlags().String("theme", "",
		"theme preset: default, catppuccin-mocha, high-contrast, plain")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto",
		"colour output: auto, always, never")

	_ = viper.BindPFlag("rules_file", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("theme.preset", rootCmd.PersistentFlags().Lookup("theme"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .cmdhl/config.yaml (current directory)
		// 2. ~/.config/cmdhl/config.yaml (user config)
		if _, err := os.Stat(filepath.Join(".cmdhl", "config.yaml")); err == nil {
			viper.SetConfigFile(filepath.Join(".cmdhl", "config.yaml"))
		} else {
			viper.AddConfigPath(config.DefaultConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the user default
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := filepath.Join(config.DefaultConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}
}

// setup starts logging, applies the colour mode and loads the configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if debugEnabled() {
		cleanup, err := initLogging(cmd == rootCmd)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "cmdhl starting", "command", cmd.Name(), "version", version)
	}

	switch colorMode {
	case "auto", "":
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", colorMode)
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func debugEnabled() bool {
	return debugFlag || os.Getenv("CMDHL_DEBUG") != ""
}

// initLogging sends the log to a file for the editor, whose terminal belongs
// to the UI, and to stderr for the one-shot commands.
func initLogging(toFile bool) (func(), error) {
	if !toFile {
		log.InitWriter(os.Stderr)
		return log.Reset, nil
	}
	logPath := os.Getenv("CMDHL_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "cmdhl")
	if err != nil {
		return nil, err
	}
	return func() {
		log.Reset()
		cleanup()
	}, nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
