package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"runepkg/internal/adapters"
	"runepkg/internal/shared"
	"runepkg/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "RUNEPKG"

type RootConfig struct {
	ConfigFile    string
	LogLevel      string
	BuildDir      string
	AURURL        string
	FetchBackend  string
	KeepBuildDirs bool
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "runepkg",
		Short:        "Build, install and update AUR packages",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.BuildDir, "build-dir", "", "Build root for package working directories")
	flags.StringVar(&cfg.AURURL, "aur-url", adapters.DefaultAURURL, "AUR base URL")
	flags.StringVar(&cfg.FetchBackend, "fetch-backend", string(types.FetchBackendGit), "Source fetch backend (git|go-git)")
	flags.BoolVar(&cfg.KeepBuildDirs, "keep-build-dirs", false, "Keep working directories after successful builds")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("build_dir", flags.Lookup("build-dir"))
	_ = viper.BindPFlag("aur_url", flags.Lookup("aur-url"))
	_ = viper.BindPFlag("fetch_backend", flags.Lookup("fetch-backend"))
	_ = viper.BindPFlag("keep_build_dirs", flags.Lookup("keep-build-dirs"))

	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newOutdatedCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newSearchCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newCleanCommand())
	cmd.AddCommand(newDoctorCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetDefault("rpc_timeout_sec", 30)
	viper.SetDefault("rpc_rate_per_sec", 5.0)
	viper.SetDefault("sudo_prompt", shared.DefaultSudoPrompt)

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("runepkg")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/runepkg")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

// setupLogging sends logs to stderr so stdout carries only command output.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	case errbuilder.CodeUnavailable, errbuilder.CodeDeadlineExceeded:
		return 6
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
