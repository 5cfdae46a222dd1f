package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"runepkg/internal/app"
	"runepkg/internal/types"
)

func newAppService() (app.Service, error) {
	return app.NewService(serviceConfig())
}

func serviceConfig() app.Config {
	return app.Config{
		AURURL:        viper.GetString("aur_url"),
		BuildDir:      viper.GetString("build_dir"),
		RPCTimeoutSec: viper.GetInt("rpc_timeout_sec"),
		RPCRatePerSec: viper.GetFloat64("rpc_rate_per_sec"),
		FetchBackend:  types.FetchBackend(strings.ToLower(strings.TrimSpace(viper.GetString("fetch_backend")))),
		KeepBuildDirs: viper.GetBool("keep_build_dirs"),
		Ignore:        viper.GetStringSlice("ignore"),
		SudoPrompt:    viper.GetString("sudo_prompt"),
		AsRoot:        os.Geteuid() == 0,
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
