package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/eransh/subtle/internal/constants"
)

// Configuration keys. The settings record mirrors what the user can toggle:
// preferred languages (ordered), enabled search methods, download behavior
// and stored credentials.
const (
	KeyLanguages     = "languages"
	KeySearchMethods = "search.methods"
	KeyDownloadDir   = "download.dir"
	KeyOverwrite     = "download.overwrite"
	KeyUsername      = "opensubtitles.username"
	KeyPassword      = "opensubtitles.password"
	KeyLogFile       = "log.file"
	KeyLogLevel      = "log.level"
)

// ConfigDir returns the per-user configuration directory, creating it if
// needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, constants.ConfigDirName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// Init wires viper to the config file and environment. When cfgFile is
// empty the default location ($HOME/.subtle/config.yaml, falling back to
// ./config.yaml) is used. A missing config file is not an error; defaults
// apply until the user saves settings.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SUBTLE")
	viper.AutomaticEnv()

	viper.SetDefault(KeyLanguages, []string{constants.DefaultSubLanguageID})
	viper.SetDefault(KeySearchMethods, []string{"hash", "imdb", "text"})
	viper.SetDefault(KeyOverwrite, false)
	viper.SetDefault(KeyLogLevel, "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading config file (%s): %w", viper.ConfigFileUsed(), err)
	}
	return nil
}

// Save writes the current settings to the standard config path (or the file
// viper was pointed at explicitly).
func Save() error {
	if used := viper.ConfigFileUsed(); used != "" {
		if err := viper.WriteConfigAs(used); err != nil {
			return fmt.Errorf("failed to save settings to %s: %w", used, err)
		}
		return nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save settings to %s: %w", path, err)
	}
	return nil
}

// Languages returns the ordered preferred language codes.
func Languages() []string { return viper.GetStringSlice(KeyLanguages) }

// SetLanguages replaces the preferred language list.
func SetLanguages(codes []string) { viper.Set(KeyLanguages, codes) }

// SearchMethods returns the enabled search method names.
func SearchMethods() []string { return viper.GetStringSlice(KeySearchMethods) }

// SetSearchMethods replaces the enabled search method names.
func SetSearchMethods(methods []string) { viper.Set(KeySearchMethods, methods) }

// DownloadDir returns the download directory override ("" means next to the
// video file).
func DownloadDir() string { return viper.GetString(KeyDownloadDir) }

// Overwrite reports whether existing subtitle files may be replaced.
func Overwrite() bool { return viper.GetBool(KeyOverwrite) }

// Credentials returns the stored OpenSubtitles username and password; both
// empty means anonymous sessions.
func Credentials() (username, password string) {
	return viper.GetString(KeyUsername), viper.GetString(KeyPassword)
}

// SetCredentials stores the OpenSubtitles credentials.
func SetCredentials(username, password string) {
	viper.Set(KeyUsername, username)
	viper.Set(KeyPassword, password)
}

// LogFile returns the rotating log file path ("" disables file logging).
func LogFile() string { return viper.GetString(KeyLogFile) }

// LogLevel returns the configured log level name.
func LogLevel() string { return viper.GetString(KeyLogLevel) }
