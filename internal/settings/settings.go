// apps/go-server/internal/settings/settings.go
//
// Persisted player settings for the terminal client.
//
// The file is JSON ({"timerDuration": 60}) and is merged over Defaults:
// missing keys, a missing file, or an unreadable file all yield defaults.

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	keyTimer    = "timerDuration"
	appDir      = "redactle"
	fileName    = "redactle-config.json"
	defaultTime = 60
)

// Settings is the client configuration.
type Settings struct {
	TimerDuration int `json:"timerDuration" mapstructure:"timerDuration"` // seconds
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{TimerDuration: defaultTime}
}

// DefaultPath is <UserConfigDir>/redactle/redactle-config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads path over the defaults. A missing file is not an error. A file
// that cannot be parsed returns the defaults together with the parse error.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(keyTimer, defaultTime)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("read settings %s: %w", path, err)
	}

	s := Settings{TimerDuration: v.GetInt(keyTimer)}
	if s.TimerDuration <= 0 {
		s.TimerDuration = defaultTime
	}
	return s, nil
}

// Save writes s to path, creating the parent directory.
// viper lowercases keys on write, so the file is encoded directly.
func Save(path string, s Settings) error {
	if s.TimerDuration <= 0 {
		return fmt.Errorf("timer duration must be positive: %d", s.TimerDuration)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
