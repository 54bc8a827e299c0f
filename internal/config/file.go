package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Overlay modes.
const (
	OverlayAuto     = "auto"
	OverlayTerminal = "terminal"
	OverlayOff      = "off"
)

// File is the daemon's sender configuration read from config.yaml.
type File struct {
	ConsoleEnabled  bool
	ConsoleBell     bool
	TelegramToken   string
	TelegramChatID  int64
	OverlayMode     string
	WebhooksEnabled bool

	// Path is the file that was read, empty when only defaults applied.
	Path string
}

// Dir returns the nudge configuration directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "nudge")
}

// TelegramEnabled reports whether a bot token and chat are configured.
func (f *File) TelegramEnabled() bool {
	return f.TelegramToken != "" && f.TelegramChatID != 0
}

func newViper(dirs ...string) *viper.Viper {
	v := viper.New()
	v.SetDefault("console.enabled", true)
	v.SetDefault("console.bell", true)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("overlay.mode", OverlayAuto)
	v.SetDefault("webhooks.enabled", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	return v
}

// LoadFile reads config.yaml from dirs, or from Dir() when none are given.
// A missing file is not an error; defaults and NUDGE_* variables apply.
func LoadFile(dirs ...string) (*File, error) {
	if len(dirs) == 0 {
		dirs = []string{Dir()}
	}
	v := newViper(dirs...)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	mode := strings.ToLower(v.GetString("overlay.mode"))
	switch mode {
	case OverlayAuto, OverlayTerminal, OverlayOff:
	default:
		mode = OverlayAuto
	}

	return &File{
		ConsoleEnabled:  v.GetBool("console.enabled"),
		ConsoleBell:     v.GetBool("console.bell"),
		TelegramToken:   v.GetString("telegram.token"),
		TelegramChatID:  v.GetInt64("telegram.chat_id"),
		OverlayMode:     mode,
		WebhooksEnabled: v.GetBool("webhooks.enabled"),
		Path:            v.ConfigFileUsed(),
	}, nil
}
