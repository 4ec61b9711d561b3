// Package settings loads relcm's own tool settings: Jira endpoint and
// credentials, Slack token, and the default workflow document name. These
// are distinct from the workflow configuration documents handled by
// pkg/config — settings describe where relcm talks to, documents describe
// what it says.
//
// Layering, lowest precedence first: built-in defaults, then
// $XDG_CONFIG_HOME/relcm/relcm.toml, then RELCM_* environment variables
// (RELCM_JIRA_TOKEN maps to jira.token).
package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/relcm/relcm/pkg/errors"
)

// Settings is the resolved tool configuration
type Settings struct {
	Document string `koanf:"document"`

	Jira struct {
		URL      string `koanf:"url"`
		Username string `koanf:"username"`
		Token    string `koanf:"token"`
	} `koanf:"jira"`

	Slack struct {
		Token string `koanf:"token"`
		API   string `koanf:"api"`
	} `koanf:"slack"`
}

// Load resolves settings from defaults, the user settings file and the
// environment.
func Load() (*Settings, error) {
	return loadFrom(filepath.Join(xdg.ConfigHome, "relcm", "relcm.toml"))
}

func loadFrom(path string) (*Settings, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"document":  "relcm.yaml",
		"slack.api": "https://slack.com/api",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default settings")
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "%s", path)
		}
	}

	err := k.Load(env.Provider("RELCM_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RELCM_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment settings")
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}
	return &s, nil
}
