package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper points Viper at the config file and wires environment overrides.
// When configFile is empty the standard locations are searched; the search
// requires an explicit YAML extension so a binary named "spellbook" in the
// working directory is never mistaken for config.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("spellbook")
		viper.SetConfigType("yaml")
	}

	// SPELLBOOK_SERVER_URL overrides server_url, and so on.
	viper.SetEnvPrefix("SPELLBOOK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func findConfigFile() string {
	dirs := []string{"."}
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		dirs = append(dirs, filepath.Join(x, "spellbook"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "spellbook"))
	}
	for _, dir := range dirs {
		for _, name := range []string{"spellbook.yaml", "spellbook.yml"} {
			p := filepath.Join(dir, name)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}
