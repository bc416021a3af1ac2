package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	envFiles    = []string{".env", ".env.local"}
	configPaths = []string{".", "./config", "/etc/wind", "$HOME/.wind"}
)

// loadEnvFiles loads every .env file found in dirs. Earlier files win since
// godotenv never overrides variables that are already set.
func loadEnvFiles(dirs ...string) {
	for _, dir := range dirs {
		for _, name := range envFiles {
			// Missing files are expected
			godotenv.Load(filepath.Join(os.ExpandEnv(dir), name))
		}
	}
}

func initConfig(path string) error {
	loadEnvFiles(".")

	if path != "" {
		viper.SetConfigFile(path)
		loadEnvFiles(filepath.Dir(path))
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, dir := range configPaths {
			viper.AddConfigPath(dir)
		}
		loadEnvFiles(configPaths...)
	}

	// WIND_HTTP_ADDRESS maps onto http.address
	viper.SetEnvPrefix("WIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}
