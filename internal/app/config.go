package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/studyboard/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	config.SetGlobal(cfg)
}

// ReadClientConfig reads the terminal client settings from path and
// the environment.
func ReadClientConfig(path string) (*config.ClientConfig, error) {
	cfg, err := config.ReadClient(path)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read client config")
		return nil, err
	}
	globalLogger.Debug().
		Str("api_url", cfg.APIURL).
		Str("state_path", cfg.StatePath).
		Msg("read client config")
	return cfg, nil
}
