package flags

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Auth holds the token settings. It is read once at startup and handed to
// the token issuer; nothing reads it from the environment afterwards.
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h"`
	Issuer    string        `yaml:"token_issuer" env:"TOKEN_ISSUER" env-default:"errando"`
}

// LoadAuth reads the auth settings from path, or from the environment when
// path is empty or the file does not exist.
func LoadAuth(path string) (Auth, error) {
	var cfg Auth
	if path == "" {
		err := cleanenv.ReadEnv(&cfg)
		return cfg, err
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			cfg = Auth{}
			err = cleanenv.ReadEnv(&cfg)
			return cfg, err
		}
		return cfg, err
	}
	return cfg, nil
}
