package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	VTU struct {
		BaseURL  string `env:"VTU_BASE_URL" envDefault:"https://vtu.ng/wp-json/api/v1"`
		Username string `env:"VTU_USERNAME,required"`
		Password string `env:"VTU_PASSWORD,required"`

		// Minimum provider float balance required before any reward is promised.
		AdmissionThreshold float64 `env:"VTU_ADMISSION_THRESHOLD" envDefault:"3000"`

		TimeoutSeconds int `env:"VTU_TIMEOUT_SECONDS" envDefault:"20"`

		// Minutes between background provider balance checks.
		BalanceCheckMinutes int `env:"VTU_BALANCE_CHECK_MINUTES" envDefault:"1"`
	}

	Cipher struct {
		// Shift used for at-rest phone number obfuscation. Changing it
		// invalidates every stored phone number, so treat it as write-once.
		Shift int `env:"CIPHER_SHIFT" envDefault:"7"`
	}

	GeoIP struct {
		Endpoint string `env:"GEOIP_ENDPOINT" envDefault:"https://ipinfo.io/json"`
		Token    string `env:"GEOIP_TOKEN" envDefault:""`
	}

	Identity struct {
		BaseURL string `env:"IDENTITY_BASE_URL,required"`
		APIKey  string `env:"IDENTITY_API_KEY" envDefault:""`
	}

	Fraud struct {
		// Seconds a client must wait between registration attempts.
		RegistrationCooldown int `env:"FRAUD_REGISTRATION_COOLDOWN" envDefault:"60"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; in production the variables are set directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
