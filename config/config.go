package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug                        bool   `envconfig:"debug"`
	Port                         int    `envconfig:"port" default:"8080"`
	Env                          string `envconfig:"env"`
	BaseUrl                      string `envconfig:"base_url"`
	PostgresHost                 string `envconfig:"postgres_host"`
	PostgresUser                 string `envconfig:"postgres_user"`
	PostgresDB                   string `envconfig:"postgres_db"`
	PostgresPort                 int    `envconfig:"postgres_port"`
	PostgresPassword             string `envconfig:"postgres_password"`
	SupabaseJWTSecret            string `envconfig:"supabase_jwt_secret"`
	RedisAddr                    string `envconfig:"redis_addr"`
	RedisPassword                string `envconfig:"redis_password"`
	AwsBucket                    string `envconfig:"aws_bucket"`
	AwsRegion                    string `envconfig:"aws_region"`
	AwsAccessKeyID               string `envconfig:"aws_access_key_id"`
	AwsSecretAccessKey           string `envconfig:"aws_secret_access_key"`
	GoogleApplicationCredentials string `envconfig:"google_application_credentials"`
	WsHandshakeGraceSeconds      int    `envconfig:"ws_handshake_grace_seconds" default:"10"`
	AccessControlAllowOrigin     string `envconfig:"access_control_allow_origin"`
}

// WsHandshakeGrace is the maximum time a realtime connection may spend in the
// authentication handshake before the gateway closes it.
func (c *Config) WsHandshakeGrace() time.Duration {
	return time.Duration(c.WsHandshakeGraceSeconds) * time.Second
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("contractingo", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
