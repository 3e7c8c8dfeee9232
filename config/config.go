// Package config loads the handful of environment-driven settings
// each binary needs: the AMQP connection string, the two HTTP/WS
// listen addresses and the log level. There is no YAML file here —
// unlike the market-making bot this engine configures, every setting
// has a sane default and the whole surface fits in a handful of env
// vars — but it is loaded the same way: godotenv for local .env
// convenience, viper for env binding and defaults.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultAMQPAddr matches the default vhost of a local RabbitMQ.
	DefaultAMQPAddr = "amqp://127.0.0.1:5672/%2f"
	// DefaultRESTListenAddr is fixed per spec; it is not configurable.
	DefaultRESTListenAddr = "127.0.0.1:3030"
	// DefaultWSMarketDataListenAddr is used when WS_MD_API_LISTEN_ADDR is unset.
	DefaultWSMarketDataListenAddr = "127.0.0.1:4040"
	// DefaultLogLevel is used when LOG_LEVEL is unset.
	DefaultLogLevel = "info"
)

// Config holds every setting read from the environment.
type Config struct {
	AMQPAddr               string
	RESTListenAddr         string
	WSMarketDataListenAddr string
	LogLevel               string
}

// Load reads configuration from the environment, falling back to a
// local .env file (if present) before applying defaults. A missing
// .env file is not an error: it is the common case outside local
// development.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("amqp_addr", DefaultAMQPAddr)
	v.SetDefault("rest_listen_addr", DefaultRESTListenAddr)
	v.SetDefault("ws_md_api_listen_addr", DefaultWSMarketDataListenAddr)
	v.SetDefault("log_level", DefaultLogLevel)

	_ = v.BindEnv("amqp_addr", "AMQP_ADDR")
	_ = v.BindEnv("ws_md_api_listen_addr", "WS_MD_API_LISTEN_ADDR")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	return Config{
		AMQPAddr: v.GetString("amqp_addr"),
		// The REST listen address is fixed; it is not read from the
		// environment.
		RESTListenAddr:         DefaultRESTListenAddr,
		WSMarketDataListenAddr: v.GetString("ws_md_api_listen_addr"),
		LogLevel:               v.GetString("log_level"),
	}, nil
}
