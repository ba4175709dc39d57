package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"hermannm.dev/wrap"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
)

type Config struct {
	Pinot Pinot
	API   API
	Log   Log
}

type Pinot struct {
	BrokerURLs          []string      `env:"PINOT_BROKER_URLS" envSeparator:","`
	ControllerURL       string        `env:"PINOT_CONTROLLER_URL"`
	ZookeeperServers    []string      `env:"PINOT_ZOOKEEPER_SERVERS" envSeparator:","`
	ZookeeperPathPrefix string        `env:"PINOT_ZOOKEEPER_PATH_PREFIX"`
	AuthHeader          string        `env:"PINOT_AUTH_HEADER"`
	Timeout             time.Duration `env:"PINOT_TIMEOUT" envDefault:"30s"`
	QueryTimeoutMs      int           `env:"PINOT_QUERY_TIMEOUT_MS" envDefault:"0"`
	UseMultistageEngine bool          `env:"PINOT_USE_MULTISTAGE_ENGINE" envDefault:"false"`
}

type API struct {
	Address          string `env:"API_ADDRESS" envDefault:":8080"`
	ArrowCompression string `env:"API_ARROW_COMPRESSION" envDefault:"none"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// ReadFromEnv loads an optional .env file from the working directory and parses the process
// environment. Variables already set in the environment win over the .env file.
func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}
	return parse(env.Options{})
}

// ReadFromFile parses the environment after loading the given env files, which must exist.
func ReadFromFile(filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		return Config{}, wrap.Error(err, "failed to load env file")
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var config Config
	if err := env.ParseWithOptions(&config, opts); err != nil {
		return Config{}, wrap.Error(err, "failed to parse environment")
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the values env parsing cannot.
func (config Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(config.Log.Level); err != nil {
		errs = append(errs, wrap.Errorf(err, "unsupported value '%s' for LOG_LEVEL", config.Log.Level))
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		errs = append(errs, errors.New("LOG_FORMAT must be one of: 'text', 'json'"))
	}
	if _, err := frames.ParseCompression(config.API.ArrowCompression); err != nil {
		errs = append(errs, wrap.Error(err, "invalid API_ARROW_COMPRESSION"))
	}
	if len(errs) != 0 {
		return wrap.Errors("invalid environment variables", errs...)
	}
	return nil
}

// Settings derives the datasource settings from the Pinot section.
func (p Pinot) Settings() datasource.Settings {
	return datasource.Settings{
		BrokerURLs:          p.BrokerURLs,
		ControllerURL:       p.ControllerURL,
		ZookeeperServers:    p.ZookeeperServers,
		ZookeeperPathPrefix: p.ZookeeperPathPrefix,
		AuthHeader:          p.AuthHeader,
		Timeout:             p.Timeout,
		QueryTimeoutMs:      p.QueryTimeoutMs,
		UseMultistageEngine: p.UseMultistageEngine,
	}
}

// Compression returns the validated Arrow IPC compression.
func (a API) Compression() frames.Compression {
	compression, err := frames.ParseCompression(a.ArrowCompression)
	if err != nil {
		return frames.CompressionNone
	}
	return compression
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (l Log) ConfigureLogging() {
	if level, err := log.ParseLevel(l.Level); err == nil {
		log.SetLevel(level)
	}
	if l.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
