package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ProviderAPI      = "api"
	ProviderWordList = "wordlist"
	ProviderAllowAll = "allow-all"
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string     `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string     `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis      `yaml:"redis"`
	Game       Game       `yaml:"game"`
	Dictionary Dictionary `yaml:"dictionary"`
}

type Redis struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	MatchTTL time.Duration `yaml:"match-ttl" env:"REDIS_MATCH_TTL" env-default:"0s"`
}

type Game struct {
	RackSize               int           `yaml:"rack-size" env:"GAME_RACK_SIZE" env-default:"7"`
	MinPlayers             int           `yaml:"min-players" env:"GAME_MIN_PLAYERS" env-default:"2"`
	MaxPlayers             int           `yaml:"max-players" env:"GAME_MAX_PLAYERS" env-default:"4"`
	DefaultDurationMinutes int           `yaml:"default-duration-minutes" env:"GAME_DEFAULT_DURATION_MINUTES" env-default:"0"`
	ReconnectGrace         time.Duration `yaml:"reconnect-grace" env:"GAME_RECONNECT_GRACE" env-default:"30s"`
	ChatHistory            int           `yaml:"chat-history" env:"GAME_CHAT_HISTORY" env-default:"100"`
}

type Dictionary struct {
	Provider     string        `yaml:"provider" env:"DICTIONARY_PROVIDER" env-default:"api"`
	APIURL       string        `yaml:"api-url" env:"DICTIONARY_API_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout      time.Duration `yaml:"timeout" env:"DICTIONARY_TIMEOUT" env-default:"3s"`
	CacheTTL     time.Duration `yaml:"cache-ttl" env:"DICTIONARY_CACHE_TTL" env-default:"24h"`
	WordListPath string        `yaml:"wordlist-path" env:"DICTIONARY_WORDLIST_PATH"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path and applies env overrides. An empty path reads env only.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Dictionary.Provider {
	case ProviderAPI, ProviderWordList, ProviderAllowAll:
	default:
		return fmt.Errorf("unknown dictionary provider %q", that.Dictionary.Provider)
	}

	if that.Game.RackSize <= 0 {
		return fmt.Errorf("rack size must be positive, got %d", that.Game.RackSize)
	}

	if that.Game.MaxPlayers < that.Game.MinPlayers {
		return fmt.Errorf("max players %d is below min players %d", that.Game.MaxPlayers, that.Game.MinPlayers)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Duration is the default match length; 0 means untimed.
func (that *Game) Duration() time.Duration {
	return time.Duration(that.DefaultDurationMinutes) * time.Minute
}
