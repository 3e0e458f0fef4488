package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
	"time"
)

type Config struct {
	IsDebug  bool   `yaml:"is_debug" env:"IS_DEBUG" env-default:"false"`
	TimeZone string `yaml:"time_zone" env:"TIME_ZONE" env-default:"UTC"`
	Ocpi     struct {
		VersionsUrl     string        `yaml:"versions_url" env:"OCPI_VERSIONS_URL" env-required:"true"`
		Token           string        `yaml:"token" env:"OCPI_TOKEN" env-required:"true"`
		CountryCode     string        `yaml:"country_code" env:"OCPI_COUNTRY_CODE" env-default:"ES"`
		PartyId         string        `yaml:"party_id" env:"OCPI_PARTY_ID" env-default:"EMS"`
		Version         string        `yaml:"version" env:"OCPI_VERSION" env-default:""`
		CommandsBaseUrl string        `yaml:"commands_base_url" env:"OCPI_COMMANDS_BASE_URL" env-required:"true"`
		CallbackToken   string        `yaml:"callback_token" env:"OCPI_CALLBACK_TOKEN" env-default:""`
		RequestTimeout  time.Duration `yaml:"request_timeout" env:"OCPI_REQUEST_TIMEOUT" env-default:"30s"`
	} `yaml:"ocpi"`
	Commands struct {
		TTL          time.Duration `yaml:"ttl" env:"COMMANDS_TTL" env-default:"24h"`
		ReapInterval time.Duration `yaml:"reap_interval" env:"COMMANDS_REAP_INTERVAL" env-default:"1m"`
	} `yaml:"commands"`
	Listen struct {
		BindIP   string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env-default:"5100"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	} `yaml:"listen"`
	Api struct {
		Enabled     bool          `yaml:"enabled" env-default:"false"`
		BindIP      string        `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port        string        `yaml:"port" env-default:"5200"`
		TLS         bool          `yaml:"tls_enabled" env-default:"false"`
		CertFile    string        `yaml:"cert_file" env-default:""`
		KeyFile     string        `yaml:"key_file" env-default:""`
		WaitTimeout time.Duration `yaml:"wait_timeout" env-default:"10s"`
	} `yaml:"api"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"9100"`
	} `yaml:"metrics"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"emsp"`
	} `yaml:"mongo"`
	Telegram struct {
		Enabled bool    `yaml:"enabled" env-default:"false"`
		ApiKey  string  `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		ChatIds []int64 `yaml:"chat_ids" env:"TELEGRAM_CHAT_IDS" env-separator:","`
	} `yaml:"telegram"`
}

var instance *Config
var once sync.Once

// GetConfig reads the configuration once per process; later calls return the same instance.
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		log.Println("reading config from", path)
		instance, err = Load(path)
	})
	return instance, err
}

func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		log.Println(desc)
		return nil, err
	}
	return conf, nil
}
