package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

type Config struct {
	LogLevel          string  `yaml:"log-level" env:"HASAMI_LOG_LEVEL" env-default:"info"`
	Storage           Storage `yaml:"storage"`
	Redis             Redis   `yaml:"redis"`
	SQLiteStoragePath string  `yaml:"sqlite-storage-path" env:"HASAMI_SQLITE_PATH" env-default:"hasami.db"`
	Mongo             Mongo   `yaml:"mongo"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"HASAMI_STORAGE_DRIVER" env-default:"file"`
	Dir    string `yaml:"dir" env:"HASAMI_SAVE_DIR" env-default:"saves"`
}

type Redis struct {
	Host string `yaml:"host" env:"HASAMI_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"HASAMI_REDIS_PORT" env-default:"6379"`
}

type Mongo struct {
	URI      string `yaml:"uri" env:"HASAMI_MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"HASAMI_MONGO_DATABASE" env-default:"hasami"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, or only the environment when path does not exist.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Storage.Driver {
	case DriverFile, DriverRedis, DriverSQLite, DriverMongo:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, that.Storage.Driver)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
