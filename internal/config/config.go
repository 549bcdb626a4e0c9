package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeTrain    = "train"
	ModeEvaluate = "evaluate"
	ModeServe    = "serve"
)

const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info"`
	Mode       string     `yaml:"mode" env:"TTT_MODE" env-default:"train"`
	HTTPPort   string     `yaml:"http-port" env:"TTT_HTTP_PORT" env-default:"9090"`
	Storage    Storage    `yaml:"storage"`
	Redis      Redis      `yaml:"redis"`
	Training   Training   `yaml:"training"`
	Evaluation Evaluation `yaml:"evaluation"`
}

type Storage struct {
	Driver  string `yaml:"driver" env:"TTT_STORAGE_DRIVER" env-default:"file"`
	Dir     string `yaml:"dir" env:"TTT_STORAGE_DIR" env-default:"./data"`
	TableID string `yaml:"table-id" env:"TTT_TABLE_ID" env-default:"agent-x"`
}

type Redis struct {
	Host     string `yaml:"host" env:"TTT_REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"TTT_REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"TTT_REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"TTT_REDIS_DB" env-default:"0"`
}

type Training struct {
	Episodes    int     `yaml:"episodes" env:"TTT_EPISODES" env-default:"50000"`
	Epsilon     float64 `yaml:"epsilon" env-default:"0.3"`
	MinEpsilon  float64 `yaml:"min-epsilon" env-default:"0.05"`
	DecayRate   float64 `yaml:"decay-rate" env-default:"0.95"`
	DecayEvery  int     `yaml:"decay-every" env-default:"10000"`
	Alpha       float64 `yaml:"alpha" env-default:"0.5"`
	Gamma       float64 `yaml:"gamma" env-default:"0.9"`
	Seed        int64   `yaml:"seed" env:"TTT_SEED" env-default:"1"`
	Checkpoints int     `yaml:"checkpoints" env-default:"20"`
	// Resume continues from the stored table instead of an empty one.
	Resume bool `yaml:"resume" env:"TTT_RESUME" env-default:"false"`
}

type Evaluation struct {
	Games int `yaml:"games" env:"TTT_EVAL_GAMES" env-default:"1000"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Mode {
	case ModeTrain, ModeEvaluate, ModeServe:
	default:
		return fmt.Errorf("unknown mode %q", that.Mode)
	}

	switch that.Storage.Driver {
	case DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	if err := that.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}

	if that.Evaluation.Games < 0 {
		return fmt.Errorf("evaluation games must not be negative, got %d", that.Evaluation.Games)
	}

	return nil
}

// Validate checks the hyperparameter ranges.
func (that *Training) Validate() error {
	switch {
	case that.Episodes <= 0:
		return fmt.Errorf("episodes must be positive, got %d", that.Episodes)
	case !inUnitRange(that.Epsilon):
		return fmt.Errorf("epsilon must be in [0, 1], got %v", that.Epsilon)
	case !inUnitRange(that.MinEpsilon):
		return fmt.Errorf("min-epsilon must be in [0, 1], got %v", that.MinEpsilon)
	case that.MinEpsilon > that.Epsilon:
		return fmt.Errorf("min-epsilon %v exceeds epsilon %v", that.MinEpsilon, that.Epsilon)
	case that.Alpha <= 0 || that.Alpha > 1:
		return fmt.Errorf("alpha must be in (0, 1], got %v", that.Alpha)
	case !inUnitRange(that.Gamma):
		return fmt.Errorf("gamma must be in [0, 1], got %v", that.Gamma)
	case that.DecayRate <= 0 || that.DecayRate > 1:
		return fmt.Errorf("decay-rate must be in (0, 1], got %v", that.DecayRate)
	}

	return nil
}

func inUnitRange(value float64) bool {
	return value >= 0 && value <= 1
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
