package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWebPort      = 5000
	DefaultDatabaseName = "test"
	envPrefix           = "PRODUCTAPI_"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// DBConfig document database configuration
type DBConfig struct {
	URI            string        `yaml:"uri" validate:"required"`
	Name           string        `yaml:"name"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gte=0"`
	SeedDemo       bool          `yaml:"seed_demo"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode" validate:"omitempty,oneof=development production"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename" validate:"required_if=FileEnable true"`
}

// EventsConfig product change events; publishing is disabled when AmqpURL is empty
type EventsConfig struct {
	AmqpURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange" validate:"required_with=AmqpURL"`
}

// JobsConfig background job schedules, in cron syntax
type JobsConfig struct {
	StatsInterval string `yaml:"stats_interval"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Events   EventsConfig `yaml:"events"`
	Jobs     JobsConfig   `yaml:"jobs"`
}

var validate = validator.New()

// DefaultAppConfig returns the configuration used when no file or environment overrides are present
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "ProductAPI",
			Location: "UTC",
			Workdir:  "/var/productapi",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: DefaultWebPort,
		},
		Database: DBConfig{
			ConnectTimeout: 10 * time.Second,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/productapi/productapi.log",
		},
		Events: EventsConfig{
			Exchange: "products",
		},
		Jobs: JobsConfig{
			StatsInterval: "@every 30s",
		},
	}
}

// LoadConfig builds the application configuration from defaults, the optional
// yaml file cfile, an optional .env file and the process environment, in that order.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}

	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	setEnvString("PORT", func(v string) { c.Web.Port = cast.ToInt(v) })
	setEnvString("MONGO_URI", func(v string) { c.Database.URI = v })
	setEnvString("MONGO_DB", func(v string) { c.Database.Name = v })

	setEnvString(envPrefix+"WEB_HOST", func(v string) { c.Web.Host = v })
	setEnvString(envPrefix+"LOCATION", func(v string) { c.System.Location = v })
	setEnvString(envPrefix+"WORKDIR", func(v string) { c.System.Workdir = v })
	setEnvString(envPrefix+"DEBUG", func(v string) { c.System.Debug = cast.ToBool(v) })
	setEnvString(envPrefix+"DB_CONNECT_TIMEOUT", func(v string) { c.Database.ConnectTimeout = cast.ToDuration(v) })
	setEnvString(envPrefix+"DB_SEED_DEMO", func(v string) { c.Database.SeedDemo = cast.ToBool(v) })
	setEnvString(envPrefix+"LOGGER_MODE", func(v string) { c.Logger.Mode = v })
	setEnvString(envPrefix+"LOGGER_FILE_ENABLE", func(v string) { c.Logger.FileEnable = cast.ToBool(v) })
	setEnvString(envPrefix+"LOGGER_FILENAME", func(v string) { c.Logger.Filename = v })
	setEnvString(envPrefix+"AMQP_URL", func(v string) { c.Events.AmqpURL = v })
	setEnvString(envPrefix+"AMQP_EXCHANGE", func(v string) { c.Events.Exchange = v })
	setEnvString(envPrefix+"JOBS_STATS_INTERVAL", func(v string) { c.Jobs.StatsInterval = v })
}

func setEnvString(name string, apply func(v string)) {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		apply(strings.TrimSpace(v))
	}
}

// Validate checks the configuration against its struct rules
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return errors.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Addr returns the listen address of the web server
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// DatabaseName resolves the database to use: the explicit name, then the
// path of the connection string, then DefaultDatabaseName.
func (d DBConfig) DatabaseName() string {
	if d.Name != "" {
		return d.Name
	}
	if cs, err := connstring.ParseAndValidate(d.URI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabaseName
}
