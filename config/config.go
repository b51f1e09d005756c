package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	EmailLog      = "log"
	EmailPostmark = "postmark"
	EmailSendgrid = "sendgrid"

	devJWTSecret = "ecofinds-dev-secret"
)

type EmailConfig struct {
	Provider      string `yaml:"provider"`
	PostmarkToken string `yaml:"postmark_token"`
	SendgridKey   string `yaml:"sendgrid_key"`
	Sender        string `yaml:"sender"`
}

type CheckoutConfig struct {
	// Hardened claims products with a compare-and-swap during checkout and
	// only reverts sold products on cancel.
	Hardened bool `yaml:"hardened"`
}

type Config struct {
	// Server Settings
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Storage Settings
	StoreDriver string `yaml:"store"`
	MongoURI    string `yaml:"mongo_uri"`
	Database    string `yaml:"database"`

	// JWT Settings
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTExpiration time.Duration `yaml:"jwt_expires_in"`

	// CORS Settings
	CORSAllowOrigins []string `yaml:"cors_allowed_origins"`

	Email    EmailConfig    `yaml:"email"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:             "5000",
		RequestTimeout:   10 * time.Second,
		StoreDriver:      StoreMongo,
		MongoURI:         "mongodb://localhost:27017",
		Database:         "ecofinds",
		JWTExpiration:    30 * 24 * time.Hour,
		CORSAllowOrigins: []string{"*"},
		Email:            EmailConfig{Provider: EmailLog},
	}
}

// Option adjusts a loaded configuration before it is validated. Command line
// flags use it to take precedence over the environment.
type Option func(*Config)

// WithStoreDriver overrides the store driver when driver is not empty.
func WithStoreDriver(driver string) Option {
	return func(c *Config) {
		if driver != "" {
			c.StoreDriver = driver
		}
	}
}

// WithPort overrides the listen port when port is not empty.
func WithPort(port string) Option {
	return func(c *Config) {
		if port != "" {
			c.Port = port
		}
	}
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and opts, in increasing order of precedence. A .env file in the
// working directory is loaded into the environment first when present.
func Load(path string, opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("ECOFINDS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.JWTSecret == "" && cfg.StoreDriver == StoreMemory {
		log.Println("JWT_SECRET is not set; using the development secret for the memory store.")
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("PORT", &cfg.Port)
	setString("STORE_DRIVER", &cfg.StoreDriver)
	setString("MONGO_URI", &cfg.MongoURI)
	setString("MONGO_DATABASE", &cfg.Database)
	setString("JWT_SECRET", &cfg.JWTSecret)
	setString("EMAIL_PROVIDER", &cfg.Email.Provider)
	setString("POSTMARK_API_TOKEN", &cfg.Email.PostmarkToken)
	setString("SENDGRID_API_KEY", &cfg.Email.SendgridKey)
	setString("EMAIL_SENDER", &cfg.Email.Sender)

	if err := setDuration("JWT_EXPIRES_IN", &cfg.JWTExpiration); err != nil {
		return err
	}
	if err := setDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowOrigins = origins
	}
	if v := strings.TrimSpace(os.Getenv("CHECKOUT_HARDENED")); v != "" {
		hardened, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CHECKOUT_HARDENED: %w", err)
		}
		cfg.Checkout.Hardened = hardened
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
		if c.Database == "" {
			return errors.New("MONGO_DATABASE is required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiration <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	switch c.Email.Provider {
	case EmailLog:
	case EmailPostmark:
		if c.Email.PostmarkToken == "" || c.Email.Sender == "" {
			return errors.New("POSTMARK_API_TOKEN and EMAIL_SENDER are required for postmark")
		}
	case EmailSendgrid:
		if c.Email.SendgridKey == "" || c.Email.Sender == "" {
			return errors.New("SENDGRID_API_KEY and EMAIL_SENDER are required for sendgrid")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
