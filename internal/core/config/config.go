package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// BoardsFile is the path to the per-board configuration file.
	BoardsFile string `mapstructure:"BOARDS_FILE" default:"boards.yaml"`

	// Board holds the tracking-board API configuration.
	Board BoardAPIConfig `mapstructure:",squash"`

	// Slack holds the internal alert channel configuration.
	Slack SlackConfig `mapstructure:",squash"`

	// SMTP holds the customer email configuration. Optional: when Host is
	// empty the customer email path is disabled entirely.
	SMTP SMTPConfig `mapstructure:",squash"`

	// Contacts holds the CRM contact-lookup configuration. Optional.
	Contacts ContactsConfig `mapstructure:",squash"`

	// Gemini holds the model-assisted classifier configuration. Optional:
	// without an API key classification runs on the rule engine only.
	Gemini GeminiConfig `mapstructure:",squash"`

	// RedisURL selects the Redis-backed alert suppression store when set.
	// Empty means the in-process store is used.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Thresholds holds the staleness and suppression tuning knobs.
	Thresholds ThresholdConfig `mapstructure:",squash"`
}

// BoardAPIConfig holds the credentials for the project-tracking board API.
type BoardAPIConfig struct {
	// URL is the GraphQL endpoint of the board API.
	URL string `mapstructure:"BOARD_API_URL" required:"true"`
	// Token is the API token used for authentication.
	Token string `mapstructure:"BOARD_API_TOKEN" required:"true"`
}

// SlackConfig holds the Slack credentials for internal alerts.
type SlackConfig struct {
	// BotToken is the bot user OAuth token.
	BotToken string `mapstructure:"SLACK_BOT_TOKEN" required:"true"`
	// AlertChannel is the channel ID that receives shipment alerts.
	AlertChannel string `mapstructure:"SLACK_ALERT_CHANNEL" required:"true"`
}

// SMTPConfig holds the SMTP credentials for customer notifications.
type SMTPConfig struct {
	// Host is the SMTP server hostname. Empty disables customer email.
	Host string `mapstructure:"SMTP_HOST"`
	// Port is the SMTP server port.
	Port int `mapstructure:"SMTP_PORT" default:"587"`
	// Username is the SMTP auth username.
	Username string `mapstructure:"SMTP_USERNAME"`
	// Password is the SMTP auth password.
	Password string `mapstructure:"SMTP_PASSWORD"`
	// From is the sender address for customer notifications.
	From string `mapstructure:"SMTP_FROM"`
	// ReplyTo is the optional reply-to address.
	ReplyTo string `mapstructure:"SMTP_REPLY_TO"`
}

// Enabled returns true when enough SMTP configuration is present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// ContactsConfig holds the CRM API configuration for customer contact lookup.
type ContactsConfig struct {
	// URL is the base URL of the CRM search API. Empty disables lookup.
	URL string `mapstructure:"CONTACTS_API_URL"`
	// Token is the CRM API token.
	Token string `mapstructure:"CONTACTS_API_TOKEN"`
}

// GeminiConfig holds the text-generation service configuration.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API. Empty disables the
	// model-assisted classifier.
	APIKey string `mapstructure:"GEMINI_API_KEY"`
	// Model is the model identifier to use.
	Model string `mapstructure:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

// ThresholdConfig holds the temporal tuning for staleness and suppression.
type ThresholdConfig struct {
	// StaleAfterHours is how long identical update text may persist before
	// a stale-tracking alert fires.
	StaleAfterHours int `mapstructure:"STALE_AFTER_HOURS" default:"36"`
	// StaleRepeatPolicy is either "repeat" (re-emit on every event past the
	// threshold, deduplicated downstream) or "once" (one alert per
	// continuous run of identical text).
	StaleRepeatPolicy string `mapstructure:"STALE_REPEAT_POLICY" default:"repeat"`
	// SuppressWindowMinutes is the duplicate-alert suppression window.
	SuppressWindowMinutes int `mapstructure:"SUPPRESS_WINDOW_MINUTES" default:"5"`
	// SweepIdleHours is how long an entity may stay silent before its
	// staleness state is evicted.
	SweepIdleHours int `mapstructure:"SWEEP_IDLE_HOURS" default:"168"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validatePolicies(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validatePolicies checks enumerated configuration values.
func validatePolicies(config *AppConfig) error {
	switch config.Thresholds.StaleRepeatPolicy {
	case "repeat", "once":
		return nil
	default:
		return fmt.Errorf("invalid STALE_REPEAT_POLICY %q: must be \"repeat\" or \"once\"", config.Thresholds.StaleRepeatPolicy)
	}
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
