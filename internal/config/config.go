package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/status-monitor/internal/models"
)

// Config captures everything the monitor and the status-update function need.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Probe      ProbeConfig      `yaml:"probe"`
	StatusPage StatusPageConfig `yaml:"statusPage"`
	Invoker    InvokerConfig    `yaml:"invoker"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the gRPC health listener and the HTTP trigger/metrics listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	CheckTimeout    time.Duration `yaml:"checkTimeout"`
}

// ProbeConfig is the default health-check request. Headers, Body and Query are
// JSON-encoded, matching the API_* environment variables.
type ProbeConfig struct {
	URL          string        `yaml:"url"`
	Method       string        `yaml:"method"`
	Headers      string        `yaml:"headers"`
	Body         string        `yaml:"body"`
	Query        string        `yaml:"query"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

// StatusPageConfig configures access to the Statuspage REST API.
type StatusPageConfig struct {
	BaseURL      string              `yaml:"baseURL"`
	APIKey       string              `yaml:"apiKey"`
	PageID       string              `yaml:"pageID"`
	ComponentIDs models.ComponentIDs `yaml:"componentIDs"`
	Timeout      time.Duration       `yaml:"timeout"`
}

// InvokerConfig identifies the remote status-update function.
type InvokerConfig struct {
	Stage        string `yaml:"stage"`
	FunctionName string `yaml:"functionName"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`

	// Static credentials are optional; the default AWS chain is used otherwise.
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("STATUS_MONITOR_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if _, err := cfg.ProbeRequest(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			HTTPAddress:     ":2112",
			GracefulTimeout: 10 * time.Second,
			CheckTimeout:    30 * time.Second,
		},
		Probe: ProbeConfig{
			Method:       "GET",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		StatusPage: StatusPageConfig{
			BaseURL: "https://api.statuspage.io/v1",
			Timeout: 10 * time.Second,
		},
		Invoker: InvokerConfig{
			Stage:  "dev",
			Region: "us-west-2",
		},
		Logging: LoggingConfig{
			Level:      "info",
			JSON:       false,
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// ResolvedFunctionName returns the configured remote function, or the stage-derived default.
func (c InvokerConfig) ResolvedFunctionName() string {
	if c.FunctionName != "" {
		return c.FunctionName
	}
	return fmt.Sprintf("status-page-update-%s-http", c.Stage)
}

// ProbeRequest decodes the JSON-encoded probe fields into the default request. Empty
// values decode to nil.
func (c *Config) ProbeRequest() (models.ProbeRequest, error) {
	headers, err := decodeStringMap("headers", c.Probe.Headers)
	if err != nil {
		return models.ProbeRequest{}, err
	}
	params, err := decodeStringMap("query", c.Probe.Query)
	if err != nil {
		return models.ProbeRequest{}, err
	}

	var data json.RawMessage
	if body := strings.TrimSpace(c.Probe.Body); body != "" {
		if !json.Valid([]byte(body)) {
			return models.ProbeRequest{}, fmt.Errorf("parse probe body: invalid JSON")
		}
		data = json.RawMessage(body)
	}

	return models.ProbeRequest{
		URL:     c.Probe.URL,
		Method:  c.Probe.Method,
		Headers: headers,
		Params:  params,
		Data:    data,
	}, nil
}

// Validate checks the settings each entry point cannot run without.
func (c *Config) Validate(needProbe, needStatusPage bool) error {
	var problems []string
	if needProbe && c.Probe.URL == "" {
		problems = append(problems, "probe.url (API_URL) is required")
	}
	if needStatusPage {
		if c.StatusPage.APIKey == "" {
			problems = append(problems, "statusPage.apiKey (STATUS_PAGE_API_KEY) is required")
		}
		if c.StatusPage.PageID == "" {
			problems = append(problems, "statusPage.pageID (STATUS_PAGE_PAGE_ID) is required")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// decodeStringMap parses a JSON object; scalar values are stringified the way a query
// string or header would carry them.
func decodeStringMap(field, value string) (map[string]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("parse probe %s: %w", field, err)
	}
	if raw == nil {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch typed := v.(type) {
		case string:
			out[k] = typed
		case nil:
			out[k] = ""
		case float64, bool:
			out[k] = fmt.Sprint(typed)
		default:
			return nil, fmt.Errorf("parse probe %s: value for %q must be a scalar", field, k)
		}
	}
	return out, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STATUS_MONITOR_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("STATUS_MONITOR_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("STATUS_MONITOR_CHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.CheckTimeout = d
		}
	}

	if v, ok := os.LookupEnv("API_URL"); ok {
		cfg.Probe.URL = v
	}
	if v := os.Getenv("API_METHOD"); v != "" {
		cfg.Probe.Method = v
	}
	if v, ok := os.LookupEnv("API_HEADERS"); ok {
		cfg.Probe.Headers = v
	}
	if v, ok := os.LookupEnv("API_POST_BODY"); ok {
		cfg.Probe.Body = v
	}
	if v, ok := os.LookupEnv("API_QUERY_STRING"); ok {
		cfg.Probe.Query = v
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Probe.Timeout = d
		}
	}
	if v := os.Getenv("API_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Probe.MaxBodyBytes = n
		}
	}

	if v := os.Getenv("STATUS_PAGE_BASE_URL"); v != "" {
		cfg.StatusPage.BaseURL = v
	}
	if v := os.Getenv("STATUS_PAGE_API_KEY"); v != "" {
		cfg.StatusPage.APIKey = v
	}
	if v := os.Getenv("STATUS_PAGE_PAGE_ID"); v != "" {
		cfg.StatusPage.PageID = v
	}
	if v := os.Getenv("COMPONENT_IDS"); v != "" {
		cfg.StatusPage.ComponentIDs = models.ParseComponentIDs(v)
	}
	if v := os.Getenv("STATUS_PAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StatusPage.Timeout = d
		}
	}

	if v := os.Getenv("STAGE"); v != "" {
		cfg.Invoker.Stage = v
	}
	if v := os.Getenv("STATUS_UPDATE_FUNCTION"); v != "" {
		cfg.Invoker.FunctionName = v
	}
	if v := os.Getenv("STATUS_UPDATE_REGION"); v != "" {
		cfg.Invoker.Region = v
	}
	if v := os.Getenv("AWS_ENDPOINT_URL"); v != "" {
		cfg.Invoker.Endpoint = v
	}

	if v := os.Getenv("STATUS_MONITOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STATUS_MONITOR_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("STATUS_MONITOR_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("STATUS_MONITOR_LOG_COMPRESS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Logging.Compress = true
	}
}
