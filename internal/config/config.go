// Package config loads YAML configuration for the gateway and the backend
// services. Environment variables override the file values so deployments
// can keep a single config file per environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can use the "30s" / "5m"
// notation instead of raw nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// AuthConfig carries the token verification settings shared by the gateway
// and the backend services.
type AuthConfig struct {
	JWKSURL string `yaml:"jwks_url"`
	Realm   string `yaml:"realm"`
}

// RouteConfig describes a single gateway route. Roles is the set of roles
// accepted for the route; an empty set with Public=false means any
// authenticated caller.
type RouteConfig struct {
	Name   string   `yaml:"name"`
	Prefix string   `yaml:"prefix"`
	Target string   `yaml:"target"`
	Roles  []string `yaml:"roles"`
	Public bool     `yaml:"public"`
}

// GatewayConfig is the full configuration of the gateway binary.
type GatewayConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ProxyTimeout   Duration      `yaml:"proxy_timeout"`
	Auth           AuthConfig    `yaml:"auth"`
	Routes         []RouteConfig `yaml:"routes"`
}

// ServiceConfig is the configuration shared by the order and product
// service binaries. ProductServiceURL is only used by the order service.
type ServiceConfig struct {
	ListenAddr        string        `yaml:"listen_addr"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
	DatabaseURL       string        `yaml:"database_url"`
	Auth              AuthConfig    `yaml:"auth"`
	ProductServiceURL string        `yaml:"product_service_url"`
	ProductTimeout    Duration      `yaml:"product_timeout"`
}

// DefaultGatewayConfig returns the gateway configuration used when no file
// is supplied. Targets match the docker-compose service names.
func DefaultGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		ListenAddr:     ":8080",
		LogLevel:       "info",
		LogFormat:      "json",
		AllowedOrigins: []string{"*"},
		ProxyTimeout:   Duration(30 * time.Second),
		Auth: AuthConfig{
			JWKSURL: "http://localhost:8180/realms/ecommerce/protocol/openid-connect/certs",
			Realm:   "ecommerce",
		},
		Routes: []RouteConfig{
			{Name: "orders", Prefix: "/api/orders", Target: "http://localhost:8082", Roles: nil},
			{Name: "products", Prefix: "/api/products", Target: "http://localhost:8081", Roles: nil},
			// Identity provider passthrough: login flows and its assets
			// must work without a token.
			{Name: "idp-realms", Prefix: "/realms", Target: "http://localhost:8180", Public: true},
			{Name: "idp-admin", Prefix: "/admin", Target: "http://localhost:8180", Public: true},
			{Name: "idp-resources", Prefix: "/resources", Target: "http://localhost:8180", Public: true},
		},
	}
}

// DefaultServiceConfig returns the baseline backend service configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		ListenAddr: ":8081",
		LogLevel:   "info",
		LogFormat:  "json",
		Auth: AuthConfig{
			JWKSURL: "http://localhost:8180/realms/ecommerce/protocol/openid-connect/certs",
			Realm:   "ecommerce",
		},
		ProductTimeout: Duration(5 * time.Second),
	}
}

// LoadGatewayConfig reads the gateway configuration from path, falling back
// to defaults when path is empty, then applies environment overrides.
func LoadGatewayConfig(path string) (*GatewayConfig, error) {
	cfg := DefaultGatewayConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read gateway config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse gateway config: %w", err)
		}
	}
	applyGatewayEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServiceConfig reads a backend service configuration from path, falling
// back to defaults when path is empty, then applies environment overrides.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	cfg := DefaultServiceConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read service config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse service config: %w", err)
		}
	}
	applyServiceEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the gateway configuration for values that would make the
// process unusable at runtime.
func (c *GatewayConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("gateway config: listen_addr is required")
	}
	if c.Auth.JWKSURL == "" {
		return fmt.Errorf("gateway config: auth.jwks_url is required")
	}
	if c.Auth.Realm == "" {
		return fmt.Errorf("gateway config: auth.realm is required")
	}
	if len(c.Routes) == 0 {
		return fmt.Errorf("gateway config: at least one route is required")
	}
	for i, route := range c.Routes {
		if route.Prefix == "" {
			return fmt.Errorf("gateway config: route %d: prefix is required", i)
		}
		if route.Target == "" {
			return fmt.Errorf("gateway config: route %q: target is required", route.Prefix)
		}
	}
	if c.ProxyTimeout <= 0 {
		c.ProxyTimeout = Duration(30 * time.Second)
	}
	return nil
}

// Validate checks the service configuration.
func (c *ServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("service config: listen_addr is required")
	}
	if c.Auth.JWKSURL == "" {
		return fmt.Errorf("service config: auth.jwks_url is required")
	}
	if c.Auth.Realm == "" {
		return fmt.Errorf("service config: auth.realm is required")
	}
	if c.ProductTimeout <= 0 {
		c.ProductTimeout = Duration(5 * time.Second)
	}
	return nil
}

func applyGatewayEnv(cfg *GatewayConfig) {
	if v := os.Getenv("GATEWAY_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("JWKS_URL"); v != "" {
		cfg.Auth.JWKSURL = v
	}
	if v := os.Getenv("AUTH_REALM"); v != "" {
		cfg.Auth.Realm = v
	}
	if v := os.Getenv("PROXY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ProxyTimeout = Duration(d)
		}
	}
}

func applyServiceEnv(cfg *ServiceConfig) {
	if v := os.Getenv("SERVICE_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWKS_URL"); v != "" {
		cfg.Auth.JWKSURL = v
	}
	if v := os.Getenv("AUTH_REALM"); v != "" {
		cfg.Auth.Realm = v
	}
	if v := os.Getenv("PRODUCT_SERVICE_URL"); v != "" {
		cfg.ProductServiceURL = v
	}
	if v := os.Getenv("PRODUCT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ProductTimeout = Duration(d)
		}
	}
}
