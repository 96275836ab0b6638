package config

import (
	"bytes"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 3100
	defaultEnv         = "development"
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBPassword  = "password"
	defaultDBName      = "siteforge"
	defaultDBCharset   = "utf8mb4"
	defaultDBLoc       = "Local"
	defaultRedisHost   = "localhost"
	defaultRedisPort   = 6379
	defaultRedisDB     = 0
	defaultProvisionMS = 15000
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port             int                   `yaml:"port"`
	Env              string                `yaml:"env"` // "development" | "production"
	Database         DatabaseRuntimeConfig `yaml:"database"`
	Redis            RedisRuntimeConfig    `yaml:"redis"`
	DSN              string                `yaml:"-"`
	RedisURL         string                `yaml:"-"`
	JWTSecret        string                `yaml:"jwt_secret"`
	AllowedOrigins   []string              `yaml:"allowed_origins"`
	ProvisionTimeout int                   `yaml:"provision_timeout_ms"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

// Load reads and validates the YAML config file.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	cfg.normalize()
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		ProvisionTimeout: defaultProvisionMS,
	}
}

func (c *AppConfig) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.ProvisionTimeout <= 0 {
		c.ProvisionTimeout = defaultProvisionMS
	}

	origins := c.AllowedOrigins[:0]
	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins

	c.DSN = c.Database.DSNValue()
	c.RedisURL = c.Redis.URLValue()
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// DSNValue builds a MySQL DSN, preferring an explicit dsn over parts.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	params := neturl.Values{}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			params.Set(k, v)
		}
	}
	if params.Get("charset") == "" {
		params.Set("charset", charset)
	}
	if params.Get("parseTime") == "" {
		params.Set("parseTime", strconv.FormatBool(c.ParseTime))
	}
	if params.Get("loc") == "" {
		params.Set("loc", loc)
	}

	auth := user
	if password := strings.TrimSpace(c.Password); password != "" {
		auth += ":" + password
	}

	dsn := fmt.Sprintf("%s@tcp(%s)/%s", auth, net.JoinHostPort(host, strconv.Itoa(port)), name)
	if query := params.Encode(); query != "" {
		dsn += "?" + query
	}
	return dsn
}

// URLValue builds a redis:// URL, preferring an explicit url over parts.
func (c RedisRuntimeConfig) URLValue() string {
	if v := strings.TrimSpace(c.URL); v != "" {
		if strings.HasPrefix(v, "redis://") || strings.HasPrefix(v, "rediss://") {
			return v
		}
		return "redis://" + v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	switch {
	case username != "" && password != "":
		u.User = neturl.UserPassword(username, password)
	case username != "":
		u.User = neturl.User(username)
	case password != "":
		u.User = neturl.UserPassword("", password)
	}

	return u.String()
}
