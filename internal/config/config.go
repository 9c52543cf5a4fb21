package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	LogJSON  bool          `yaml:"log_json"`
	Backend  Backend       `yaml:"backend"`
	Store    Store         `yaml:"store"`
	Pg       Pg            `yaml:"pg"`
	Session  SessionConfig `yaml:"session"`
	Upload   Upload        `yaml:"upload"`
}

type Backend struct {
	URL         string `yaml:"url"`          // hosted backend base, e.g. https://xyz.backend.floatdr.com
	RealtimeURL string `yaml:"realtime_url"` // websocket endpoint for the change feed; empty disables it
}

// Store picks the data-store adapter: "rest" goes through the hosted row API,
// "pg" connects straight to the backing database (self-hosted deployments).
type Store struct {
	Driver string `yaml:"driver"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

type Upload struct {
	MaxBytes       int64    `yaml:"max_bytes"`
	AllowedMimes   []string `yaml:"allowed_mimes"`
	PostBucket     string   `yaml:"post_bucket"`
	AvatarBucket   string   `yaml:"avatar_bucket"`
	MaxImageWidth  int      `yaml:"max_image_width"`
	MaxImageHeight int      `yaml:"max_image_height"`
}

type Private struct {
	APIKey string `yaml:"api_key"` // anon key sent with every backend call
}

func (c *Config) APIKey() string {
	return c.private.APIKey
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) validate() error {
	if c.Public.Backend.URL == "" && c.Public.Store.Driver != "pg" {
		return fmt.Errorf("config: backend.url is required for the rest store")
	}
	if c.Public.Store.Driver == "pg" && c.Public.Pg.Host == "" {
		return fmt.Errorf("config: pg.host is required for the pg store")
	}
	if c.private.APIKey == "" {
		return fmt.Errorf("config: api_key is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Public.Listen == "" {
		c.Public.Listen = ":8080"
	}
	if c.Public.Store.Driver == "" {
		c.Public.Store.Driver = "rest"
	}
	if c.Public.Session.CookieName == "" {
		c.Public.Session.CookieName = "floatdr_session"
	}
	if c.Public.Session.TTL == 0 {
		c.Public.Session.TTL = 24 * time.Hour
	}
	if c.Public.Upload.MaxBytes == 0 {
		c.Public.Upload.MaxBytes = 8 << 20
	}
	if len(c.Public.Upload.AllowedMimes) == 0 {
		c.Public.Upload.AllowedMimes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if c.Public.Upload.PostBucket == "" {
		c.Public.Upload.PostBucket = "post-images"
	}
	if c.Public.Upload.AvatarBucket == "" {
		c.Public.Upload.AvatarBucket = "avatars"
	}
}
