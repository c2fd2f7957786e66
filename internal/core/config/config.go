package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 前端跨域来源；为空时放开全部
	CORSOrigins []string `mapstructure:"cors_origins"`
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

// JWT 用于签名 session cookie（OAuth state 存放处）
type JWT struct {
	Secret string
	Issuer string
}

type Session struct {
	CookieName string `mapstructure:"cookie_name"`
	TTLMin     int    `mapstructure:"ttl_min"`
	Secure     bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// 令牌 → 身份 缓存时长
	IdentityTTLSec int `mapstructure:"identity_ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Reddit struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	UserAgent    string `mapstructure:"user_agent"`
	// 登录成功后跳回的前端地址，结尾带 /
	FrontendURL string `mapstructure:"frontend_url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
}

type Admin struct {
	// 启动时提升为 MODERATOR 的 reddit 用户名
	BootstrapModerators []string `mapstructure:"bootstrap_moderators"`
}

type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64 `mapstructure:"per_ip_rps"`
	PerIPBurst    int     `mapstructure:"per_ip_burst"`
	MaxConcurrent int64   `mapstructure:"max_concurrent"`
	MaxBodyBytes  int64   `mapstructure:"max_body_bytes"`
	TimeoutSec    int     `mapstructure:"timeout_sec"`
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Session Session
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Reddit  Reddit
	Admin   Admin
	Limits  Limits
}

// Load 启动用，出错直接退出
func Load(path string) *Config {
	c, err := LoadFile(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// LoadFile 读 yaml，APP_ 前缀环境变量覆盖同名键（APP_DB_DSN → db.dsn）
func LoadFile(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./configs/config.local.yaml"
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Reddit.ClientID != "" {
		if c.JWT.Secret == "" {
			return errors.New("jwt.secret is required when reddit login is enabled")
		}
		if !strings.HasSuffix(c.Reddit.FrontendURL, "/") {
			return fmt.Errorf("reddit.frontend_url must end with /: %q", c.Reddit.FrontendURL)
		}
	}
	if c.Session.TTLMin <= 0 {
		return errors.New("session.ttl_min must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "wwreviews")
	v.SetDefault("app.http.port", 8001)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.port", 8002)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "wwreviews")
	v.SetDefault("session.cookie_name", "wwr_session")
	v.SetDefault("session.ttl_min", 15)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:wwreviews.db")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("redis.identity_ttl_sec", 300)
	v.SetDefault("reddit.user_agent", "wwreviews/1.0")
	v.SetDefault("reddit.timeout_sec", 10)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.per_ip_rps", 20)
	v.SetDefault("limits.per_ip_burst", 40)
	v.SetDefault("limits.max_concurrent", 300)
	v.SetDefault("limits.max_body_bytes", 1<<20)
	v.SetDefault("limits.timeout_sec", 10)
}
