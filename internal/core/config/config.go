package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyMB         int
	RateLimitRPS      float64
	RateLimitBurst    int
	MaxConcurrent     int64
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

type Log struct {
	Level string
	JSON  bool
	File  string // 非空则额外写文件并切割
}

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	ListTTLSec  int    `mapstructure:"list_ttl_sec"`
	OrphanLimit int64  `mapstructure:"orphan_limit"`
}

type DB struct {
	Driver             string
	DSN                string
	Host               string
	Name               string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	QueryTimeoutSec    int
	AutoMigrate        bool
	LogLevel           string
}

type Cloudinary struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type S3 struct {
	Region     string
	Bucket     string
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Endpoint   string // S3 兼容服务（MinIO 等）
	PublicBase string `mapstructure:"public_base"` // 为空则用 https://<bucket>.s3.<region>.amazonaws.com
}

type Media struct {
	Provider   string // cloudinary | s3
	Folder     string
	TimeoutSec int `mapstructure:"timeout_sec"`
	Cloudinary Cloudinary
	S3         S3
}

type Trace struct {
	Endpoint string // OTLP gRPC 地址；为空不启用
}

type Config struct {
	App   App
	Log   Log
	DB    DB
	Redis Redis `mapstructure:"redis"`
	Media Media
	Trace Trace
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "usuarios-api")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 60)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 45)
	v.SetDefault("app.http.maxbodymb", 16)
	v.SetDefault("app.http.ratelimitrps", 200)
	v.SetDefault("app.http.ratelimitburst", 400)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 3001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.querytimeoutsec", 5)
	v.SetDefault("db.automigrate", false)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.list_ttl_sec", 30)
	v.SetDefault("redis.orphan_limit", 1000)

	v.SetDefault("media.provider", "cloudinary")
	v.SetDefault("media.folder", "usuarios")
	v.SetDefault("media.timeout_sec", 30)
	// 空默认值让 AutomaticEnv 在 Unmarshal 时认得这些 key
	for _, k := range []string{
		"media.cloudinary.cloud_name", "media.cloudinary.api_key", "media.cloudinary.api_secret",
		"media.s3.region", "media.s3.bucket", "media.s3.access_key", "media.s3.secret_key",
		"media.s3.endpoint", "media.s3.public_base",
		"trace.endpoint",
	} {
		v.SetDefault(k, "")
	}
}

// legacyEnv 沿用旧部署的环境变量名
var legacyEnv = map[string][]string{
	"app.http.port":               {"APP_APP_HTTP_PORT", "PORT"},
	"db.host":                     {"APP_DB_HOST", "DB_HOST"},
	"db.username":                 {"APP_DB_USERNAME", "DB_USER"},
	"db.password":                 {"APP_DB_PASSWORD", "DB_PASSWORD"},
	"db.name":                     {"APP_DB_NAME", "DB_NAME"},
	"media.cloudinary.cloud_name": {"APP_MEDIA_CLOUDINARY_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME"},
	"media.cloudinary.api_key":    {"APP_MEDIA_CLOUDINARY_API_KEY", "CLOUDINARY_API_KEY"},
	"media.cloudinary.api_secret": {"APP_MEDIA_CLOUDINARY_API_SECRET", "CLOUDINARY_API_SECRET"},
	"redis.addr":                  {"APP_REDIS_ADDR", "REDIS_ADDR"},
}

// Load 读取配置：默认值 < YAML 文件（可选）< 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
