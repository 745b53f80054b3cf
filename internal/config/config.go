package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig
	Server  ServerConfig
	Redis   RedisConfig
	Session SessionConfig
	Quiz    QuizConfig
	Report  ReportConfig
	LLM     LLMConfig
	JWT     JWTConfig
	Logger  LoggerConfig
}

type DBConfig struct {
	// Driver is "sqlite" or "oracle".
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	// Store is "redis" or "memory".
	Store string
	TTL   time.Duration
}

type QuizConfig struct {
	MinQuestions       int
	MaxQuestions       int
	MinutesPerQuestion float64
	CategoriesPerPage  int
	HistoryLimit       int
}

type ReportConfig struct {
	Dir      string
	Template string
	FontPath string
}

type LLMConfig struct {
	// Provider is one of ollama, openai, openai-direct, gemini or none.
	Provider string
	Server   string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

type JWTConfig struct {
	SecretKey string
	AccessTTL time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "quizbot.db")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("session.store", "redis")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("quiz.min_questions", 10)
	v.SetDefault("quiz.max_questions", 100)
	v.SetDefault("quiz.minutes_per_question", 1.2)
	v.SetDefault("quiz.categories_per_page", 10)
	v.SetDefault("quiz.history_limit", 20)
	v.SetDefault("report.dir", "user_tests")
	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.timeout", "20s")
	v.SetDefault("jwt.access_ttl", "720h")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml. An explicit path (from --config) wins over the search paths.
func LoadConfig(path ...string) (*Config, error) {
	v := viper.GetViper()
	setDefaults(v)

	if len(path) > 0 && path[0] != "" {
		v.SetConfigFile(path[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if os.Getenv("ENV") == "test" {
			v.AddConfigPath("../../config")
			v.AddConfigPath("../../")
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
		}
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := fromViper(v)

	// Override with environment variables if set
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		config.DB.Driver = driver
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		config.DB.Path = path
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}

	return config, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DB: DBConfig{
			Driver:   v.GetString("db.driver"),
			Path:     v.GetString("db.path"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: v.GetDuration("server.write_timeout") * time.Second,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Store: v.GetString("session.store"),
			TTL:   v.GetDuration("session.ttl"),
		},
		Quiz: QuizConfig{
			MinQuestions:       v.GetInt("quiz.min_questions"),
			MaxQuestions:       v.GetInt("quiz.max_questions"),
			MinutesPerQuestion: v.GetFloat64("quiz.minutes_per_question"),
			CategoriesPerPage:  v.GetInt("quiz.categories_per_page"),
			HistoryLimit:       v.GetInt("quiz.history_limit"),
		},
		Report: ReportConfig{
			Dir:      v.GetString("report.dir"),
			Template: v.GetString("report.template"),
			FontPath: v.GetString("report.font_path"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Server:   v.GetString("llm.server"),
			Model:    v.GetString("llm.model"),
			APIKey:   v.GetString("llm.api_key"),
			BaseURL:  v.GetString("llm.base_url"),
			Timeout:  v.GetDuration("llm.timeout"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
			AccessTTL: v.GetDuration("jwt.access_ttl"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}
}

// GetDSN returns the driver specific data source name.
func (c *Config) GetDSN() string {
	if c.DB.Driver == "oracle" {
		return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
			c.DB.User,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.DBName,
		)
	}
	return "file:" + c.DB.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
