package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	GoogleCSE struct {
		APIKey     string `yaml:"api_key"`
		Endpoint   string `yaml:"endpoint"`
		CXReddit   string `yaml:"cx_reddit"`
		CXLinkedIn string `yaml:"cx_linkedin"`
		CXX        string `yaml:"cx_x"`
		CXGeneral  string `yaml:"cx_general"`
	} `yaml:"google_cse"`
	OpenAI struct {
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"openai"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`
	Search struct {
		PerQuery       int `yaml:"per_query"`       // 每个查询的默认结果数
		RankTopN       int `yaml:"rank_top_n"`      // 启发式排序后保留的候选数
		KeepLimit      int `yaml:"keep_limit"`      // 过滤通过后返回的最大帖子数
		FallbackTop    int `yaml:"fallback_top"`    // 过滤全部淘汰时返回的保底数
		MaxConcurrency int `yaml:"max_concurrency"` // 外部搜索并发数
	} `yaml:"search"`
	HTTP struct {
		MaxConns          int `yaml:"max_conns"`           // 连接池最大连接数
		MaxIdleConns      int `yaml:"max_idle_conns"`      // 连接池最大空闲连接数
		RequestTimeoutSec int `yaml:"request_timeout_sec"` // 请求超时，单位：秒
	} `yaml:"http"`
}

func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	var cfg Config

	// 尝试从config.yaml文件加载配置
	if data, err := os.ReadFile("config.yaml"); err == nil {
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			log.Printf("Error loading config.yaml: %v, falling back to environment variables", err)
			return loadFromEnv()
		}
		log.Println("Loading configuration from config.yaml")

		// 计算 Server.Addr 字段
		cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

		// 从环境变量中加载敏感信息
		applyEnvSecrets(&cfg)
		applyDefaults(&cfg)
		return &cfg
	}

	// 如果config.yaml不存在，则完全从环境变量加载配置
	return loadFromEnv()
}

func loadFromEnv() *Config {
	// 当config.yaml加载失败时，创建一个最小配置
	var cfg Config

	// 设置服务器地址
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	// 自定义搜索引擎ID
	cfg.GoogleCSE.CXReddit = os.Getenv("GOOGLE_CSE_CX_REDDIT")
	cfg.GoogleCSE.CXLinkedIn = os.Getenv("GOOGLE_CSE_CX_LINKEDIN")
	cfg.GoogleCSE.CXX = os.Getenv("GOOGLE_CSE_CX_X")
	cfg.GoogleCSE.CXGeneral = os.Getenv("GOOGLE_CSE_CX_GENERAL")

	applyEnvSecrets(&cfg)
	applyDefaults(&cfg)

	log.Println("配置从环境变量加载，部分配置可能缺失")
	return &cfg
}

// applyEnvSecrets 敏感密钥始终允许环境变量覆盖配置文件
func applyEnvSecrets(cfg *Config) {
	if key := os.Getenv("GOOGLE_CSE_KEY"); key != "" {
		cfg.GoogleCSE.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
}

// applyDefaults 为缺失的配置项提供默认值保护
func applyDefaults(cfg *Config) {
	if cfg.GoogleCSE.Endpoint == "" {
		cfg.GoogleCSE.Endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.MaxTokens <= 0 {
		cfg.OpenAI.MaxTokens = 900
	}
	if cfg.OpenAI.Temperature <= 0 {
		cfg.OpenAI.Temperature = 0.2
	}
	if cfg.Search.PerQuery <= 0 {
		cfg.Search.PerQuery = 6
	}
	if cfg.Search.RankTopN <= 0 {
		cfg.Search.RankTopN = 60
	}
	if cfg.Search.KeepLimit <= 0 {
		cfg.Search.KeepLimit = 15
	}
	if cfg.Search.FallbackTop <= 0 {
		cfg.Search.FallbackTop = 3
	}
	if cfg.Search.MaxConcurrency <= 0 {
		cfg.Search.MaxConcurrency = 3
	}
	if cfg.HTTP.MaxConns <= 0 {
		cfg.HTTP.MaxConns = 100
	}
	if cfg.HTTP.MaxIdleConns <= 0 {
		cfg.HTTP.MaxIdleConns = 20
	}
	if cfg.HTTP.RequestTimeoutSec <= 0 {
		cfg.HTTP.RequestTimeoutSec = 60
	}
}
