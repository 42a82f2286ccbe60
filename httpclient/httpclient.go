package httpclient

import (
	"net/http"
	"time"

	"intent_finder/config"
)

var (
	Client *http.Client // 共享HTTP连接池
)

// Init 初始化共享HTTP客户端
func Init(timeout time.Duration) {
	Client = &http.Client{Timeout: timeout}
}

// InitWithConfig 使用配置初始化共享HTTP连接池
// 所有对外部服务（搜索API、LLM）的请求复用同一个连接池，
// 由Transport限制最大并发连接数
func InitWithConfig(cfg *config.Config) {
	// 从配置读取连接池参数，提供默认值保护
	maxConns := cfg.HTTP.MaxConns
	if maxConns <= 0 {
		maxConns = 100 // 默认最大连接数
	}

	maxIdleConns := cfg.HTTP.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 20 // 默认最大空闲连接数
	}

	timeoutSec := cfg.HTTP.RequestTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60 // 默认请求超时（秒）
	}

	transport := &http.Transport{
		MaxConnsPerHost:     maxConns,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConns,
		IdleConnTimeout:     90 * time.Second,
	}

	Client = &http.Client{
		Transport: transport,
		Timeout:   time.Duration(timeoutSec) * time.Second,
	}
}

// StreamClient 返回不带整体超时的客户端，用于SSE流式响应
// 流式请求的生命周期由请求上下文控制，整体超时会截断长回复
func StreamClient() *http.Client {
	if Client == nil {
		return &http.Client{}
	}
	return &http.Client{Transport: Client.Transport}
}
