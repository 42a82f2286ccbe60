package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intent_finder/config"
	"intent_finder/httpclient"
	"intent_finder/logger"
)

// 定义chat completions API请求和响应结构
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// chatCompletion 调用chat completions API并返回生成文本
// jsonMode为true时要求模型返回JSON对象
func chatCompletion(ctx context.Context, cfg *config.Config, messages []chatMessage, jsonMode bool, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = cfg.OpenAI.MaxTokens
	}

	reqBody := chatCompletionRequest{
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   maxTokens,
		Messages:    messages,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		logger.Error("序列化LLM请求体失败", "error", err)
		return "", err
	}

	url := cfg.OpenAI.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqJSON))
	if err != nil {
		logger.Error("创建LLM请求失败", "error", err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.OpenAI.APIKey)

	startTime := time.Now()
	resp, err := httpclient.Client.Do(req)
	if err != nil {
		logger.Error("发送LLM请求失败", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("读取LLM响应失败", "error", err)
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		responsePreview := string(body)
		if len(responsePreview) > 500 {
			responsePreview = responsePreview[:500] + "..."
		}
		logger.Error("LLM API请求失败", "status", resp.StatusCode, "response", responsePreview)
		return "", fmt.Errorf("LLM API请求失败: %d - %s", resp.StatusCode, responsePreview)
	}

	var ccResp chatCompletionResponse
	if err := json.Unmarshal(body, &ccResp); err != nil {
		logger.Error("解析LLM响应失败", "error", err)
		return "", err
	}

	if len(ccResp.Choices) == 0 {
		logger.Error("LLM响应中没有内容")
		return "", fmt.Errorf("LLM响应中没有内容")
	}

	logger.Info("LLM调用完成",
		"model", cfg.OpenAI.Model,
		"tokens_prompt", ccResp.Usage.PromptTokens,
		"tokens_completion", ccResp.Usage.CompletionTokens,
		"finish_reason", ccResp.Choices[0].FinishReason,
		"duration_ms", time.Since(startTime).Milliseconds())

	return ccResp.Choices[0].Message.Content, nil
}

// chatCompletionStream 流式调用chat completions API
// 每收到一个增量文本块就回调onChunk，上下文取消时中止流
func chatCompletionStream(ctx context.Context, cfg *config.Config, messages []chatMessage, maxTokens int, onChunk func(string) error) error {
	if maxTokens <= 0 {
		maxTokens = cfg.OpenAI.MaxTokens
	}

	reqBody := chatCompletionRequest{
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   maxTokens,
		Messages:    messages,
		Stream:      true,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := cfg.OpenAI.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqJSON))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.OpenAI.APIKey)

	// 流式请求不能使用带整体超时的客户端
	resp, err := httpclient.StreamClient().Do(req)
	if err != nil {
		logger.Error("发送LLM流式请求失败", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Error("LLM流式请求失败", "status", resp.StatusCode, "response", string(body))
		return fmt.Errorf("LLM API请求失败: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// 跳过无法解析的行
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := onChunk(content); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// extractJSONFromText 从LLM返回的文本中提取JSON部分
// 模型偶尔会在JSON前后附加说明文字或代码块标记
func extractJSONFromText(text string) string {
	// 优先查找```json代码块
	startMarker := "```json"
	endMarker := "```"
	if startIdx := strings.Index(text, startMarker); startIdx >= 0 {
		rest := text[startIdx+len(startMarker):]
		if endIdx := strings.Index(rest, endMarker); endIdx > 0 {
			return strings.TrimSpace(rest[:endIdx])
		}
	}

	// 查找文本中第一个JSON结构（对象或数组）
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return text[arrStart : end+1]
		}
	}
	if objStart >= 0 {
		if end := strings.LastIndex(text, "}"); end > objStart {
			return text[objStart : end+1]
		}
	}

	// 找不到JSON结构时返回原始文本
	logger.Warn("无法从LLM文本中提取JSON部分，返回原始文本")
	return strings.TrimSpace(text)
}
