package services

import (
	"context"
	"encoding/json"
	"fmt"

	"intent_finder/config"
)

// GenerateGTMTopics 根据产品描述生成面向客户痛点的GTM话题
func GenerateGTMTopics(ctx context.Context, cfg *config.Config, description string) ([]string, error) {
	system, user := buildGTMPrompt(description)
	text, err := chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, true, 0)
	if err != nil {
		return nil, err
	}
	return parseStringList(text, "topics")
}

// GenerateSearchKeywords 根据GTM话题和产品描述生成买家意图搜索查询
func GenerateSearchKeywords(ctx context.Context, cfg *config.Config, topic, description string) ([]string, error) {
	system, user := buildKeywordsPrompt(topic, description)
	text, err := chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, true, 0)
	if err != nil {
		return nil, err
	}
	return parseStringList(text, "queries")
}

// parseStringList 解析LLM返回的字符串列表
// 容忍裸数组和按给定键包装的对象两种形态
func parseStringList(text string, keys ...string) ([]string, error) {
	raw := []byte(extractJSONFromText(text))

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, key := range keys {
			if sub, ok := env[key]; ok {
				if err := json.Unmarshal(sub, &list); err == nil {
					return list, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("无法识别的列表形态")
}
