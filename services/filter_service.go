package services

import (
	"context"
	"encoding/json"
	"fmt"

	"intent_finder/config"
	"intent_finder/logger"
	"intent_finder/models"
)

// FilterPosts 调用LLM对候选帖子逐条给出保留/淘汰判定
// 过滤属于尽力而为：调用失败或响应无法解析时降级为全部保留，
// 绝不让过滤环节导致整个搜索请求失败
func FilterPosts(ctx context.Context, cfg *config.Config, topic string, posts []models.Post) []models.JudgeItem {
	if len(posts) == 0 {
		return nil
	}

	system, user := buildFilterPrompt(topic, posts)
	text, err := chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, true, 1500)
	if err != nil {
		logger.Error("LLM过滤调用失败，降级为全部保留", "error", err)
		return keepAll(posts)
	}

	items, err := parseJudgeItems(text)
	if err != nil {
		logger.Error("解析LLM过滤结果失败，降级为全部保留", "error", err)
		return keepAll(posts)
	}
	return items
}

// keepAll 过滤失败时的降级结果：所有候选视为保留
func keepAll(posts []models.Post) []models.JudgeItem {
	items := make([]models.JudgeItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.JudgeItem{
			URL:    p.URL,
			Keep:   true,
			Reason: "filter failed, keeping all",
		})
	}
	return items
}

// parseJudgeItems 解析过滤器响应
// 上游约定不可靠，需要容忍四种形态：裸数组、{"results":[...]}、
// {"items":[...]}、以及单个判定对象（视为一个元素的数组）
func parseJudgeItems(text string) ([]models.JudgeItem, error) {
	raw := []byte(extractJSONFromText(text))

	// 裸数组
	var arr []models.JudgeItem
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	// 包装对象
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, key := range []string{"results", "items"} {
			if sub, ok := env[key]; ok {
				if err := json.Unmarshal(sub, &arr); err == nil {
					return arr, nil
				}
			}
		}

		// 单个判定对象
		if _, hasURL := env["url"]; hasURL {
			var single models.JudgeItem
			if err := json.Unmarshal(raw, &single); err == nil {
				return []models.JudgeItem{single}, nil
			}
		}
	}

	return nil, fmt.Errorf("无法识别的过滤结果形态")
}
