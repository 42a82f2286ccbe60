package services

import (
	"context"

	"intent_finder/config"
	"intent_finder/models"
)

// GenerateReply 为选定帖子生成一段简短的公开回复草稿
func GenerateReply(ctx context.Context, cfg *config.Config, topic string, post models.Post) (string, error) {
	system, user := buildReplyPrompt(topic, post)
	return chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, false, 0)
}

// GenerateReplyStream 流式生成回复草稿，增量文本块通过onChunk回调
// 底层请求被取消时流中止，不保证部分结果可重放
func GenerateReplyStream(ctx context.Context, cfg *config.Config, topic string, post models.Post, onChunk func(string) error) error {
	system, user := buildReplyPrompt(topic, post)
	return chatCompletionStream(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, 0, onChunk)
}
