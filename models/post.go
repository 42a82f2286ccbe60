package models

// 帖子来源平台标识
const (
	SourceReddit   = "reddit"
	SourceLinkedIn = "linkedin"
	SourceX        = "x"
)

// Post 外部平台上发现的帖子/提及，统一为通用结构
type Post struct {
	Source  string `json:"source"`            // reddit / linkedin / x
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	TS      string `json:"ts,omitempty"` // ISO-8601时间戳，可能缺失或格式错误
}

// JudgeItem 语义过滤器对单个帖子的判定结果
type JudgeItem struct {
	URL    string `json:"url"`
	Keep   bool   `json:"keep"`
	Reason string `json:"reason"`
}

// ScoredPost 排序阶段的临时结构，截断后仅保留Post
type ScoredPost struct {
	Score float64
	Post  Post
}
