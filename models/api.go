package models

// ExtractRequest 产品信息提取请求
type ExtractRequest struct {
	URL string `json:"url" example:"https://example.com"`
}

// ExtractResponse 产品信息提取结果
type ExtractResponse struct {
	Description     string   `json:"description"`
	CustomerSegment string   `json:"customer_segment"`
	PainPoints      []string `json:"pain_points"`
}

// GTMRequest GTM话题生成请求
type GTMRequest struct {
	Description string `json:"description"`
}

// GTMResponse GTM话题生成结果
type GTMResponse struct {
	Topics []string `json:"topics"`
}

// KeywordsRequest 搜索关键词生成请求
type KeywordsRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// KeywordsResponse 搜索关键词生成结果
type KeywordsResponse struct {
	Queries []string `json:"queries"`
}

// SearchRequest 意图搜索请求
type SearchRequest struct {
	Topic    string   `json:"topic"`
	Queries  []string `json:"queries"`
	PerQuery int      `json:"per_query" example:"6"`
}

// SearchResponse 意图搜索结果
type SearchResponse struct {
	Posts []Post `json:"posts"`
}

// ReplyRequest 回复草稿生成请求
type ReplyRequest struct {
	Topic string `json:"topic"`
	Post  Post   `json:"post"`
}

// ReplyResponse 回复草稿生成结果
type ReplyResponse struct {
	Response string `json:"response"`
}
