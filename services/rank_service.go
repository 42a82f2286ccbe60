package services

import (
	"sort"
	"strings"
	"time"

	"intent_finder/models"
)

// timeNow 可替换的时钟，测试中固定以保证时效加分可复现
var timeNow = time.Now

// DefaultRankTopN 启发式排序后保留的默认候选数
const DefaultRankTopN = 60

// 来源质量先验：社区讨论平台比职业/微博客平台更容易出现买家意图信号
const (
	sourceScoreReddit   = 1.5
	sourceScoreLinkedIn = 1.0
	sourceScoreX        = 0.7
)

// 各项信号的权重
const (
	titleMatchScore   = 0.8 // 标题命中查询词
	snippetMatchScore = 0.4 // 摘要命中查询词
	buyingSignalScore = 0.5 // 命中买家意图短语（只计一次）
	recencyMaxScore   = 2.0 // 最新帖子的时效加分上限
	recencyWindowDays = 180 // 时效加分窗口（天）
)

// buyingSignals 买家意图短语表，命中任意一个即加分
var buyingSignals = []string{
	"our company", "our team", "we need", "looking for",
	"recommend", " vs ", "alternative", "switching from",
	"for our", "enterprise", "business", "comparing",
	"evaluation", "migrating", "replacing our",
}

// DedupeByURL 按URL去重（忽略查询串），保留每个键首次出现的帖子
// URL为空或无法解析时原样作为键使用，两个无URL的帖子会合并为一个
func DedupeByURL(posts []models.Post) []models.Post {
	seen := make(map[string]bool)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		key := identityKey(p.URL)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

// identityKey 截断第一个问号之后的部分，剩余字符串原样作为去重键
func identityKey(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i]
	}
	return url
}

// queryTermsOf 将查询语句小写后按空白拆词，去重并保持出现顺序
func queryTermsOf(queries []string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, q := range queries {
		for _, t := range strings.Fields(strings.ToLower(q)) {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	return terms
}

// parseTimestamp 解析帖子时间戳，容忍常见的ISO-8601变体
func parseTimestamp(ts string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HeuristicIntentScore 计算帖子的确定性意图得分：
// 来源质量 + 时效 + 查询词命中 + 买家意图短语
func HeuristicIntentScore(post models.Post, queryTerms []string) float64 {
	score := 0.0

	// 来源质量
	urlStr := strings.ToLower(post.URL)
	switch {
	case strings.Contains(urlStr, "reddit.com"):
		score += sourceScoreReddit
	case strings.Contains(urlStr, "linkedin.com"):
		score += sourceScoreLinkedIn
	case strings.Contains(urlStr, "x.com"), strings.Contains(urlStr, "twitter.com"):
		score += sourceScoreX
	}

	// 时效加分：窗口内线性衰减，时间戳缺失或无法解析不加分
	if post.TS != "" {
		if postTime, ok := parseTimestamp(post.TS); ok {
			daysOld := int(timeNow().UTC().Sub(postTime).Hours() / 24)
			if daysOld < recencyWindowDays {
				bonus := recencyMaxScore * (1 - float64(daysOld)/float64(recencyWindowDays))
				if bonus > 0 {
					score += bonus
				}
			}
		}
	}

	// 查询词命中：标题和摘要独立计分，同一个词只查一次
	title := strings.ToLower(post.Title)
	snippet := strings.ToLower(post.Snippet)
	for _, term := range queryTerms {
		if strings.Contains(title, term) {
			score += titleMatchScore
		}
		if strings.Contains(snippet, term) {
			score += snippetMatchScore
		}
	}

	// 买家意图短语：命中任意一个即加分，只计一次
	combined := title + " " + snippet
	for _, signal := range buyingSignals {
		if strings.Contains(combined, signal) {
			score += buyingSignalScore
			break
		}
	}

	return score
}

// RankPostsByIntent 按意图得分降序排序并截断到topN
// 在昂贵的LLM过滤之前用确定性启发式收缩候选集，限制下游成本
// 稳定排序：同分帖子保持混排阶段给定的相对顺序
func RankPostsByIntent(posts []models.Post, queries []string, topN int) []models.Post {
	if topN <= 0 {
		topN = DefaultRankTopN
	}

	terms := queryTermsOf(queries)

	scored := make([]models.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, models.ScoredPost{
			Score: HeuristicIntentScore(p, terms),
			Post:  p,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	out := make([]models.Post, 0, len(scored))
	for _, sp := range scored {
		out = append(out, sp.Post)
	}
	return out
}
