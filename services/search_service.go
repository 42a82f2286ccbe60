package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"intent_finder/config"
	"intent_finder/httpclient"
	"intent_finder/logger"
	"intent_finder/models"
)

// cseResponse Google自定义搜索响应（只保留需要的字段）
type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// searchCSE 调用Google自定义搜索API执行单次查询
func searchCSE(ctx context.Context, cfg *config.Config, cx, query string, num int) (*cseResponse, error) {
	// CSE单次请求最多返回10条
	if num > 10 {
		num = 10
	}

	params := url.Values{}
	params.Set("key", cfg.GoogleCSE.APIKey)
	params.Set("cx", cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, "GET", cfg.GoogleCSE.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpclient.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		preview := string(body)
		if len(preview) > 300 {
			preview = preview[:300] + "..."
		}
		return nil, fmt.Errorf("搜索API返回错误状态码 %d: %s", resp.StatusCode, preview)
	}

	var data cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}
	return &data, nil
}

// normalizePosts 将搜索结果统一为Post结构
func normalizePosts(source string, data *cseResponse) []models.Post {
	out := make([]models.Post, 0, len(data.Items))
	for _, item := range data.Items {
		out = append(out, models.Post{
			Source:  source,
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return out
}

// searchSource 对一个来源按顺序执行所有查询并合并结果
// 未配置搜索引擎ID的来源直接跳过，不算错误
func searchSource(ctx context.Context, cfg *config.Config, source, cx string, queries []string, perQuery int) ([]models.Post, error) {
	if cx == "" {
		logger.Debug("来源未配置搜索引擎ID，跳过", "source", source)
		return nil, nil
	}

	var all []models.Post
	for _, q := range queries {
		data, err := searchCSE(ctx, cfg, cx, q, perQuery)
		if err != nil {
			return nil, fmt.Errorf("搜索来源%s失败: %w", source, err)
		}
		all = append(all, normalizePosts(source, data)...)
	}
	return all, nil
}

// SearchAllSources 并发抓取三个来源并按round-robin混排
// 任意来源的抓取失败都会使整次搜索失败（不做重试）
func SearchAllSources(ctx context.Context, cfg *config.Config, queries []string, perQuery int) ([]models.Post, error) {
	sources := []struct {
		name     string
		cx       string
		perQuery int
	}{
		// Reddit的社区讨论买家意图最强，多抓一倍
		{models.SourceReddit, cfg.GoogleCSE.CXReddit, perQuery * 2},
		{models.SourceLinkedIn, cfg.GoogleCSE.CXLinkedIn, perQuery},
		{models.SourceX, cfg.GoogleCSE.CXX, perQuery},
	}

	results := make([][]models.Post, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, cfg.Search.MaxConcurrency)

	for idx, src := range sources {
		wg.Add(1)
		go func(i int, name, cx string, n int) {
			defer wg.Done()

			// 使用信号量限制并发数
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i], errs[i] = searchSource(ctx, cfg, name, cx, queries, n)
		}(idx, src.name, src.cx, src.perQuery)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return MixResults(results[0], results[1], results[2]), nil
}

// MixResults 按round-robin交错合并三个来源的结果序列
// 每个下标位置按固定优先级reddit、linkedin、x依次取一条，
// 避免单个高产来源在排序前独占列表头部
func MixResults(reddit, linkedin, x []models.Post) []models.Post {
	maxLen := len(reddit)
	if len(linkedin) > maxLen {
		maxLen = len(linkedin)
	}
	if len(x) > maxLen {
		maxLen = len(x)
	}

	mixed := make([]models.Post, 0, len(reddit)+len(linkedin)+len(x))
	for i := 0; i < maxLen; i++ {
		if i < len(reddit) {
			mixed = append(mixed, reddit[i])
		}
		if i < len(linkedin) {
			mixed = append(mixed, linkedin[i])
		}
		if i < len(x) {
			mixed = append(mixed, x[i])
		}
	}
	return mixed
}

// SearchPosts 完整搜索管线：抓取 → 混排 → 去重 → 启发式排序截断 → LLM过滤 → 组装
func SearchPosts(ctx context.Context, cfg *config.Config, topic string, queries []string, perQuery int) ([]models.Post, error) {
	if perQuery <= 0 {
		perQuery = cfg.Search.PerQuery
	}

	raw, err := SearchAllSources(ctx, cfg, queries, perQuery)
	if err != nil {
		return nil, err
	}
	logger.Info("原始搜索结果", "count", len(raw))

	unique := DedupeByURL(raw)
	logger.Info("去重后结果", "count", len(unique))

	if len(unique) == 0 {
		return []models.Post{}, nil
	}

	// 第一阶段：确定性排序截断，限制LLM过滤的候选规模
	top := RankPostsByIntent(unique, queries, cfg.Search.RankTopN)
	logger.Info("启发式排序完成", "candidates", len(top))

	// 第二阶段：LLM语义过滤（失败时内部降级为全部保留）
	judged := FilterPosts(ctx, cfg, topic, top)

	keep := make(map[string]bool)
	for _, j := range judged {
		if j.Keep {
			keep[identityKey(j.URL)] = true
		}
	}
	logger.Info("LLM过滤完成", "judged", len(judged), "kept", len(keep))

	// 全部被淘汰时返回启发式得分最高的前几条，保证调用方不会拿到空结果
	if len(keep) == 0 {
		n := cfg.Search.FallbackTop
		if n > len(top) {
			n = len(top)
		}
		logger.Info("没有帖子通过LLM过滤，返回启发式保底结果", "count", n)
		return top[:n], nil
	}

	// 按排序顺序返回通过过滤的帖子
	kept := make([]models.Post, 0, cfg.Search.KeepLimit)
	for _, p := range top {
		if keep[identityKey(p.URL)] {
			kept = append(kept, p)
			if len(kept) >= cfg.Search.KeepLimit {
				break
			}
		}
	}
	return kept, nil
}
