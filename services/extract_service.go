package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"intent_finder/config"
	"intent_finder/httpclient"
	"intent_finder/logger"
	"intent_finder/models"
)

// manualPrefix 手工输入的产品描述前缀，跳过网站分析
const manualPrefix = "manual:"

// ExtractProduct 从网站URL或手工描述生成产品画像：
// 产品描述、目标客户群、客户痛点
func ExtractProduct(ctx context.Context, cfg *config.Config, rawURL string) (*models.ExtractResponse, error) {
	var description string
	var err error

	if strings.HasPrefix(rawURL, manualPrefix) {
		description = strings.TrimSpace(strings.TrimPrefix(rawURL, manualPrefix))
	} else {
		description, err = describeWebsite(ctx, cfg, rawURL)
		if err != nil {
			return nil, fmt.Errorf("生成产品描述失败: %w", err)
		}
	}

	segment, err := analyzeCustomerSegment(ctx, cfg, description)
	if err != nil {
		return nil, fmt.Errorf("分析客户群失败: %w", err)
	}

	painPoints, err := extractPainPoints(ctx, cfg, description)
	if err != nil {
		return nil, fmt.Errorf("提取客户痛点失败: %w", err)
	}

	return &models.ExtractResponse{
		Description:     description,
		CustomerSegment: segment,
		PainPoints:      painPoints,
	}, nil
}

// describeWebsite 生成网站的产品描述
// 优先用搜索结果作为上下文，其次直接抓取页面元信息，都拿不到时退回模型知识
func describeWebsite(ctx context.Context, cfg *config.Config, siteURL string) (string, error) {
	searchInfo := searchWebsiteInfo(ctx, cfg, siteURL)
	if searchInfo == "" {
		searchInfo = scrapeSiteSummary(ctx, siteURL)
	}

	system, user := buildDescriptionPrompt(siteURL, searchInfo)
	return chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, false, 0)
}

// analyzeCustomerSegment 分析目标客户群
func analyzeCustomerSegment(ctx context.Context, cfg *config.Config, description string) (string, error) {
	system, user := buildSegmentPrompt(description)
	return chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, false, 0)
}

// extractPainPoints 提取客户痛点列表
// LLM调用失败向上传播，返回内容解析失败只降级为空列表
func extractPainPoints(ctx context.Context, cfg *config.Config, description string) ([]string, error) {
	system, user := buildPainPointsPrompt(description)
	text, err := chatCompletion(ctx, cfg, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, true, 0)
	if err != nil {
		return nil, err
	}

	points, err := parseStringList(text, "pain_points", "points", "items")
	if err != nil {
		logger.Warn("解析痛点列表失败，返回空列表", "error", err)
		return []string{}, nil
	}
	return points, nil
}

// searchWebsiteInfo 通过搜索API获取网站的公开信息，失败时返回空串
func searchWebsiteInfo(ctx context.Context, cfg *config.Config, siteURL string) string {
	domain := domainOf(siteURL)
	if domain == "" {
		return ""
	}

	cx := cfg.GoogleCSE.CXGeneral
	query := fmt.Sprintf("%q company \"what does\" OR \"about\" OR \"services\"", domain)
	if cx == "" {
		// 没有通用搜索引擎时借用LinkedIn引擎做宽泛查询
		cx = cfg.GoogleCSE.CXLinkedIn
		query = domain + " company about"
	}
	if cx == "" {
		return ""
	}

	data, err := searchCSE(ctx, cfg, cx, query, 3)
	if err != nil {
		logger.Warn("网站信息搜索失败", "domain", domain, "error", err)
		return ""
	}

	var snippets []string
	for _, item := range data.Items {
		if item.Snippet != "" {
			snippets = append(snippets, item.Title+": "+item.Snippet)
		}
		if len(snippets) >= 3 {
			break
		}
	}
	return strings.Join(snippets, "\n")
}

// domainOf 从URL中提取域名
func domainOf(rawURL string) string {
	s := strings.TrimPrefix(rawURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return s
}

// scrapeSiteSummary 直接抓取目标页面并提取元信息作为描述上下文
// 任何失败都静默返回空串，由上层退回模型知识
func scrapeSiteSummary(ctx context.Context, siteURL string) string {
	if !strings.HasPrefix(siteURL, "http://") && !strings.HasPrefix(siteURL, "https://") {
		siteURL = "https://" + siteURL
	}

	req, err := http.NewRequestWithContext(ctx, "GET", siteURL, nil)
	if err != nil {
		return ""
	}

	resp, err := httpclient.Client.Do(req)
	if err != nil {
		logger.Warn("抓取目标页面失败", "url", siteURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	return summarizePage(resp.Body)
}

// summarizePage 从HTML中提取标题、描述和主要标题作为摘要
func summarizePage(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}

	var parts []string

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, "Title: "+title)
	}

	desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if desc != "" {
		parts = append(parts, "Description: "+desc)
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		parts = append(parts, "Headline: "+h1)
	}

	var h2s []string
	doc.Find("h2").Each(func(i int, s *goquery.Selection) {
		if txt := strings.TrimSpace(s.Text()); txt != "" && len(h2s) < 5 {
			h2s = append(h2s, txt)
		}
	})
	if len(h2s) > 0 {
		parts = append(parts, "Sections: "+strings.Join(h2s, "; "))
	}

	return strings.Join(parts, "\n")
}
