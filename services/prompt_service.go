package services

import (
	"fmt"
	"strings"

	"intent_finder/models"
)

// buildDescriptionPrompt 构建产品描述生成提示词
// searchInfo为空时退回到模型自身知识
func buildDescriptionPrompt(siteURL, searchInfo string) (string, string) {
	if searchInfo == "" {
		system := "Based on your knowledge, provide an accurate, objective summary of what this company/product does in 4-6 short sentences. Focus on their core business, products, or services. Be factual and neutral. If you don't have specific knowledge, say so."
		user := fmt.Sprintf("Website: %s\nDescribe what this company/product does based on your knowledge.", siteURL)
		return system, user
	}

	system := "Based on the search results provided, create an accurate, objective summary of what this company/product does in 4-6 short sentences. Focus on their core business, products, or services. Be factual and neutral based on the search information."
	user := fmt.Sprintf("Website: %s\n\nSearch Results:\n%s\n\nBased on these search results, describe what this company/product does.", siteURL, searchInfo)
	return system, user
}

// buildSegmentPrompt 构建目标客户群分析提示词
func buildSegmentPrompt(description string) (string, string) {
	system := "Based on the product description, identify the primary target customer segment. Be specific about whether this is B2B, B2C, or B2B2C, and the specific type of customers (e.g. 'Small to medium businesses', 'Enterprise companies', 'Developers'). Keep response to 1-2 sentences."
	user := fmt.Sprintf("Product description: %s\nWhat customer segment is this best suited for?", description)
	return system, user
}

// buildPainPointsPrompt 构建客户痛点提取提示词
func buildPainPointsPrompt(description string) (string, string) {
	system := "Extract 3-5 key pain points or problems that this product solves for customers. Focus on the customer's struggles, challenges, and frustrations - NOT product features. Return as JSON {\"pain_points\":[...]} with each pain point a concise phrase (5-10 words)."
	user := fmt.Sprintf(`Product description: %s

What pain points does this product solve? Focus on customer problems, not features.

Good examples:
- 'Wasting time on manual data entry'
- 'Losing leads due to slow response times'

Bad examples (too feature-focused):
- 'AI-powered automation'
- 'Cloud-based platform'`, description)
	return system, user
}

// buildGTMPrompt 构建GTM话题生成提示词
func buildGTMPrompt(description string) (string, string) {
	system := "Generate 5 GTM topics focused on customer pain points and problems this product solves, not product features. Format as JSON {\"topics\":[...]}."
	user := fmt.Sprintf(`Product: %s

What customer pain points does this solve? Focus on:
- Problems people face (not product features)
- Frustrations this eliminates
- Challenges this addresses

Examples of GOOD pain-focused topics:
- 'Remote Work Collaboration Challenges'
- 'Development Environment Setup Headaches'

Examples of BAD feature-focused topics:
- 'Online Coding Platforms'
- 'Multi-Language Support'`, description)
	return system, user
}

// buildKeywordsPrompt 构建搜索关键词生成提示词
func buildKeywordsPrompt(topic, description string) (string, string) {
	system := `Generate 6-8 search queries to find BUSINESS BUYERS and DECISION-MAKERS who are actively evaluating or purchasing solutions for their company/team. Target people with BUDGET and AUTHORITY, not hobbyists or students. Focus on B2B buying intent. Return JSON {"queries":[...]} format.`
	user := fmt.Sprintf(`GTM Topic: %s
Product: %s

Target BUSINESS DECISION-MAKERS who are:
- Evaluating solutions for their company/team ("looking for [solution] for our company")
- Comparing enterprise/business tools
- Making purchasing decisions ("recommend for our team")
- Switching vendors/tools ("migrating from", "replacing our current")

AVOID queries about:
- Learning/tutorials ("how to learn", "beginner guide")
- Personal/hobby use ("for my side project")
- Free alternatives only
- Student/academic use

Examples:
- "CRM for small business looking to upgrade"
- "enterprise project management tool alternatives"
- "our team needs better collaboration software"`, topic, description)
	return system, user
}

// buildFilterPrompt 构建语义过滤提示词，要求逐条返回保留/淘汰判定
func buildFilterPrompt(topic string, posts []models.Post) (string, string) {
	system := "Filter posts for BUSINESS BUYERS with PURCHASING POWER who are actively evaluating or buying solutions for their company/team. ONLY keep posts from people who appear to have BUDGET and DECISION-MAKING AUTHORITY. You MUST return a JSON array (list) of objects, where each object has keys: url, keep (boolean), reason (string). Even if there is only one item, wrap it in an array: [{...}]."

	var b strings.Builder
	fmt.Fprintf(&b, `GTM Topic: %s

KEEP posts from BUSINESS BUYERS who:
- Mention their company/team/organization ("our company", "my team", "we need")
- Have decision-making authority ("I'm evaluating", "we're switching")
- Compare business/enterprise tools (not hobby projects)
- Mention budget/investment ("willing to pay", "enterprise tier")
- Are actively shopping ("comparing vendors", "need recommendations")

EXCLUDE posts from:
- Students or learners ("learning", "homework", "school project")
- Hobbyists or personal projects ("my side project", "just for fun")
- People only wanting free solutions
- Tutorial seekers ("how to", "getting started")
- General discussions without buying intent

Items to evaluate:
`, topic)

	for _, p := range posts {
		fmt.Fprintf(&b, "\nTitle: %s\nSnippet: %s\nURL: %s\n", p.Title, p.Snippet, p.URL)
	}
	return system, b.String()
}

// buildReplyPrompt 构建公开回复草稿提示词
func buildReplyPrompt(topic string, post models.Post) (string, string) {
	system := "Write a concise, non-spammy public reply (2-3 sentences), helpful and respectful. Markdown only."
	user := fmt.Sprintf("Topic: %s\nTitle: %s\nSnippet: %s\nURL: %s", topic, post.Title, post.Snippet, post.URL)
	return system, user
}
