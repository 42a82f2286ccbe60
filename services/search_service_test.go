package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intent_finder/config"
	"intent_finder/httpclient"
	"intent_finder/models"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Search.PerQuery = 6
	cfg.Search.RankTopN = 60
	cfg.Search.KeepLimit = 15
	cfg.Search.FallbackTop = 3
	cfg.Search.MaxConcurrency = 3
	cfg.OpenAI.Model = "test-model"
	cfg.OpenAI.MaxTokens = 900
	cfg.OpenAI.Temperature = 0.2
	return cfg
}

// 返回指定内容的chat completions假服务
func fakeLLMServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

// 按cx参数返回不同结果的CSE假服务
func fakeCSEServer(t *testing.T, items map[string][]map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cx := r.URL.Query().Get("cx")
		if cx == "boom" {
			http.Error(w, "quota exceeded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items[cx]})
	}))
}

func TestMixResultsRoundRobin(t *testing.T) {
	reddit := []models.Post{{Title: "r1"}, {Title: "r2"}, {Title: "r3"}}
	linkedin := []models.Post{{Title: "l1"}}
	var x []models.Post

	out := MixResults(reddit, linkedin, x)
	want := []string{"r1", "l1", "r2", "r3"}
	if len(out) != len(want) {
		t.Fatalf("want %d posts, got %d", len(want), len(out))
	}
	for i, title := range want {
		if out[i].Title != title {
			t.Errorf("position %d: want %q, got %q", i, title, out[i].Title)
		}
	}
}

func TestMixResultsAllEmpty(t *testing.T) {
	if out := MixResults(nil, nil, nil); len(out) != 0 {
		t.Errorf("want empty mix, got %v", out)
	}
}

func TestSearchAllSources(t *testing.T) {
	srv := fakeCSEServer(t, map[string][]map[string]string{
		"rd": {
			{"title": "r1", "link": "https://reddit.com/1", "snippet": "s1"},
			{"title": "r2", "link": "https://reddit.com/2", "snippet": "s2"},
		},
		"li": {
			{"title": "l1", "link": "https://linkedin.com/1", "snippet": "s3"},
		},
	})
	defer srv.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = srv.URL
	cfg.GoogleCSE.CXReddit = "rd"
	cfg.GoogleCSE.CXLinkedIn = "li"
	// X来源未配置，应被跳过

	posts, err := SearchAllSources(context.Background(), cfg, []string{"crm"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"r1", "l1", "r2"}
	if len(posts) != len(want) {
		t.Fatalf("want %d posts, got %d", len(want), len(posts))
	}
	for i, title := range want {
		if posts[i].Title != title {
			t.Errorf("position %d: want %q, got %q", i, title, posts[i].Title)
		}
	}
	if posts[0].Source != models.SourceReddit || posts[1].Source != models.SourceLinkedIn {
		t.Errorf("sources not normalized: %v", posts)
	}
}

func TestSearchAllSourcesFetchFailure(t *testing.T) {
	srv := fakeCSEServer(t, nil)
	defer srv.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = srv.URL
	cfg.GoogleCSE.CXReddit = "boom"

	if _, err := SearchAllSources(context.Background(), cfg, []string{"crm"}, 6); err == nil {
		t.Fatal("want error on upstream failure, got nil")
	}
}

func TestSearchPostsKeepsFiltered(t *testing.T) {
	cse := fakeCSEServer(t, map[string][]map[string]string{
		"rd": {
			{"title": "keep me", "link": "https://reddit.com/keep", "snippet": "our team needs a crm"},
			{"title": "drop me", "link": "https://reddit.com/drop", "snippet": "homework question"},
		},
	})
	defer cse.Close()

	judgments, _ := json.Marshal([]models.JudgeItem{
		{URL: "https://reddit.com/keep", Keep: true, Reason: "business buyer"},
		{URL: "https://reddit.com/drop", Keep: false, Reason: "student"},
	})
	llm := fakeLLMServer(t, string(judgments), http.StatusOK)
	defer llm.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = cse.URL
	cfg.GoogleCSE.CXReddit = "rd"
	cfg.OpenAI.BaseURL = llm.URL

	posts, err := SearchPosts(context.Background(), cfg, "crm pain", []string{"crm"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 || posts[0].URL != "https://reddit.com/keep" {
		t.Fatalf("want only kept post, got %v", posts)
	}
}

func TestSearchPostsZeroKeptFallsBackToTop3(t *testing.T) {
	var items []map[string]string
	for i := 0; i < 5; i++ {
		items = append(items, map[string]string{
			"title":   fmt.Sprintf("post %d", i),
			"link":    fmt.Sprintf("https://reddit.com/%d", i),
			"snippet": "irrelevant",
		})
	}
	cse := fakeCSEServer(t, map[string][]map[string]string{"rd": items})
	defer cse.Close()

	// 全部淘汰
	var judged []models.JudgeItem
	for i := 0; i < 5; i++ {
		judged = append(judged, models.JudgeItem{
			URL: fmt.Sprintf("https://reddit.com/%d", i), Keep: false, Reason: "no intent",
		})
	}
	raw, _ := json.Marshal(judged)
	llm := fakeLLMServer(t, string(raw), http.StatusOK)
	defer llm.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = cse.URL
	cfg.GoogleCSE.CXReddit = "rd"
	cfg.OpenAI.BaseURL = llm.URL

	posts, err := SearchPosts(context.Background(), cfg, "topic", []string{"crm"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 过滤全部淘汰时返回启发式前3，而不是空结果
	if len(posts) != 3 {
		t.Fatalf("want top-3 fallback, got %d posts", len(posts))
	}
}

func TestSearchPostsFilterFailureKeepsAll(t *testing.T) {
	var items []map[string]string
	for i := 0; i < 5; i++ {
		items = append(items, map[string]string{
			"title":   fmt.Sprintf("post %d", i),
			"link":    fmt.Sprintf("https://reddit.com/%d", i),
			"snippet": "irrelevant",
		})
	}
	cse := fakeCSEServer(t, map[string][]map[string]string{"rd": items})
	defer cse.Close()

	llm := fakeLLMServer(t, "", http.StatusInternalServerError)
	defer llm.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = cse.URL
	cfg.GoogleCSE.CXReddit = "rd"
	cfg.OpenAI.BaseURL = llm.URL

	posts, err := SearchPosts(context.Background(), cfg, "topic", []string{"crm"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 过滤调用失败等价于全部保留
	if len(posts) != 5 {
		t.Fatalf("want all 5 posts kept, got %d", len(posts))
	}
}

func TestSearchPostsNoResults(t *testing.T) {
	cse := fakeCSEServer(t, nil)
	defer cse.Close()

	httpclient.Init(5 * time.Second)
	cfg := newTestConfig()
	cfg.GoogleCSE.Endpoint = cse.URL
	cfg.GoogleCSE.CXReddit = "rd"

	posts, err := SearchPosts(context.Background(), cfg, "topic", []string{"crm"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("want empty result, got %v", posts)
	}
}
