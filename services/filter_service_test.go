package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"intent_finder/httpclient"
	"intent_finder/models"
)

func TestParseJudgeItemsBareArray(t *testing.T) {
	text := `[{"url":"https://a.co/1","keep":true,"reason":"buyer"},{"url":"https://a.co/2","keep":false,"reason":"student"}]`
	items, err := parseJudgeItems(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || !items[0].Keep || items[1].Keep {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseJudgeItemsResultsWrapper(t *testing.T) {
	text := `{"results":[{"url":"https://a.co/1","keep":true,"reason":"ok"}]}`
	items, err := parseJudgeItems(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://a.co/1" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseJudgeItemsItemsWrapper(t *testing.T) {
	text := `{"items":[{"url":"https://a.co/1","keep":false,"reason":"no"}]}`
	items, err := parseJudgeItems(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Keep {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseJudgeItemsSingleObject(t *testing.T) {
	text := `{"url":"https://a.co/1","keep":true,"reason":"lonely"}`
	items, err := parseJudgeItems(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Reason != "lonely" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseJudgeItemsFencedJSON(t *testing.T) {
	text := "Here are my judgments:\n```json\n[{\"url\":\"https://a.co/1\",\"keep\":true,\"reason\":\"ok\"}]\n```"
	items, err := parseJudgeItems(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseJudgeItemsGarbage(t *testing.T) {
	if _, err := parseJudgeItems("I could not decide, sorry"); err == nil {
		t.Fatal("want error for unparseable text, got nil")
	}
}

func TestFilterPostsTransportFailureKeepsAll(t *testing.T) {
	// 指向已关闭的端口，调用必然失败
	llm := fakeLLMServer(t, "", http.StatusOK)
	llm.Close()

	httpclient.Init(2 * time.Second)
	cfg := newTestConfig()
	cfg.OpenAI.BaseURL = llm.URL

	posts := []models.Post{
		{Title: "a", URL: "https://a.co/1"},
		{Title: "b", URL: "https://a.co/2"},
	}
	items := FilterPosts(context.Background(), cfg, "topic", posts)
	if len(items) != len(posts) {
		t.Fatalf("want %d judgments, got %d", len(posts), len(items))
	}
	for _, item := range items {
		if !item.Keep {
			t.Errorf("want keep-all fallback, got %v", item)
		}
	}
}

func TestFilterPostsUnparseableResponseKeepsAll(t *testing.T) {
	llm := fakeLLMServer(t, "no json here at all", http.StatusOK)
	defer llm.Close()

	httpclient.Init(2 * time.Second)
	cfg := newTestConfig()
	cfg.OpenAI.BaseURL = llm.URL

	posts := []models.Post{{Title: "a", URL: "https://a.co/1"}}
	items := FilterPosts(context.Background(), cfg, "topic", posts)
	if len(items) != 1 || !items[0].Keep {
		t.Fatalf("want keep-all fallback, got %v", items)
	}
}

func TestFilterPostsEmptyInput(t *testing.T) {
	cfg := newTestConfig()
	if items := FilterPosts(context.Background(), cfg, "topic", nil); items != nil {
		t.Fatalf("want nil for empty input, got %v", items)
	}
}
