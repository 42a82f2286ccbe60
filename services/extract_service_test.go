package services

import (
	"strings"
	"testing"
)

func TestDomainOf(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/pricing", "example.com"},
		{"http://example.com", "example.com"},
		{"example.com/about", "example.com"},
		{"https://sub.example.co.uk/a/b", "sub.example.co.uk"},
	}
	for _, tc := range cases {
		if got := domainOf(tc.in); got != tc.want {
			t.Errorf("domainOf(%q): want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSummarizePage(t *testing.T) {
	html := `<html><head>
		<title>Acme CRM</title>
		<meta name="description" content="CRM for small sales teams">
	</head><body>
		<h1>Close more deals</h1>
		<h2>Pipeline tracking</h2>
		<h2>Email automation</h2>
	</body></html>`

	got := summarizePage(strings.NewReader(html))
	for _, want := range []string{
		"Title: Acme CRM",
		"Description: CRM for small sales teams",
		"Headline: Close more deals",
		"Sections: Pipeline tracking; Email automation",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummarizePageOGFallback(t *testing.T) {
	html := `<html><head>
		<meta property="og:description" content="From the og tag">
	</head><body></body></html>`

	got := summarizePage(strings.NewReader(html))
	if !strings.Contains(got, "Description: From the og tag") {
		t.Errorf("want og:description fallback, got:\n%s", got)
	}
}

func TestSummarizePageEmptyDocument(t *testing.T) {
	if got := summarizePage(strings.NewReader("<html></html>")); got != "" {
		t.Errorf("want empty summary, got %q", got)
	}
}
