package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const duckduckgoBaseURL = "https://html.duckduckgo.com"

// maxSearchResults caps how many result snippets feed the prompt.
const maxSearchResults = 8

// EventSearchClient scrapes DuckDuckGo's HTML endpoint for fresh event
// context about a venue. Results are formatted as plain text blocks the
// prompt builder can embed directly.
type EventSearchClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewEventSearchClient() *EventSearchClient {
	return &EventSearchClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    duckduckgoBaseURL,
	}
}

// NewEventSearchClientWithBaseURL is used by tests to point at a fake server.
func NewEventSearchClientWithBaseURL(baseURL string) *EventSearchClient {
	c := NewEventSearchClient()
	c.baseURL = baseURL
	return c
}

// Search returns up to maxSearchResults "Title/Snippet" blocks for the venue,
// or an empty string when nothing useful was found.
func (c *EventSearchClient) Search(ctx context.Context, venue string) (string, error) {
	query := fmt.Sprintf("%s event schedule today", venue)
	u := fmt.Sprintf("%s/html/?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("livesearch: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("livesearch: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("livesearch: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("livesearch: parse html: %w", err)
	}

	titles := textByClass(doc, "result__title")
	snippets := textByClass(doc, "result__snippet")

	var sb strings.Builder
	for i := 0; i < len(titles) && i < maxSearchResults; i++ {
		snippet := ""
		if i < len(snippets) {
			snippet = snippets[i]
		}
		if titles[i] == "" && snippet == "" {
			continue
		}
		fmt.Fprintf(&sb, "Title: %s\nSnippet: %s\n---\n", titles[i], snippet)
	}
	return sb.String(), nil
}

// textByClass collects the flattened text of every element whose class
// attribute contains the given class name, in document order.
func textByClass(root *html.Node, class string) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, strings.TrimSpace(nodeText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
