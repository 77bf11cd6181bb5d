// Command diagnose_feeds probes every official_rss/rsshub source in the
// configured site list and reports which ones are healthy, redirected, or
// broken. It reads sources from CONFIG_PATH instead of a database, since
// this engine's site configuration is a flat JSON file, not a table.
package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"newsnexus/internal/config"
	"newsnexus/internal/domain/entity"
)

// FeedDiagnostic is the probe result for a single source.
type FeedDiagnostic struct {
	SiteDomain    string `json:"site_domain"`
	URL           string `json:"url"`
	Status        string `json:"status"` // "OK", "REDIRECT", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT", "REQUEST_ERROR", "READ_ERROR"
	HTTPCode      int    `json:"http_code"`
	ItemCount     int    `json:"item_count"`
	LatestDate    string `json:"latest_date"`
	ErrorMessage  string `json:"error_message,omitempty"`
	FeedType      string `json:"feed_type"` // "RSS", "ATOM", "UNKNOWN"
	RedirectURL   string `json:"redirect_url,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			PubDate string `xml:"pubDate"`
			Link    string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Entries []struct {
		Title   string `xml:"title"`
		Updated string `xml:"updated"`
		Link    struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	sites, err := config.LoadSites(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load site configuration: %v", err)
	}

	var feeds []FeedDiagnostic
	for _, site := range sites {
		for _, src := range site.Sources {
			if src.Type != entity.OfficialRSS && src.Type != entity.RSSHub {
				continue
			}
			log.Printf("Diagnosing: %s [%s]", site.Domain, src.Type)
			diag := diagnoseFeed(site.Domain, src.URL, 30*time.Second)
			feeds = append(feeds, diag)
			time.Sleep(500 * time.Millisecond)
		}
	}

	generateReport(feeds)
	generateJSONReport(feeds)
}

func diagnoseFeed(domain, url string, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{SiteDomain: domain, URL: url}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "NewsNexus-Diagnostic/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("request timeout after %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	diag.ContentLength = resp.ContentLength

	if resp.Request.URL.String() != url {
		diag.RedirectURL = resp.Request.URL.String()
		diag.Status = "REDIRECT"
	}

	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	itemCount, latestDate, feedType, parseErr := parseFeed(body)
	if parseErr != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = parseErr.Error()
		diag.FeedType = feedType
		return diag
	}

	diag.ItemCount = itemCount
	diag.LatestDate = latestDate
	diag.FeedType = feedType

	if itemCount == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "feed has no items"
		return diag
	}

	if diag.RedirectURL == "" {
		diag.Status = "OK"
	}
	return diag
}

func parseFeed(body []byte) (itemCount int, latestDate string, feedType string, err error) {
	var rss rssDoc
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return len(rss.Channel.Items), rss.Channel.Items[0].PubDate, "RSS", nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		return len(atom.Entries), atom.Entries[0].Updated, "ATOM", nil
	}

	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return 0, "", "UNKNOWN", fmt.Errorf("failed to parse as RSS or Atom: %s", preview)
}

func generateReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.txt")
	if err != nil {
		log.Printf("failed to create report file: %v", err)
		return
	}
	defer func() { _ = f.Close() }()

	statusCount := make(map[string]int)
	var okCount, errorCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Status == "OK" || d.Status == "REDIRECT" {
			okCount++
		} else {
			errorCount++
		}
	}

	_, _ = fmt.Fprintf(f, "NewsNexus Feed Diagnostic Report\n")
	_, _ = fmt.Fprintf(f, "Generated: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(f, "Total Sources: %d\n\n", len(diagnostics))

	_, _ = fmt.Fprintf(f, "SUMMARY:\n")
	if len(diagnostics) > 0 {
		_, _ = fmt.Fprintf(f, "  Working: %d (%.1f%%)\n", okCount, float64(okCount)/float64(len(diagnostics))*100)
		_, _ = fmt.Fprintf(f, "  Broken:  %d (%.1f%%)\n", errorCount, float64(errorCount)/float64(len(diagnostics))*100)
	}
	for status, count := range statusCount {
		_, _ = fmt.Fprintf(f, "  %s: %d\n", status, count)
	}

	_, _ = fmt.Fprintf(f, "\nBROKEN FEEDS (%d):\n", errorCount)
	for _, d := range diagnostics {
		if d.Status == "OK" || d.Status == "REDIRECT" {
			continue
		}
		_, _ = fmt.Fprintf(f, "  %s %s: %s (%s)\n", d.SiteDomain, d.URL, d.Status, d.ErrorMessage)
	}

	log.Println("text report generated: feed_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.json")
	if err != nil {
		log.Printf("failed to create JSON report: %v", err)
		return
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("failed to write JSON report: %v", err)
		return
	}
	log.Println("JSON report generated: feed_diagnostic_report.json")
}
