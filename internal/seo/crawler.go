package seo

import "strings"

var crawlerKeywords = []string{"bot", "crawler", "spider", "pinterest", "facebook", "twitter", "telegram"}

// IsCrawler reports whether a user agent belongs to a search engine or link
// preview fetcher. It is a heuristic: unknown crawlers are treated as browsers.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, keyword := range crawlerKeywords {
		if strings.Contains(ua, keyword) {
			return true
		}
	}
	return false
}
