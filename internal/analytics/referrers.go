package analytics

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// DirectReferrer labels visits with no usable referrer.
const DirectReferrer = "direct"

// NormalizeReferrerDomain reduces a referrer URL to its hostname with any
// leading "www." stripped. Absent or unparseable referrers map to the
// direct bucket.
func NormalizeReferrerDomain(referrer string) string {
	if referrer == "" {
		return DirectReferrer
	}
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return DirectReferrer
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// ReferrerStats lists the top referrer domains by view count.
type ReferrerStats struct {
	Referrers []DomainCount `json:"referrers"`
}

// DomainCount is the view count for one referrer domain.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// GetTopReferrers counts views per referrer domain, top 10 descending. The
// direct bucket is always present even at zero.
func GetTopReferrers(db *gorm.DB, r *timeframe.Range) (*ReferrerStats, error) {
	var referrers []string
	if err := db.Model(&tracking.PageView{}).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Pluck("referrer", &referrers).Error; err != nil {
		return nil, fmt.Errorf("error fetching referrers: %w", err)
	}

	counts := map[string]int{DirectReferrer: 0}
	for _, ref := range referrers {
		counts[NormalizeReferrerDomain(ref)]++
	}

	top := sortedNameCounts(counts, 10)
	domains := make([]DomainCount, len(top))
	for i, entry := range top {
		domains[i] = DomainCount{Domain: entry.Name, Count: entry.Count}
	}
	return &ReferrerStats{Referrers: domains}, nil
}
