package analytics

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// Traffic source categories, in classification priority order.
const (
	SourceUTMTracked    = "utm_tracked"
	SourceDirect        = "direct"
	SourceOrganicSearch = "organic_search"
	SourceSocial        = "social"
	SourceReferral      = "referral"
)

var searchEngines = []string{"google", "yahoo", "bing", "duckduckgo", "baidu"}

// socialSites maps known social hostnames to display names, checked in
// order so classification is deterministic. Matched by substring so
// link-wrapper subdomains (l.facebook.com, lm.instagram.com) fall into the
// same platform.
var socialSites = []struct {
	domain   string
	platform string
}{
	{"twitter.com", "Twitter/X"},
	{"t.co", "Twitter/X"},
	{"x.com", "Twitter/X"},
	{"instagram.com", "Instagram"},
	{"facebook.com", "Facebook"},
	{"line.me", "LINE"},
	{"lin.ee", "LINE"},
	{"tiktok.com", "TikTok"},
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
}

// SourceClass is the classification of a single view: the category plus the
// detail key counted under it (campaign, domain, or platform name).
type SourceClass struct {
	Category string
	Detail   string
}

// ClassifyTrafficSource runs the priority cascade: UTM tracking beats
// everything, then direct, search engines, social platforms, and finally
// generic referral. Unparseable referrers count as direct.
func ClassifyTrafficSource(referrer, utmSource, utmCampaign string) SourceClass {
	if utmSource != "" {
		detail := utmCampaign
		if detail == "" {
			detail = utmSource
		}
		return SourceClass{Category: SourceUTMTracked, Detail: detail}
	}

	if referrer == "" {
		return SourceClass{Category: SourceDirect}
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return SourceClass{Category: SourceDirect}
	}
	domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	for _, engine := range searchEngines {
		if strings.Contains(domain, engine) {
			return SourceClass{Category: SourceOrganicSearch, Detail: domain}
		}
	}

	for _, site := range socialSites {
		if strings.Contains(domain, site.domain) {
			return SourceClass{Category: SourceSocial, Detail: site.platform}
		}
	}

	return SourceClass{Category: SourceReferral, Detail: domain}
}

// Platform classes for the 5-way split on the traffic-sources view.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformMac     = "pc_mac"
	PlatformWindows = "pc_windows"
	PlatformOther   = "other"
)

// ClassifyPlatform splits user agents into ios / android / mac / windows /
// other. Order matters: iPads carry both "ipad" and "macintosh"-free UAs, so
// iOS is tested before the desktop classes.
func ClassifyPlatform(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return PlatformIOS
	case strings.Contains(ua, "android"):
		return PlatformAndroid
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		return PlatformMac
	case strings.Contains(ua, "windows"):
		return PlatformWindows
	default:
		return PlatformOther
	}
}

// TrafficSourceStats is the full traffic-source view: total views, category
// buckets with detail breakdowns, and the platform split.
type TrafficSourceStats struct {
	Total   int                      `json:"total"`
	Sources map[string]*SourceBucket `json:"sources"`
	Devices map[string]*PlatformStat `json:"devices"`
}

// SourceBucket is one traffic-source category with its top detail entries.
type SourceBucket struct {
	Count   int         `json:"count"`
	Label   string      `json:"label"`
	Details []NameCount `json:"details"`
}

// PlatformStat is the count and whole-number percentage for one platform.
type PlatformStat struct {
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// GetTrafficSources classifies every view in the range by source category
// and platform. Detail lists are top 10 by count.
func GetTrafficSources(db *gorm.DB, r *timeframe.Range) (*TrafficSourceStats, error) {
	var views []tracking.PageView
	if err := db.Model(&tracking.PageView{}).
		Select("referrer", "utm_source", "utm_medium", "utm_campaign", "user_agent").
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("error fetching page views: %w", err)
	}

	sources := map[string]*SourceBucket{
		SourceOrganicSearch: {Label: "Organic search", Details: []NameCount{}},
		SourceSocial:        {Label: "Social", Details: []NameCount{}},
		SourceUTMTracked:    {Label: "Tracked links", Details: []NameCount{}},
		SourceReferral:      {Label: "Referral", Details: []NameCount{}},
		SourceDirect:        {Label: "Direct", Details: []NameCount{}},
	}
	details := map[string]map[string]int{
		SourceOrganicSearch: {},
		SourceSocial:        {},
		SourceUTMTracked:    {},
		SourceReferral:      {},
	}
	platforms := map[string]*PlatformStat{
		PlatformIOS:     {},
		PlatformAndroid: {},
		PlatformMac:     {},
		PlatformWindows: {},
		PlatformOther:   {},
	}

	for _, v := range views {
		platforms[ClassifyPlatform(v.UserAgent)].Count++

		class := ClassifyTrafficSource(v.Referrer, v.UTMSource, v.UTMCampaign)
		sources[class.Category].Count++
		if class.Detail != "" {
			details[class.Category][class.Detail]++
		}
	}

	for category, counts := range details {
		sources[category].Details = sortedNameCounts(counts, 10)
	}

	total := len(views)
	if total > 0 {
		for _, stat := range platforms {
			stat.Percent = roundPercent(stat.Count, total)
		}
	}

	return &TrafficSourceStats{
		Total:   total,
		Sources: sources,
		Devices: platforms,
	}, nil
}
