package analytics

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// UTMStats breaks tracked views down by source, medium, and campaign.
type UTMStats struct {
	Sources      []SourceCount   `json:"sources"`
	Mediums      []MediumCount   `json:"mediums"`
	Campaigns    []CampaignCount `json:"campaigns"`
	DirectCount  int             `json:"directCount"`
	TotalTracked int             `json:"totalTracked"`
}

// SourceCount is the view count for one utm_source value.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// MediumCount is the view count for one utm_medium value.
type MediumCount struct {
	Medium string `json:"medium"`
	Count  int    `json:"count"`
}

// CampaignCount is the view count for one utm_campaign value.
type CampaignCount struct {
	Campaign string `json:"campaign"`
	Count    int    `json:"count"`
}

// GetUTMStats counts views per UTM dimension. Views without a utm_source
// fall into DirectCount.
func GetUTMStats(db *gorm.DB, r *timeframe.Range) (*UTMStats, error) {
	var views []tracking.PageView
	if err := db.Model(&tracking.PageView{}).
		Select("utm_source", "utm_medium", "utm_campaign").
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC").
		Limit(AnalyticsRowCap).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("error fetching UTM fields: %w", err)
	}

	sourceCounts := make(map[string]int)
	mediumCounts := make(map[string]int)
	campaignCounts := make(map[string]int)
	stats := &UTMStats{}

	for _, v := range views {
		if v.UTMSource != "" {
			sourceCounts[v.UTMSource]++
			stats.TotalTracked++
		} else {
			stats.DirectCount++
		}
		if v.UTMMedium != "" {
			mediumCounts[v.UTMMedium]++
		}
		if v.UTMCampaign != "" {
			campaignCounts[v.UTMCampaign]++
		}
	}

	for _, entry := range sortedNameCounts(sourceCounts, 0) {
		stats.Sources = append(stats.Sources, SourceCount{Source: entry.Name, Count: entry.Count})
	}
	for _, entry := range sortedNameCounts(mediumCounts, 0) {
		stats.Mediums = append(stats.Mediums, MediumCount{Medium: entry.Name, Count: entry.Count})
	}
	for _, entry := range sortedNameCounts(campaignCounts, 0) {
		stats.Campaigns = append(stats.Campaigns, CampaignCount{Campaign: entry.Name, Count: entry.Count})
	}
	return stats, nil
}

// CampaignDetail is the drill-down for a single utm_campaign.
type CampaignDetail struct {
	Campaign   string      `json:"campaign"`
	TotalViews int         `json:"totalViews"`
	DailyData  []DateCount `json:"dailyData"`
	PageData   []PageCount `json:"pageData"`
}

// GetCampaignDetail aggregates the views of one campaign into a daily series
// and a page breakdown.
func GetCampaignDetail(db *gorm.DB, r *timeframe.Range, campaign string) (*CampaignDetail, error) {
	var views []tracking.PageView
	if err := db.Model(&tracking.PageView{}).
		Select("page", "created_at").
		Where("utm_campaign = ? AND created_at BETWEEN ? AND ?", campaign, r.From, r.To).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("error fetching campaign views: %w", err)
	}

	dailyCounts := make(map[string]int)
	pageCounts := make(map[string]int)
	for _, v := range views {
		dailyCounts[timeframe.DateKey(v.CreatedAt)]++
		pageCounts[v.Page]++
	}

	detail := &CampaignDetail{
		Campaign:   campaign,
		TotalViews: len(views),
		DailyData:  dateCountsFromMap(dailyCounts),
	}
	for page, count := range pageCounts {
		detail.PageData = append(detail.PageData, PageCount{Page: page, Count: count})
	}
	sort.Slice(detail.PageData, func(i, j int) bool { return detail.PageData[i].Count > detail.PageData[j].Count })
	return detail, nil
}
