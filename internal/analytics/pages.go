package analytics

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// PageStats lists view counts per page label, descending.
type PageStats struct {
	Pages []PageCount `json:"pages"`
}

// GetPageStats counts views per page label inside the range.
func GetPageStats(db *gorm.DB, r *timeframe.Range) (*PageStats, error) {
	var pages []string
	if err := db.Model(&tracking.PageView{}).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Pluck("page", &pages).Error; err != nil {
		return nil, fmt.Errorf("error fetching pages: %w", err)
	}

	counts := make(map[string]int)
	for _, page := range pages {
		counts[page]++
	}

	stats := &PageStats{Pages: make([]PageCount, 0, len(counts))}
	for page, count := range counts {
		stats.Pages = append(stats.Pages, PageCount{Page: page, Count: count})
	}
	sort.Slice(stats.Pages, func(i, j int) bool { return stats.Pages[i].Count > stats.Pages[j].Count })
	return stats, nil
}
