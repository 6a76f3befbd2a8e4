package analytics

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// LifetimeTotals are the all-time counters for the overview.
type LifetimeTotals struct {
	Views     int
	UniqueIPs int
	Diagnoses int
}

// GetLifetimeTotals counts every view, distinct visitor IP, and diagnosis.
func GetLifetimeTotals(db *gorm.DB) (*LifetimeTotals, error) {
	totals := &LifetimeTotals{}

	var views int64
	if err := db.Model(&tracking.PageView{}).Count(&views).Error; err != nil {
		return nil, fmt.Errorf("error counting page views: %w", err)
	}
	totals.Views = int(views)

	var ips []string
	if err := db.Model(&tracking.PageView{}).Pluck("ip", &ips).Error; err != nil {
		return nil, fmt.Errorf("error fetching visitor IPs: %w", err)
	}
	totals.UniqueIPs = uniqueIPCount(ips)

	var diagnoses int64
	if err := db.Model(&tracking.DiagnosisResult{}).Count(&diagnoses).Error; err != nil {
		return nil, fmt.Errorf("error counting diagnoses: %w", err)
	}
	totals.Diagnoses = int(diagnoses)

	return totals, nil
}

// TodayTotals are the counters for the current JST day.
type TodayTotals struct {
	Views     int
	UniqueIPs int
	Diagnoses int
}

// GetTodayTotals counts views, distinct IPs, and diagnoses for today in JST.
func GetTodayTotals(db *gorm.DB) (*TodayTotals, error) {
	today := timeframe.TodayRange()
	totals := &TodayTotals{}

	var err error
	if totals.Views, err = countRows(db, &tracking.PageView{}, today); err != nil {
		return nil, err
	}

	var ips []string
	if err := db.Model(&tracking.PageView{}).
		Where("created_at BETWEEN ? AND ?", today.From, today.To).
		Pluck("ip", &ips).Error; err != nil {
		return nil, fmt.Errorf("error fetching today's visitor IPs: %w", err)
	}
	totals.UniqueIPs = uniqueIPCount(ips)

	if totals.Diagnoses, err = countRows(db, &tracking.DiagnosisResult{}, today); err != nil {
		return nil, err
	}
	return totals, nil
}

// DailySeries are the recent per-day view and diagnosis series.
type DailySeries struct {
	Views     []DateCount
	Diagnoses []DateCount
}

// GetDailySeries buckets views and diagnoses by JST date over the range.
func GetDailySeries(db *gorm.DB, r *timeframe.Range) (*DailySeries, error) {
	viewStamps, err := fetchCreatedAt(db, &tracking.PageView{}, r, DashboardSeriesRowCap)
	if err != nil {
		return nil, err
	}
	diagStamps, err := fetchCreatedAt(db, &tracking.DiagnosisResult{}, r, DashboardSeriesRowCap)
	if err != nil {
		return nil, err
	}
	return &DailySeries{
		Views:     countByDate(viewStamps),
		Diagnoses: countByDate(diagStamps),
	}, nil
}

// GetLifetimeTypeStats counts all diagnoses per type, descending.
func GetLifetimeTypeStats(db *gorm.DB) ([]TypeStat, error) {
	return lifetimeTypeStats(db)
}

// PeriodStats is the range-scoped analytics overview.
type PeriodStats struct {
	Period          Period      `json:"period"`
	PeriodViews     int         `json:"periodViews"`
	PeriodUU        int         `json:"periodUU"`
	PeriodDiagnosis int         `json:"periodDiagnosis"`
	DailyViews      []DateCount `json:"dailyViews"`
	DailyUU         []DateCount `json:"dailyUU"`
	DailyDiagnosis  []DateCount `json:"dailyDiagnosis"`
	TypeStats       []TypeStat  `json:"typeStats"`
}

// Period echoes the resolved JST date bounds of a query.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GetPeriodStats computes the period overview: PV/UU/diagnosis totals plus
// daily views, daily unique visitors, daily diagnoses, and type counts.
func GetPeriodStats(db *gorm.DB, r *timeframe.Range) (*PeriodStats, error) {
	stats := &PeriodStats{Period: Period{Start: r.StartDate, End: r.EndDate}}

	var err error
	if stats.PeriodViews, err = countRows(db, &tracking.PageView{}, r); err != nil {
		return nil, err
	}
	if stats.PeriodDiagnosis, err = countRows(db, &tracking.DiagnosisResult{}, r); err != nil {
		return nil, err
	}

	var views []tracking.PageView
	if err := db.Model(&tracking.PageView{}).
		Select("created_at", "ip").
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC").
		Limit(AnalyticsRowCap).
		Find(&views).Error; err != nil {
		return nil, fmt.Errorf("error fetching page views: %w", err)
	}

	dailyViews := make(map[string]int)
	dailyIPs := make(map[string]map[string]struct{})
	allIPs := make([]string, 0, len(views))
	for _, v := range views {
		date := timeframe.DateKey(v.CreatedAt)
		dailyViews[date]++
		if v.IP != "" {
			if dailyIPs[date] == nil {
				dailyIPs[date] = make(map[string]struct{})
			}
			dailyIPs[date][v.IP] = struct{}{}
		}
		allIPs = append(allIPs, v.IP)
	}
	stats.PeriodUU = uniqueIPCount(allIPs)
	stats.DailyViews = dateCountsFromMap(dailyViews)
	stats.DailyUU = make([]DateCount, 0, len(dailyIPs))
	for date, ips := range dailyIPs {
		stats.DailyUU = append(stats.DailyUU, DateCount{Date: date, Count: len(ips)})
	}
	sort.Slice(stats.DailyUU, func(i, j int) bool { return stats.DailyUU[i].Date < stats.DailyUU[j].Date })

	var diagnoses []tracking.DiagnosisResult
	if err := db.Model(&tracking.DiagnosisResult{}).
		Select("created_at", "type_code", "type_name").
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC").
		Limit(AnalyticsRowCap).
		Find(&diagnoses).Error; err != nil {
		return nil, fmt.Errorf("error fetching diagnoses: %w", err)
	}

	dailyDiagnosis := make(map[string]int)
	typeStats := make(map[string]*TypeStat)
	for _, d := range diagnoses {
		dailyDiagnosis[timeframe.DateKey(d.CreatedAt)]++
		if typeStats[d.TypeCode] == nil {
			typeStats[d.TypeCode] = &TypeStat{TypeCode: d.TypeCode, TypeName: d.TypeName}
		}
		typeStats[d.TypeCode].Count++
	}
	stats.DailyDiagnosis = dateCountsFromMap(dailyDiagnosis)
	stats.TypeStats = sortedTypeStats(typeStats)

	return stats, nil
}

func lifetimeTypeStats(db *gorm.DB) ([]TypeStat, error) {
	var rows []tracking.DiagnosisResult
	if err := db.Model(&tracking.DiagnosisResult{}).
		Select("type_code", "type_name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching diagnosis types: %w", err)
	}

	stats := make(map[string]*TypeStat)
	for _, row := range rows {
		if stats[row.TypeCode] == nil {
			stats[row.TypeCode] = &TypeStat{TypeCode: row.TypeCode, TypeName: row.TypeName}
		}
		stats[row.TypeCode].Count++
	}
	return sortedTypeStats(stats), nil
}

func sortedTypeStats(stats map[string]*TypeStat) []TypeStat {
	result := make([]TypeStat, 0, len(stats))
	for _, s := range stats {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

func dateCountsFromMap(counts map[string]int) []DateCount {
	series := make([]DateCount, 0, len(counts))
	for date, count := range counts {
		series = append(series, DateCount{Date: date, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
