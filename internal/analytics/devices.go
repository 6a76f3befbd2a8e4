package analytics

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// Device classes
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

var tabletMarkers = []string{"ipad", "tablet", "playbook", "silk"}

var mobileMarkers = []string{"mobile", "iphone", "ipod", "android", "blackberry", "opera mini", "iemobile"}

// ClassifyDevice maps a user agent to mobile, tablet, or desktop. Tablet
// markers are checked first so an iPad never counts as mobile; anything
// unmatched is desktop.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, marker := range tabletMarkers {
		if strings.Contains(ua, marker) {
			return DeviceTablet
		}
	}
	for _, marker := range mobileMarkers {
		if strings.Contains(ua, marker) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}

// DeviceBreakdown holds per-class view counts and whole-number percentages.
type DeviceBreakdown struct {
	Devices     DeviceCounts `json:"devices"`
	Percentages DeviceCounts `json:"percentages"`
}

// DeviceCounts carries one number per device class.
type DeviceCounts struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
}

// GetDeviceBreakdown classifies the user agents of page views in the range.
func GetDeviceBreakdown(db *gorm.DB, r *timeframe.Range) (*DeviceBreakdown, error) {
	var userAgents []string
	if err := db.Model(&tracking.PageView{}).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Pluck("user_agent", &userAgents).Error; err != nil {
		return nil, fmt.Errorf("error fetching user agents: %w", err)
	}

	breakdown := &DeviceBreakdown{}
	for _, ua := range userAgents {
		switch ClassifyDevice(ua) {
		case DeviceTablet:
			breakdown.Devices.Tablet++
		case DeviceMobile:
			breakdown.Devices.Mobile++
		default:
			breakdown.Devices.Desktop++
		}
	}

	total := breakdown.Devices.Mobile + breakdown.Devices.Tablet + breakdown.Devices.Desktop
	if total > 0 {
		breakdown.Percentages.Mobile = roundPercent(breakdown.Devices.Mobile, total)
		breakdown.Percentages.Tablet = roundPercent(breakdown.Devices.Tablet, total)
		breakdown.Percentages.Desktop = roundPercent(breakdown.Devices.Desktop, total)
	}
	return breakdown, nil
}

func roundPercent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}
