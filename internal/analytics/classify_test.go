package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Mobile Safari/537.36"
	uaMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	uaWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

func TestClassifyDevice(t *testing.T) {
	testCases := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"iPhone is mobile", uaIPhone, DeviceMobile},
		{"Android phone is mobile", uaAndroid, DeviceMobile},
		{"iPad is tablet, never mobile", uaIPad, DeviceTablet},
		{"Android tablet marker wins over android marker", "Mozilla/5.0 (Linux; Android 13; SM-X700 Tablet)", DeviceTablet},
		{"Windows desktop", uaWindows, DeviceDesktop},
		{"Mac desktop", uaMac, DeviceDesktop},
		{"empty user agent falls back to desktop", "", DeviceDesktop},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyDevice(tc.userAgent))
		})
	}
}

func TestClassifyPlatform(t *testing.T) {
	assert.Equal(t, PlatformIOS, ClassifyPlatform(uaIPhone))
	assert.Equal(t, PlatformIOS, ClassifyPlatform(uaIPad))
	assert.Equal(t, PlatformAndroid, ClassifyPlatform(uaAndroid))
	assert.Equal(t, PlatformMac, ClassifyPlatform(uaMac))
	assert.Equal(t, PlatformWindows, ClassifyPlatform(uaWindows))
	assert.Equal(t, PlatformOther, ClassifyPlatform("curl/8.4.0"))
}

func TestClassifyTrafficSource(t *testing.T) {
	testCases := []struct {
		name        string
		referrer    string
		utmSource   string
		utmCampaign string
		category    string
		detail      string
	}{
		{"utm beats search referrer", "https://www.google.com/search", "newsletter", "spring", SourceUTMTracked, "spring"},
		{"utm without campaign falls back to source", "", "newsletter", "", SourceUTMTracked, "newsletter"},
		{"empty referrer is direct", "", "", "", SourceDirect, ""},
		{"unparseable referrer is direct", "://bad", "", "", SourceDirect, ""},
		{"google is organic search", "https://www.google.com/search?q=x", "", "", SourceOrganicSearch, "google.com"},
		{"yahoo is organic search", "https://search.yahoo.co.jp/", "", "", SourceOrganicSearch, "search.yahoo.co.jp"},
		{"twitter shortener is social", "https://t.co/abc", "", "", SourceSocial, "Twitter/X"},
		{"facebook link wrapper is social", "https://l.facebook.com/l.php", "", "", SourceSocial, "Facebook"},
		{"line is social", "https://line.me/R/", "", "", SourceSocial, "LINE"},
		{"unknown site is referral", "https://www.example.com/article", "", "", SourceReferral, "example.com"},
		{"hostname matching two platforms takes the earlier entry", "https://x.com.line.me/r", "", "", SourceSocial, "Twitter/X"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			class := ClassifyTrafficSource(tc.referrer, tc.utmSource, tc.utmCampaign)
			assert.Equal(t, tc.category, class.Category)
			assert.Equal(t, tc.detail, class.Detail)
		})
	}
}

func TestNormalizeReferrerDomain(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeReferrerDomain("https://www.example.com/path?q=1"))
	assert.Equal(t, "blog.example.com", NormalizeReferrerDomain("http://Blog.Example.com/post"))
	assert.Equal(t, DirectReferrer, NormalizeReferrerDomain(""))
	assert.Equal(t, DirectReferrer, NormalizeReferrerDomain("not a url"))
}

func TestUniqueIPCountIgnoresEmpty(t *testing.T) {
	assert.Equal(t, 3, uniqueIPCount([]string{"1.1.1.1", "1.1.1.1", "2.2.2.2", "", "2.2.2.2", "3.3.3.3"}))
	assert.Equal(t, 0, uniqueIPCount(nil))
}

func TestPercentRate(t *testing.T) {
	assert.Equal(t, 33.3, percentRate(1, 3))
	assert.Equal(t, 66.7, percentRate(2, 3))
	assert.Equal(t, 100.0, percentRate(5, 5))
	assert.Equal(t, 0.0, percentRate(3, 0))
}

func TestSortedNameCountsTruncatesDescending(t *testing.T) {
	counts := map[string]int{"a": 5, "b": 9, "c": 1, "d": 7}

	top := sortedNameCounts(counts, 3)
	assert.Len(t, top, 3)
	assert.Equal(t, NameCount{Name: "b", Count: 9}, top[0])
	assert.Equal(t, NameCount{Name: "d", Count: 7}, top[1])
	assert.Equal(t, NameCount{Name: "a", Count: 5}, top[2])

	all := sortedNameCounts(counts, 0)
	assert.Len(t, all, 4)
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 33, roundPercent(1, 3))
	assert.Equal(t, 67, roundPercent(2, 3))
	assert.Equal(t, 50, roundPercent(1, 2))
}
