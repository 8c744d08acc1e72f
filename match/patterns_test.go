package match

import (
	"testing"

	"github.com/hazyhaar/mapsieve/snapshot"
)

func TestExtractPhones_Mobile(t *testing.T) {
	// WHAT: a mainland mobile number embedded in surrounding text.
	// WHY: detail pages render phones inline with labels; the matcher
	// must find them without anchoring.
	got := ExtractPhones("电话 13812345678 欢迎致电")
	if len(got) != 1 || got[0] != "13812345678" {
		t.Errorf("phones = %v, want [13812345678]", got)
	}
}

func TestExtractPhones_LandlineWithSeparator(t *testing.T) {
	// WHAT: landline with an area-code dash.
	// WHY: normalization must strip separators so the same number in
	// different renderings dedups to one entry.
	got := ExtractPhones("订购热线:0871-1234567")
	if len(got) != 1 || got[0] != "08711234567" {
		t.Errorf("phones = %v, want [08711234567]", got)
	}
}

func TestExtractPhones_Dedup(t *testing.T) {
	got := ExtractPhones("13812345678 或 13812345678")
	if len(got) != 1 {
		t.Errorf("phones = %v, want one entry", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"138-1234-5678", "13812345678", true},
		{"0871-1234567", "08711234567", true},
		{"123", "", false},
		{"12345678901234", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizePhone(%q) = %q,%v, want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchesClock(t *testing.T) {
	// WHAT: bare clock readings versus time-bearing prose.
	// WHY: the status-bar clock is the classic false positive for a
	// name; only a full-string match counts so business-hours text is
	// not vetoed.
	tests := []struct {
		in   string
		want bool
	}{
		{"12:12", true},
		{"1:05", true},
		{" 12:12 ", true},
		{"营业至22:00", false},
		{"09:00-22:00", false},
	}
	for _, tt := range tests {
		if got := MatchesClock(tt.in); got != tt.want {
			t.Errorf("MatchesClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchesTimeRange(t *testing.T) {
	if !MatchesTimeRange("营业时间 09:00-22:00") {
		t.Error("dash range should match")
	}
	if !MatchesTimeRange("09:00~22:00") {
		t.Error("tilde range should match")
	}
	if MatchesTimeRange("12:12") {
		t.Error("bare clock is not a range")
	}
}

func TestExtractRating(t *testing.T) {
	v, ok := ExtractRating("评分 4.8分 很好")
	if !ok || v != 4.8 {
		t.Errorf("rating = %v,%v, want 4.8,true", v, ok)
	}
	if _, ok := ExtractRating("4.8公里"); ok {
		t.Error("distance should not parse as rating")
	}
}

func TestIsNumberWithUnit(t *testing.T) {
	// WHAT: bare number+unit strings.
	// WHY: recommendation rows expose a lone distance or ETA as their
	// only text; a candidate whose name is such a string is noise.
	tests := []struct {
		in   string
		want bool
	}{
		{"4.5公里", true},
		{"400m", true},
		{"1.2km", true},
		{"15分钟", true},
		{"斗南花卉市场", false},
		{"距离4.5公里", false},
	}
	for _, tt := range tests {
		if got := IsNumberWithUnit(tt.in); got != tt.want {
			t.Errorf("IsNumberWithUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsPureNumericOrPunct(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12:12", true},
		{"4.8", true},
		{"¥35", true},
		{"", true},
		{"高德红包", false},
		{"A12号", false},
	}
	for _, tt := range tests {
		if got := IsPureNumericOrPunct(tt.in); got != tt.want {
			t.Errorf("IsPureNumericOrPunct(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsTagLine(t *testing.T) {
	if !IsTagLine("收录3年") {
		t.Error("收录3年 is a tag line")
	}
	if !IsTagLine("收录12个月") {
		t.Error("收录12个月 is a tag line")
	}
	if IsTagLine("斗南花卉收藏馆") {
		t.Error("name containing 收 is not a tag line")
	}
}

func TestCountKeywords(t *testing.T) {
	n := CountKeywords("全国鲜花速递 上门配送 保证新鲜", DefaultProductKeywords)
	if n < 3 {
		t.Errorf("keyword count = %d, want >= 3", n)
	}
}

func TestWidthRatio(t *testing.T) {
	b := snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 731}
	s := snapshot.ScreenContext{Width: 1080, Height: 2400}
	got := WidthRatio(b, s)
	if got < 0.93 || got > 0.95 {
		t.Errorf("width ratio = %f, want ~0.94", got)
	}
	if WidthRatio(b, snapshot.ScreenContext{}) != 0 {
		t.Error("unknown screen should give ratio 0")
	}
}

func TestInVerticalBand(t *testing.T) {
	b := snapshot.Rect{X1: 0, Y1: 533, X2: 100, Y2: 731}
	if !InVerticalBand(b, 500, 1800) {
		t.Error("card inside the band")
	}
	if InVerticalBand(b, 600, 1800) {
		t.Error("y1 above band floor")
	}
	if InVerticalBand(b, 500, 700) {
		t.Error("y2 below band ceiling")
	}
}
