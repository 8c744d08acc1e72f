package detail

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hazyhaar/mapsieve/snapshot"
)

var screen = snapshot.ScreenContext{Width: 1080, Height: 2400}

func text(s string, b snapshot.Rect) *snapshot.ViewNode {
	return &snapshot.ViewNode{Class: "android.widget.TextView", Text: s, Bounds: b}
}

func group(kids ...*snapshot.ViewNode) *snapshot.ViewNode {
	return &snapshot.ViewNode{
		Class:    "android.widget.FrameLayout",
		Bounds:   snapshot.Rect{X2: 1080, Y2: 2400},
		Children: kids,
	}
}

// detailTree mirrors a real detail screen: status-bar clock, markup
// title, rating row, address and hours in the info zone, a plain and a
// font-wrapped phone, and the action buttons at the bottom.
func detailTree() *snapshot.ViewNode {
	return group(
		text("12:12", snapshot.Rect{X1: 40, Y1: 0, X2: 190, Y2: 96}),
		text(`<font size="42">斗南花卉市场</font>`, snapshot.Rect{X1: 48, Y1: 260, X2: 700, Y2: 340}),
		text("鲜花批发", snapshot.Rect{X1: 48, Y1: 350, X2: 400, Y2: 400}),
		text("4.8分 2039条评价", snapshot.Rect{X1: 48, Y1: 420, X2: 500, Y2: 470}),
		text("地址：昆明市呈贡区斗南镇花卉大道12号", snapshot.Rect{X1: 48, Y1: 900, X2: 900, Y2: 970}),
		text("营业时间 08:00-18:00", snapshot.Rect{X1: 48, Y1: 1000, X2: 600, Y2: 1050}),
		text("13812345678", snapshot.Rect{X1: 48, Y1: 1100, X2: 400, Y2: 1150}),
		text(`<font size="28">0871-1234567</font>`, snapshot.Rect{X1: 48, Y1: 1160, X2: 400, Y2: 1210}),
		text("拨打电话", snapshot.Rect{X1: 90, Y1: 2200, X2: 350, Y2: 2280}),
		text("到这去", snapshot.Rect{X1: 400, Y1: 2200, X2: 650, Y2: 2280}),
	)
}

// WHAT: a fully populated detail screen yields every field.
// WHY: the field matchers run independently; one screen should fill
// name, phones, address, hours and rating in a single pass.
func TestExtract_FullRecord(t *testing.T) {
	rec := Extract(detailTree(), screen, Config{})

	if rec.Name != "斗南花卉市场" {
		t.Fatalf("Name = %q, want 斗南花卉市场", rec.Name)
	}
	want := []string{"08711234567", "13812345678"}
	if len(rec.Phones) != len(want) {
		t.Fatalf("Phones = %v, want %v", rec.Phones, want)
	}
	for i := range want {
		if rec.Phones[i] != want[i] {
			t.Fatalf("Phones = %v, want %v", rec.Phones, want)
		}
	}
	if rec.Address != "昆明市呈贡区斗南镇花卉大道12号" {
		t.Fatalf("Address = %q (label not trimmed?)", rec.Address)
	}
	if rec.Hours != "08:00-18:00" {
		t.Fatalf("Hours = %q, want 08:00-18:00", rec.Hours)
	}
	if rec.Rating != 4.8 {
		t.Fatalf("Rating = %v, want 4.8", rec.Rating)
	}
	if !rec.Usable() {
		t.Fatal("record with phone and full address should be usable")
	}
	if !strings.Contains(rec.RawText, "斗南花卉市场") {
		t.Fatal("RawText should keep the raw screen text")
	}
}

// WHAT: the status-bar clock is never extracted as a name.
// WHY: "12:12" at the top of the screen is the strongest short text on
// many detail dumps; with no other candidate the extractor must return
// an absent name rather than the time string.
func TestExtract_StatusBarClockNeverName(t *testing.T) {
	root := group(
		text("12:12", snapshot.Rect{X1: 40, Y1: 0, X2: 190, Y2: 96}),
		text("13812345678", snapshot.Rect{X1: 48, Y1: 1100, X2: 400, Y2: 1150}),
		text("拨打电话", snapshot.Rect{X1: 90, Y1: 2200, X2: 350, Y2: 2280}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Name != "" {
		t.Fatalf("Name = %q, want absent", rec.Name)
	}
	if len(rec.Phones) != 1 {
		t.Fatalf("Phones = %v, want the one number", rec.Phones)
	}
}

// WHAT: clock-shaped text is vetoed wherever it appears.
// WHY: the veto is on the pattern, not only on the status-bar band;
// a stray HH:MM row mid-screen must not outrank the real title.
func TestExtract_ClockInsideBandStillVetoed(t *testing.T) {
	root := group(
		text("10:30", snapshot.Rect{X1: 48, Y1: 600, X2: 200, Y2: 660}),
		text("春城鲜花港", snapshot.Rect{X1: 48, Y1: 700, X2: 400, Y2: 760}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Name != "春城鲜花港" {
		t.Fatalf("Name = %q, want 春城鲜花港", rec.Name)
	}
}

// WHAT: the top-band veto holds even when the candidate floor is
// disabled.
// WHY: NameBandTop is tunable but the status-bar region is not; a
// plausible name rendered above y=100 is system chrome by definition.
func TestResolveName_TopBandVetoIndependentOfFloor(t *testing.T) {
	cfg := Config{NameBandTop: -1}
	cfg.defaults()

	inBar := group(text("春城鲜花港", snapshot.Rect{X1: 48, Y1: 50, X2: 400, Y2: 110}))
	if got := resolveName(inBar, cfg); got != "" {
		t.Fatalf("name above the veto band = %q, want none", got)
	}

	below := group(text("春城鲜花港", snapshot.Rect{X1: 48, Y1: 150, X2: 400, Y2: 210}))
	if got := resolveName(below, cfg); got != "春城鲜花港" {
		t.Fatalf("name below the veto band = %q, want 春城鲜花港", got)
	}
}

// WHAT: among font-styled candidates the largest font wins.
// WHY: detail layouts render the title in the biggest type; vertical
// position only breaks ties.
func TestResolveName_FontSizeRanksFirst(t *testing.T) {
	root := group(
		text(`<font size="34">花语小筑</font>`, snapshot.Rect{X1: 48, Y1: 300, X2: 400, Y2: 360}),
		text(`<font size="42">昆明国际花卉拍卖中心</font>`, snapshot.Rect{X1: 48, Y1: 500, X2: 800, Y2: 560}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Name != "昆明国际花卉拍卖中心" {
		t.Fatalf("Name = %q, want the larger-font candidate", rec.Name)
	}
}

// WHAT: a resource id naming a title field outranks font styling.
// WHY: when the app labels its own title widget, that beats any
// typographic guess.
func TestResolveName_ResourceIDHint(t *testing.T) {
	labeled := &snapshot.ViewNode{
		Class:      "android.widget.TextView",
		ResourceID: "com.autonavi.minimap:id/shop_name",
		Text:       "云上花田",
		Bounds:     snapshot.Rect{X1: 48, Y1: 800, X2: 400, Y2: 860},
	}
	root := group(
		text(`<font size="34">花语小筑</font>`, snapshot.Rect{X1: 48, Y1: 300, X2: 400, Y2: 360}),
		labeled,
	)
	rec := Extract(root, screen, Config{})
	if rec.Name != "云上花田" {
		t.Fatalf("Name = %q, want the id-labeled candidate", rec.Name)
	}
}

// WHAT: metric rows, photo counters, status words and chrome labels
// are all rejected, leaving the name absent.
// WHY: every one of these is short, prominent text that a naive
// largest-text rule would pick.
func TestResolveName_ChromeAndMetadataVetoed(t *testing.T) {
	root := group(
		text("照片128", snapshot.Rect{X1: 48, Y1: 300, X2: 300, Y2: 360}),
		text("4.8分", snapshot.Rect{X1: 48, Y1: 400, X2: 200, Y2: 460}),
		text("营业中", snapshot.Rect{X1: 48, Y1: 500, X2: 200, Y2: 560}),
		text("导航到店", snapshot.Rect{X1: 48, Y1: 600, X2: 300, Y2: 660}),
		text("500米", snapshot.Rect{X1: 48, Y1: 700, X2: 200, Y2: 760}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Name != "" {
		t.Fatalf("Name = %q, want none", rec.Name)
	}
}

// WHAT: an in-zone address beats an earlier out-of-zone one.
// WHY: banner copy above the fold repeats branch addresses; the info
// zone in the upper-middle of the screen carries the listing's own.
func TestExtract_AddressZonePreference(t *testing.T) {
	root := group(
		text("昆明市五华区青年路100号", snapshot.Rect{X1: 48, Y1: 300, X2: 800, Y2: 360}),
		text("昆明市呈贡区斗南镇花卉大道12号", snapshot.Rect{X1: 48, Y1: 1000, X2: 900, Y2: 1060}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Address != "昆明市呈贡区斗南镇花卉大道12号" {
		t.Fatalf("Address = %q, want the info-zone row", rec.Address)
	}
}

// WHAT: a stall code counts as an address but not toward usability.
// WHY: "A12-34号" locates a market stall precisely yet is too short to
// stand alone; the record is kept for later enrichment, just not
// flagged usable.
func TestExtract_StallCodeAddressNotUsable(t *testing.T) {
	root := group(
		text("13812345678", snapshot.Rect{X1: 48, Y1: 1100, X2: 400, Y2: 1150}),
		text("A12-34号", snapshot.Rect{X1: 48, Y1: 1000, X2: 300, Y2: 1060}),
	)
	rec := Extract(root, screen, Config{})
	if rec.Address != "A12-34号" {
		t.Fatalf("Address = %q, want A12-34号", rec.Address)
	}
	if len(rec.Phones) != 1 {
		t.Fatalf("Phones = %v, want one", rec.Phones)
	}
	if rec.Usable() {
		t.Fatal("seven-rune address must not make the record usable")
	}
}

func TestRecord_Usable(t *testing.T) {
	long := "云南省昆明市呈贡区斗南街道花卉大道12号花卉交易市场3号馆"
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"phone and long address", Record{Phones: []string{"13812345678"}, Address: long}, true},
		{"phone and stall code", Record{Phones: []string{"13812345678"}, Address: "A12-34号"}, false},
		{"address without phone", Record{Address: long}, false},
		{"empty", Record{}, false},
	}
	for _, tt := range tests {
		if got := tt.rec.Usable(); got != tt.want {
			t.Errorf("%s: Usable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtract_RawTextBounded(t *testing.T) {
	rec := Extract(detailTree(), screen, Config{RawTextLimit: 10})
	if n := utf8.RuneCountInString(rec.RawText); n > 10 {
		t.Fatalf("RawText is %d runes, want at most 10", n)
	}
}

func TestExtract_NilRoot(t *testing.T) {
	rec := Extract(nil, screen, Config{})
	if rec.Usable() {
		t.Fatal("nil root must yield an unusable record")
	}
	if rec.Name != "" || len(rec.Phones) != 0 || rec.Address != "" {
		t.Fatalf("nil root yielded %+v, want zero record", rec)
	}
}
