package cards

import (
	"testing"

	"github.com/hazyhaar/mapsieve/snapshot"
)

func nameCfg() Config {
	cfg := Config{}
	cfg.defaults()
	return cfg
}

func TestExtractName_MarkupWins(t *testing.T) {
	// Markup beats an earlier plain run: the wrapped title is the
	// high-trust channel even when it renders lower in the card.
	card := &snapshot.ViewNode{
		Bounds: snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 731},
		Children: []*snapshot.ViewNode{
			{Text: "春城好店", Bounds: snapshot.Rect{X1: 60, Y1: 543, X2: 300, Y2: 583}},
			{Text: `<font size="34">斗南花卉市场</font>`, Bounds: snapshot.Rect{X1: 60, Y1: 593, X2: 700, Y2: 643}},
		},
	}
	got, ok := extractName(card, FromContainer, nameCfg())
	if !ok || got != "斗南花卉市场" {
		t.Errorf("name = %q,%v, want 斗南花卉市场,true", got, ok)
	}
}

func TestExtractName_FallbackPrefersUpperRuns(t *testing.T) {
	// WHAT: two viable plain runs, the lower one closer to the
	// sweet-spot length.
	// WHY: vertical position outranks length; titles render at the
	// top of a card, metadata below.
	card := &snapshot.ViewNode{
		Bounds: snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 733},
		Children: []*snapshot.ViewNode{
			{Text: "春城鲜花港", Bounds: snapshot.Rect{X1: 60, Y1: 543, X2: 300, Y2: 583}},
			{Text: "昆明花卉批发中心", Bounds: snapshot.Rect{X1: 60, Y1: 593, X2: 400, Y2: 633}},
		},
	}
	got, ok := extractName(card, FromContainer, nameCfg())
	if !ok || got != "春城鲜花港" {
		t.Errorf("name = %q,%v, want 春城鲜花港,true", got, ok)
	}
}

func TestExtractName_LowerHalfRunRejected(t *testing.T) {
	// A run in the bottom part of the card is never a title.
	card := &snapshot.ViewNode{
		Bounds: snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 733},
		Children: []*snapshot.ViewNode{
			{Text: "春城鲜花港", Bounds: snapshot.Rect{X1: 60, Y1: 653, X2: 300, Y2: 693}},
		},
	}
	if got, ok := extractName(card, FromContainer, nameCfg()); ok {
		t.Errorf("name = %q, want rejection for a bottom-40%% run", got)
	}
}

func TestExtractName_ProductBlurbRejected(t *testing.T) {
	card := &snapshot.ViewNode{
		Bounds: snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 733},
		Children: []*snapshot.ViewNode{
			{Text: "全国配送上门保证", Bounds: snapshot.Rect{X1: 60, Y1: 543, X2: 400, Y2: 583}},
		},
	}
	if got, ok := extractName(card, FromContainer, nameCfg()); ok {
		t.Errorf("name = %q, want rejection for a product blurb", got)
	}
}

func TestExtractName_TagMetadataRejected(t *testing.T) {
	card := &snapshot.ViewNode{
		Bounds: snapshot.Rect{X1: 33, Y1: 533, X2: 1047, Y2: 733},
		Children: []*snapshot.ViewNode{
			{Text: "评分很好", Bounds: snapshot.Rect{X1: 60, Y1: 543, X2: 300, Y2: 583}},
			{Text: "收录3年", Bounds: snapshot.Rect{X1: 60, Y1: 543, X2: 300, Y2: 583}},
		},
	}
	if got, ok := extractName(card, FromContainer, nameCfg()); ok {
		t.Errorf("name = %q, want rejection for tag metadata", got)
	}
}

func TestDescSegments(t *testing.T) {
	got := descSegments("昆明花卉批发中心,4.8分 1.2公里；营业中")
	want := []string{"昆明花卉批发中心", "4.8分", "1.2公里", "营业中"}
	if len(got) != len(want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}
