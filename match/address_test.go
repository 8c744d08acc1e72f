package match

import "testing"

func TestLooksLikeAddress(t *testing.T) {
	// WHAT: the boundary between addresses and venue names.
	// WHY: a market name like 斗南花卉市场 carries the administrative
	// character 市 but is the entity name, not its address; the length
	// floor keeps it on the name side while real street addresses pass.
	tests := []struct {
		in   string
		want bool
	}{
		{"云南省昆明市呈贡区斗南街道花卉大道12号", true},
		{"昆明市呈贡区斗南镇", false}, // 9 runes, under the marker floor
		{"斗南花卉市场", false},
		{"云南昆明斗南国际花卉产业园区交易中心", true},
		{"A12-34号", true},
		{"2期15-8", true},
		{"花卉大棚", true},
		{"", false},
		{"高德红包", false},
	}
	for _, tt := range tests {
		if got := LooksLikeAddress(tt.in); got != tt.want {
			t.Errorf("LooksLikeAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
