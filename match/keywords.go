package match

import "strings"

// Default keyword sets for the map-app listing domain. Components take
// these as config defaults; treat the slices as read-only.

// DefaultAdKeywords mark advertisement and recommendation content that
// reuses the visual vocabulary of a genuine listing card.
var DefaultAdKeywords = []string{
	"高德红包", "优惠", "券", "领取", "满减", "折扣", "减",
	"刚刚浏览", "大家还在搜", "推荐", "榜单", "服务推荐", "扫街榜",
	"爆款", "精选", "新客", "满", "已领取",
	"鲜花上门配送", "上门配送", "配送服务", "买花榜", "鲜花配送",
	"送货上门", "配送推荐", "服务", "推荐商家",
	"场地布置", "气球派对", "开业花篮", "绿植",
	"（昆明店）", "（成都店）", "（西安店）", "馨爱鲜花",
}

// DefaultExcludedKeywords mark system chrome and navigation text that
// must never be extracted as an entity name. Latin distance units do
// not belong here: as substrings they match ordinary Latin names.
// Distance lines are handled by the regexp matchers instead.
var DefaultExcludedKeywords = []string{
	"搜索", "导航", "路线", "附近", "更多", "分享", "收藏",
	"大家还在搜", "根据当前位置推荐", "附近更多", "查看",
	"去过", "想去", "人均", "公里",
}

// DefaultTagKeywords mark listing metadata lines (ratings, visit
// counts, indexing tags) living inside a card next to the name.
var DefaultTagKeywords = []string{
	"收录", "入驻", "营业", "评分", "评价", "超棒", "很好", "好",
	"分", "星", "人去过", "想去", "收藏",
}

// DefaultProductKeywords mark product-description lines; a text run
// hitting several of these is a product blurb, not a name.
var DefaultProductKeywords = []string{
	"花束", "鲜花速递", "配送", "上门", "仅限", "不含", "指定",
	"全国", "实体店", "速递", "保证",
}

// DefaultDetailKeywords are the affordance labels of a detail page
// (call button, navigate button, section headers).
var DefaultDetailKeywords = []string{
	"拨打电话", "到这去", "收藏", "分享", "地址", "营业时间", "简介",
}

// CountKeywords returns how many distinct keywords occur in text.
func CountKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
