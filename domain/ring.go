// Package domain 定义了各服务共享的戒指目录内核：款式、金属、钻石形状与克拉。
package domain

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidAttribute 表示款式/金属/形状/克拉不在封闭集合内
var ErrInvalidAttribute = errors.New("invalid ring attribute")

// Design 戒托款式
type Design string

const (
	DesignClassicSolitaire Design = "classic-solitaire"
	DesignHaloSetting      Design = "halo-setting"
	DesignVintageAntique   Design = "vintage-antique"
	DesignThreeStone       Design = "three-stone"
)

// Metal 金属材质
type Metal string

const (
	MetalWhiteGold  Metal = "white-gold"
	MetalYellowGold Metal = "yellow-gold"
	MetalRoseGold   Metal = "rose-gold"
	MetalPlatinum   Metal = "platinum"
)

// Shape 钻石形状
type Shape string

const (
	ShapeRound    Shape = "round"
	ShapePrincess Shape = "princess"
	ShapeEmerald  Shape = "emerald"
	ShapeOval     Shape = "oval"
)

var (
	allDesigns = []Design{DesignClassicSolitaire, DesignHaloSetting, DesignVintageAntique, DesignThreeStone}
	allMetals  = []Metal{MetalWhiteGold, MetalYellowGold, MetalRoseGold, MetalPlatinum}
	allShapes  = []Shape{ShapeRound, ShapePrincess, ShapeEmerald, ShapeOval}

	// 定制器早期使用的短 ID
	legacyDesigns = map[string]Design{
		"solitaire": DesignClassicSolitaire,
		"halo":      DesignHaloSetting,
		"vintage":   DesignVintageAntique,
	}

	offeredCarats = []decimal.Decimal{
		decimal.RequireFromString("1.0"),
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("2.0"),
		decimal.RequireFromString("2.5"),
	}
)

func AllDesigns() []Design { return append([]Design(nil), allDesigns...) }
func AllMetals() []Metal   { return append([]Metal(nil), allMetals...) }
func AllShapes() []Shape   { return append([]Shape(nil), allShapes...) }

// OfferedCarats 返回可售卖的克拉规格
func OfferedCarats() []decimal.Decimal { return append([]decimal.Decimal(nil), offeredCarats...) }

func (d Design) Valid() bool { return contains(allDesigns, d) }
func (m Metal) Valid() bool  { return contains(allMetals, m) }
func (s Shape) Valid() bool  { return contains(allShapes, s) }

func (d Design) Label() string { return label(string(d)) }
func (m Metal) Label() string  { return label(string(m)) }
func (s Shape) Label() string  { return label(string(s)) }

// ParseDesign 解析款式，兼容旧的短 ID
func ParseDesign(s string) (Design, error) {
	v := normalize(s)
	if d, ok := legacyDesigns[v]; ok {
		return d, nil
	}
	if d := Design(v); d.Valid() {
		return d, nil
	}
	return "", errors.Wrapf(ErrInvalidAttribute, "design %q", s)
}

func ParseMetal(s string) (Metal, error) {
	if m := Metal(normalize(s)); m.Valid() {
		return m, nil
	}
	return "", errors.Wrapf(ErrInvalidAttribute, "metal %q", s)
}

func ParseShape(s string) (Shape, error) {
	if sh := Shape(normalize(s)); sh.Valid() {
		return sh, nil
	}
	return "", errors.Wrapf(ErrInvalidAttribute, "shape %q", s)
}

// ParseCarat 解析克拉数，只接受正数
func ParseCarat(s string) (decimal.Decimal, error) {
	c, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !c.IsPositive() {
		return decimal.Zero, errors.Wrapf(ErrInvalidAttribute, "carat %q", s)
	}
	return c, nil
}

// IsOfferedCarat 判断克拉是否属于可售规格 (按数值比较，1 与 1.0 相等)
func IsOfferedCarat(c decimal.Decimal) bool {
	for _, o := range offeredCarats {
		if o.Equal(c) {
			return true
		}
	}
	return false
}

// FormatCarat 以一位小数输出克拉，例如 1.0、2.5
func FormatCarat(c decimal.Decimal) string {
	return c.StringFixed(1)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func label(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
