// internal/service/catalog/domain/customizer.go
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

// PlaceholderImage 是找不到任何图片时前端使用的占位图
const PlaceholderImage = "/placeholder-ring.png"

// DefaultBandPath 是未选择款式时的默认图片
const DefaultBandPath = "rings/default/band.png"

var customBasePrice = decimal.NewFromInt(1000)

var (
	metalSurcharge = map[ring.Metal]int64{
		ring.MetalPlatinum: 500,
	}
	designSurcharge = map[ring.Design]int64{
		ring.DesignHaloSetting:    300,
		ring.DesignVintageAntique: 400,
		ring.DesignThreeStone:     600,
	}
	shapeSurcharge = map[ring.Shape]int64{
		ring.ShapePrincess: 200,
		ring.ShapeEmerald:  300,
		ring.ShapeOval:     250,
	}
	caratSurcharge = map[string]int64{
		"1.0": 5000,
		"1.5": 7500,
		"2.0": 10000,
		"2.5": 12500,
	}
)

// shapeProbeOrder 是只选了款式和金属时自动挑选形状的顺序
var shapeProbeOrder = []ring.Shape{ring.ShapeRound, ring.ShapeOval, ring.ShapePrincess, ring.ShapeEmerald}

// Selection 是定制器中的逐步选择，未选择的字段为空
type Selection struct {
	Design ring.Design      `json:"design,omitempty"`
	Metal  ring.Metal       `json:"metal,omitempty"`
	Shape  ring.Shape       `json:"shape,omitempty"`
	Carat  *decimal.Decimal `json:"carat,omitempty"`
}

// Complete 四个步骤是否都已选择
func (s Selection) Complete() bool {
	return s.Design != "" && s.Metal != "" && s.Shape != "" && s.Carat != nil
}

// Item 把完整的选择转换为目录配置
func (s Selection) Item() (ring.CatalogItem, bool) {
	if !s.Complete() {
		return ring.CatalogItem{}, false
	}
	return ring.CatalogItem{Design: s.Design, Metal: s.Metal, Shape: s.Shape, Carat: *s.Carat}, true
}

// Validate 已选择的字段必须在封闭集合内，克拉必须是可售规格
func (s Selection) Validate() error {
	switch {
	case s.Design != "" && !s.Design.Valid():
		return fmt.Errorf("%w: design %q", ring.ErrInvalidAttribute, s.Design)
	case s.Metal != "" && !s.Metal.Valid():
		return fmt.Errorf("%w: metal %q", ring.ErrInvalidAttribute, s.Metal)
	case s.Shape != "" && !s.Shape.Valid():
		return fmt.Errorf("%w: shape %q", ring.ErrInvalidAttribute, s.Shape)
	case s.Carat != nil && !ring.IsOfferedCarat(*s.Carat):
		return fmt.Errorf("%w: carat %s is not offered", ring.ErrInvalidAttribute, s.Carat)
	}
	return nil
}

// CustomPrice 按基础价加各步骤附加价计算定制价格，未选择的步骤不加价
func CustomPrice(s Selection) decimal.Decimal {
	total := customBasePrice
	total = total.Add(decimal.NewFromInt(metalSurcharge[s.Metal]))
	total = total.Add(decimal.NewFromInt(designSurcharge[s.Design]))
	total = total.Add(decimal.NewFromInt(shapeSurcharge[s.Shape]))
	if s.Carat != nil {
		total = total.Add(decimal.NewFromInt(caratSurcharge[ring.FormatCarat(*s.Carat)]))
	}
	return total
}

// ImageCandidates 返回预览图的候选路径，按优先级排列
func ImageCandidates(s Selection) []string {
	if s.Design == "" {
		return []string{DefaultBandPath}
	}
	var out []string
	if s.Metal != "" && s.Shape != "" {
		out = append(out, ImagePathFor(ring.Combination{Design: s.Design, Metal: s.Metal, Shape: s.Shape}))
	}
	if s.Metal != "" {
		out = append(out, fmt.Sprintf("rings/%s/%s/band.png", s.Design, s.Metal))
	}
	out = append(out, fmt.Sprintf("rings/%s/band.png", s.Design), DefaultBandPath)
	return out
}

// ShapeProbeOrder 返回自动挑选形状时的尝试顺序
func ShapeProbeOrder() []ring.Shape {
	return append([]ring.Shape(nil), shapeProbeOrder...)
}
