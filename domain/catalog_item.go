package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CatalogItem 标识一个可购买的戒指配置，创建后不可变
type CatalogItem struct {
	Design Design          `json:"design"`
	Metal  Metal           `json:"metal"`
	Shape  Shape           `json:"shape"`
	Carat  decimal.Decimal `json:"carat"`
}

// NewCatalogItem 解析并校验原始字符串
func NewCatalogItem(design, metal, shape, carat string) (CatalogItem, error) {
	d, err := ParseDesign(design)
	if err != nil {
		return CatalogItem{}, err
	}
	m, err := ParseMetal(metal)
	if err != nil {
		return CatalogItem{}, err
	}
	s, err := ParseShape(shape)
	if err != nil {
		return CatalogItem{}, err
	}
	c, err := ParseCarat(carat)
	if err != nil {
		return CatalogItem{}, err
	}
	return CatalogItem{Design: d, Metal: m, Shape: s, Carat: c}, nil
}

// Validate 校验所有字段都在封闭集合内
func (i CatalogItem) Validate() error {
	switch {
	case !i.Design.Valid():
		return errors.Wrapf(ErrInvalidAttribute, "design %q", i.Design)
	case !i.Metal.Valid():
		return errors.Wrapf(ErrInvalidAttribute, "metal %q", i.Metal)
	case !i.Shape.Valid():
		return errors.Wrapf(ErrInvalidAttribute, "shape %q", i.Shape)
	case !i.Carat.IsPositive():
		return errors.Wrapf(ErrInvalidAttribute, "carat %s", i.Carat)
	}
	return nil
}

// Title 用于订单行与通知的展示名称，例如 "Halo Setting · Rose Gold · Oval · 1.5ct"
func (i CatalogItem) Title() string {
	return i.Design.Label() + " · " + i.Metal.Label() + " · " + i.Shape.Label() + " · " + FormatCarat(i.Carat) + "ct"
}

// Combination 是不含克拉的 款式×金属×形状 组合，图片按组合存放
type Combination struct {
	Design Design `json:"design"`
	Metal  Metal  `json:"metal"`
	Shape  Shape  `json:"shape"`
}

// AllCombinations 按 款式、金属、形状 的顺序枚举全部组合
func AllCombinations() []Combination {
	out := make([]Combination, 0, len(allDesigns)*len(allMetals)*len(allShapes))
	for _, d := range allDesigns {
		for _, m := range allMetals {
			for _, s := range allShapes {
				out = append(out, Combination{Design: d, Metal: m, Shape: s})
			}
		}
	}
	return out
}
