package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ring "solitaire/domain"
)

func carat(s string) *decimal.Decimal {
	c := decimal.RequireFromString(s)
	return &c
}

func TestCustomPrice(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want int64
	}{
		{"nothing selected", Selection{}, 1000},
		{"classic white gold round 1ct", Selection{ring.DesignClassicSolitaire, ring.MetalWhiteGold, ring.ShapeRound, carat("1.0")}, 6000},
		{"halo platinum oval 1.5", Selection{ring.DesignHaloSetting, ring.MetalPlatinum, ring.ShapeOval, carat("1.5")}, 1000 + 300 + 500 + 250 + 7500},
		{"three stone emerald 2.5", Selection{ring.DesignThreeStone, ring.MetalRoseGold, ring.ShapeEmerald, carat("2.5")}, 1000 + 600 + 300 + 12500},
		{"vintage princess 2", Selection{Design: ring.DesignVintageAntique, Shape: ring.ShapePrincess, Carat: carat("2")}, 1000 + 400 + 200 + 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, CustomPrice(tc.sel).Equal(decimal.NewFromInt(tc.want)), CustomPrice(tc.sel).String())
		})
	}
}

func TestImageCandidates(t *testing.T) {
	assert.Equal(t, []string{"rings/default/band.png"}, ImageCandidates(Selection{Metal: ring.MetalPlatinum}))
	assert.Equal(t, []string{
		"rings/halo-setting/band.png",
		"rings/default/band.png",
	}, ImageCandidates(Selection{Design: ring.DesignHaloSetting}))
	assert.Equal(t, []string{
		"rings/halo-setting/platinum/oval/1.0ct.png",
		"rings/halo-setting/platinum/band.png",
		"rings/halo-setting/band.png",
		"rings/default/band.png",
	}, ImageCandidates(Selection{Design: ring.DesignHaloSetting, Metal: ring.MetalPlatinum, Shape: ring.ShapeOval}))
}

func TestSelectionValidate(t *testing.T) {
	assert.NoError(t, Selection{Design: ring.DesignThreeStone, Carat: carat("1.5")}.Validate())
	assert.ErrorIs(t, Selection{Carat: carat("3.0")}.Validate(), ring.ErrInvalidAttribute)
	assert.ErrorIs(t, Selection{Metal: "gold"}.Validate(), ring.ErrInvalidAttribute)
}

func TestPriceTable(t *testing.T) {
	table := DefaultPriceTable(ring.DesignHaloSetting)
	assert.True(t, table.PriceFor(decimal.RequireFromString("1.5")).Equal(decimal.NewFromInt(7500)))
	assert.True(t, table.PriceFor(decimal.RequireFromString("2")).Equal(decimal.NewFromInt(10000)))
	assert.True(t, table.PriceFor(decimal.RequireFromString("3.0")).Equal(decimal.NewFromInt(5000)))

	book := NewPriceBook([]PriceTable{table})
	_, ok := book.BasePrice(ring.DesignThreeStone, decimal.NewFromInt(1))
	assert.False(t, ok)
	price, ok := book.BasePrice(ring.DesignHaloSetting, decimal.RequireFromString("2.5"))
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(12500)))
}

func TestProductFilter(t *testing.T) {
	p := &Product{Design: ring.DesignHaloSetting, Metal: ring.MetalPlatinum, Shape: ring.ShapeOval, Carat: decimal.NewFromInt(1)}
	assert.True(t, ProductFilter{}.Match(p))
	assert.True(t, ProductFilter{Metal: ring.MetalPlatinum, Carat: carat("1.0")}.Match(p))
	assert.False(t, ProductFilter{Carat: carat("1.5")}.Match(p))
	assert.False(t, ProductFilter{Shape: ring.ShapeRound}.Match(p))
}
