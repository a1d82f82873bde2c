package catalog

import (
	"testing"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Zelda: Tears of the Kingdom", Brand: "Nintendo", Category: models.CategoryVideoGames},
		{ID: 2, Name: "Hatsune Miku", Description: "Figura de colección", Brand: "Good Smile", Category: models.CategoryFigures},
		{ID: 3, Name: "Mario Kart 8", Brand: "Nintendo", Category: models.CategoryVideoGames},
		{ID: 4, Name: "Link", Description: "figura articulada de Zelda", Brand: "Figma", Category: models.CategoryFigures},
		{ID: 5, Name: "Halo", Brand: "Xbox", Category: models.CategoryVideoGames},
		{ID: 6, Name: "Metroid", Brand: "Nintendo", Category: models.CategoryVideoGames},
	}
}

func ids(ps []models.Product) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"no filter", Filter{}, []int64{1, 2, 3, 4, 5, 6}},
		{"all category", Filter{Category: "all"}, []int64{1, 2, 3, 4, 5, 6}},
		{"figures", Filter{Category: "figuras"}, []int64{2, 4}},
		{"category is case insensitive", Filter{Category: " VideoJuegos "}, []int64{1, 3, 5, 6}},
		{"search name", Filter{Search: "mario"}, []int64{3}},
		{"search brand", Filter{Search: "NINTENDO"}, []int64{1, 3, 6}},
		{"search description", Filter{Search: "zelda"}, []int64{1, 4}},
		{"search within category", Filter{Category: "figuras", Search: "zelda"}, []int64{4}},
		{"no match", Filter{Search: "sonic"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.f.Apply(sample())))
		})
	}
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{}.Validate())
	assert.NoError(t, Filter{Category: "all"}.Validate())
	assert.NoError(t, Filter{Category: "figuras"}.Validate())
	assert.True(t, apperr.IsType(Filter{Category: "consolas"}.Validate(), apperr.TypeValidation))
}

func TestFeatured(t *testing.T) {
	got := Featured(sample(), 0)
	assert.Equal(t, []int64{1, 3, 5}, ids(got[models.CategoryVideoGames]))
	assert.Equal(t, []int64{2, 4}, ids(got[models.CategoryFigures]))

	got = Featured(sample(), 1)
	assert.Equal(t, []int64{1}, ids(got[models.CategoryVideoGames]))

	got = Featured(nil, 3)
	assert.NotNil(t, got[models.CategoryFigures])
	assert.Empty(t, got[models.CategoryFigures])
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, StockOut, LevelOf(0))
	assert.Equal(t, StockOut, LevelOf(-1))
	assert.Equal(t, StockLow, LevelOf(1))
	assert.Equal(t, StockLow, LevelOf(5))
	assert.Equal(t, StockAvailable, LevelOf(6))
}

func TestValidateProduct(t *testing.T) {
	p := models.Product{Name: "  Kirby ", Category: " Figuras", Price: models.Pesos(50000), Stock: 0, Brand: " HAL "}
	require.NoError(t, ValidateProduct(&p))
	assert.Equal(t, "Kirby", p.Name)
	assert.Equal(t, "HAL", p.Brand)
	assert.Equal(t, models.CategoryFigures, p.Category)

	bad := []models.Product{
		{Name: " ", Category: models.CategoryFigures, Price: 1},
		{Name: "x", Category: "consolas", Price: 1},
		{Name: "x", Category: models.CategoryFigures, Price: 0},
		{Name: "x", Category: models.CategoryFigures, Price: 1, Stock: -2},
	}
	for i := range bad {
		err := ValidateProduct(&bad[i])
		assert.True(t, apperr.IsType(err, apperr.TypeValidation), "case %d", i)
	}
}
