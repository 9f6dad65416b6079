package listings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Apartamento 3 quartos no Centro", "apartamento-3-quartos-no-centro"},
		{"Casa à venda no Bacacheri", "casa-a-venda-no-bacacheri"},
		{"Cobertura DUPLEX -- São José", "cobertura-duplex-sao-jose"},
		{"  espaços   extras  ", "espacos-extras"},
		{"!!!", ""},
		{"Terreno 500m²", "terreno-500m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title), "title=%q", tc.title)
	}
}
