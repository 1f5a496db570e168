package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStationName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Siam", "Siam"},
		{"Siam (Sukhumvit)", "Siam"},
		{"Siam(Silom)", "Siam"},
		{"  Asok  ", "Asok"},
		{"Tao Poon (Purple) (North)", "Tao Poon"},
		{"Bang Sue (Red) Grand", "Bang Sue Grand"},
		{"(Depot)", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStationName(tt.raw))
		})
	}
}

func TestNormalizeStationNameIsIdempotent(t *testing.T) {
	for _, raw := range []string{"Siam (Sukhumvit)", "Mo Chit", " Ha Yaek (Lat Phrao) ", "(x)(y) z"} {
		once := NormalizeStationName(raw)
		assert.Equal(t, once, NormalizeStationName(once), raw)
	}
}
