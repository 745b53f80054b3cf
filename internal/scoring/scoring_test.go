package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		expected  bool
	}{
		{"exact match", "A", "A", true},
		{"lower case submitted", "a", "A", true},
		{"lower case key", "B", "b", true},
		{"surrounding spaces", " c ", "C", true},
		{"wrong letter", "D", "A", false},
		{"empty answer", "", "A", false},
		{"blank answer and key", " ", " ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCorrect(tt.submitted, tt.correct))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 70.0, Percentage(7, 10))
	assert.Equal(t, 60.0, Percentage(6, 10))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 100.0, Percentage(3, 3))
}

func TestPoints(t *testing.T) {
	t.Run("under baseline earns bonus", func(t *testing.T) {
		assert.Equal(t, 85, Points(300, 8, 10))
	})

	t.Run("over baseline earns no bonus", func(t *testing.T) {
		assert.Equal(t, 80, Points(700, 8, 10))
	})

	t.Run("exactly at baseline", func(t *testing.T) {
		assert.Equal(t, 80, Points(600, 8, 10))
	})

	t.Run("partial minute is floored", func(t *testing.T) {
		assert.Equal(t, 0, TimeBonus(119, 2))
		assert.Equal(t, 1, TimeBonus(59, 2))
	})

	t.Run("empty quiz", func(t *testing.T) {
		assert.Equal(t, 0, Points(0, 0, 0))
	})
}
