package display

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClear(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 24, Y: 16})
	require.NoError(t, d.Clear())
	assert.Equal(t, strings.Repeat(strings.Repeat(" ", d.size.X)+"\n", d.size.Y), d.String())
	assert.False(t, d.Lit(0, d.size.Y))
}

func TestText(t *testing.T) {
	t.Parallel()

	d := NewMock(image.Point{X: 240, Y: 240})
	require.NoError(t, d.Clear())
	d.Text(8, 8, "Pwnagotchi Menu", Green)
	assert.True(t, d.Lit(8, 8+LineStep))
	// nothing below the first text line
	assert.False(t, d.Lit(8+LineStep+13, d.size.Y))

	// clipping at the border must not panic
	d.Text(230, 230, "overflow overflow overflow", White)
}
