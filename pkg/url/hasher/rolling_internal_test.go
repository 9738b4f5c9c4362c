package hasher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEdgeValues(t *testing.T) {
	assert.Equal(t, "0", render(0))
	assert.Equal(t, "z", render(35))
	assert.Equal(t, "z", render(-35))
	assert.Equal(t, "10", render(36))
	assert.Equal(t, "zik0zj", render(math.MaxInt32))
	assert.Equal(t, "zik0zk", render(math.MinInt32))
}
