package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOther(t *testing.T) {
	m := Other([]byte{'a', 'b', 0x00, 0x01}, "a1b2c3d4e5f60718")
	assert.InDelta(t, 0.5, m.PrintableRatio, 1e-9)
	assert.Equal(t, "a1b2c3d4e5f60718", m.Signature)
}

func TestOtherEmptySample(t *testing.T) {
	m := Other(nil, "ef46db3751d8e999")
	assert.Zero(t, m.PrintableRatio)
	assert.Equal(t, "ef46db3751d8e999", m.Signature)
}
