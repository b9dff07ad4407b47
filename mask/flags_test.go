package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBit(t *testing.T) {
	var p byte = 0b0000_0000

	SetBit(&p, 0x80, true)
	assert.Equal(t, byte(0x80), p)

	SetBit(&p, 0x80, false)
	assert.Equal(t, byte(0x00), p)

	SetBit(&p, 0x24, true) // touches two bits at once
	assert.Equal(t, byte(0x24), p)

	SetBit(&p, 0x04, false)
	assert.Equal(t, byte(0x20), p)
}
