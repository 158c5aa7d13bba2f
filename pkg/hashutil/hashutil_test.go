package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashBytesIsDeterministic(t *testing.T) {
	a := HashBytes(AlgoBlake3, []byte("hello"))
	b := HashBytes(AlgoBlake3, []byte("hello"))
	assert.Equal(t, a, b)
}

func TestHashBytesDiffersOnDifferentInput(t *testing.T) {
	a := HashBytes(AlgoBlake3, []byte("hello"))
	b := HashBytes(AlgoBlake3, []byte("world"))
	assert.NotEqual(t, a, b)
}
