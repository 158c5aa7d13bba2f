package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeBasic(t *testing.T) {
	tok := New(nil)
	freq := tok.Tokenize("<p>Hello hello WORLD!</p>")
	assert.Equal(t, map[string]int{"hello": 2, "world": 1}, freq)
}

func TestTokenizeWithStopwords(t *testing.T) {
	tok := New(LoadStopwords("hello\n"))
	freq := tok.Tokenize("<p>Hello hello WORLD!</p>")
	assert.Equal(t, map[string]int{"world": 1}, freq)
}

func TestTokenLengthBoundaries(t *testing.T) {
	tok := New(nil)

	two := "ab"
	three := "abc"
	thirtyTwo := ""
	for i := 0; i < 32; i++ {
		thirtyTwo += "a"
	}
	thirtyThree := thirtyTwo + "a"

	freq := tok.Tokenize(two + " " + three + " " + thirtyTwo + " " + thirtyThree)
	assert.NotContains(t, freq, two)
	assert.Contains(t, freq, three)
	assert.Contains(t, freq, thirtyTwo)
	assert.NotContains(t, freq, thirtyThree)
}

func TestNormalizeQuery(t *testing.T) {
	terms := NormalizeQuery("мир привет")
	assert.Equal(t, []string{"мир", "привет"}, terms)
}

func TestTokenizeStripsPunctuation(t *testing.T) {
	tok := New(nil)
	freq := tok.Tokenize("foo, bar! baz? qux:quux")
	assert.Contains(t, freq, "foo")
	assert.Contains(t, freq, "bar")
	assert.Contains(t, freq, "baz")
}
