package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_RemovesControlAndIllegal(t *testing.T) {
	c := Cleaner{}

	assert.Equal(t, "ab c#话题", c.Filter("a\u200bb c#话题"))
	assert.Equal(t, "abc", c.Filter(`a/b\c`))
	assert.Equal(t, "x\ny", c.Filter("x\ny\x00\u202e"))
	assert.Equal(t, "", c.Filter(""))
}

func TestFilter_NormalizesNFC(t *testing.T) {
	c := Cleaner{}
	// e + 组合重音符 -> é
	assert.Equal(t, "caf\u00e9", c.Filter("cafe\u0301"))
}

func TestClearSpaces(t *testing.T) {
	c := Cleaner{}
	assert.Equal(t, "a b c", c.ClearSpaces("  a \n\t b    c  "))
	assert.Equal(t, "", c.ClearSpaces(" \n "))
}

func TestFilterName(t *testing.T) {
	c := Cleaner{MaxName: 5}

	assert.Equal(t, "张三", c.FilterName(" 张三 ", "fallback"))
	assert.Equal(t, "fallback", c.FilterName(`<>|`, "fallback"))
	assert.Equal(t, "fallback", c.FilterName("...", "fallback"))
	assert.Equal(t, "abcde", c.FilterName("abcdefgh", "fallback"))
	assert.Equal(t, "", c.FilterName("", ""))
}
