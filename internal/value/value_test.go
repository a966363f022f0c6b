package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_EmptySequenceIntermediateReturnsDefault(t *testing.T) {
	v := MustParse(`{"a":{"b":[]}}`)

	assert.Equal(t, "dflt", v.String("a.b[0].c", "dflt"))
	assert.Equal(t, Missing, v.Lookup("a.b[0].c").State)
}

func TestLookup_EmptyLeafIsFoundEmpty(t *testing.T) {
	v := MustParse(`{"a":{"b":"","c":[1],"z":0,"n":null,"f":false,"m":{}}}`)

	l := v.Lookup("a.b")
	assert.Equal(t, FoundEmpty, l.State)
	assert.Equal(t, "dflt", v.String("a.b", "dflt"))

	assert.Equal(t, Missing, v.Lookup("a.c[2]").State)
	assert.Equal(t, "dflt", v.String("a.c[2]", "dflt"))

	assert.Equal(t, int64(-1), v.Int("a.z", -1))
	assert.Equal(t, FoundEmpty, v.Lookup("a.n").State)
	assert.Equal(t, FoundEmpty, v.Lookup("a.f").State)

	// 空对象视为存在
	assert.Equal(t, Found, v.Lookup("a.m").State)
	assert.True(t, v.Has("a.z"))
	assert.False(t, v.Has("a.missing"))
}

func TestLookup_NegativeAndChainedIndex(t *testing.T) {
	v := MustParse(`{"url_list":["u1","u2","u3"],"grid":[[1,2],[3,4]]}`)

	assert.Equal(t, "u3", v.String("url_list[-1]", ""))
	assert.Equal(t, "u1", v.String("url_list[-3]", ""))
	assert.Equal(t, "", v.String("url_list[-4]", ""))
	assert.Equal(t, int64(4), v.Int("grid[1][1]", 0))
	assert.Equal(t, int64(3), v.Int("grid[-1][0]", 0))
}

func TestLookup_EmptyNameIndexesCurrentNode(t *testing.T) {
	v := MustParse(`[{"id":"a"},{"id":"b"}]`)

	assert.Equal(t, "b", v.String("[1].id", ""))
	assert.Equal(t, "b", v.String("[-1].id", ""))
}

func TestLookup_TypeMismatchAndBadPathNeverPanic(t *testing.T) {
	v := MustParse(`{"a":"text","b":{"c":1}}`)

	cases := []string{
		"a.b",      // 字符串上取字段
		"a[0]",     // 字符串上取下标
		"b[0]",     // 映射上取下标
		"b.c.d",    // 数字上取字段
		"b[x]",     // 非法下标
		"b[1",      // 未闭合
		"b..c",     // 空段
		"b[0]tail", // 下标后缀垃圾
		".",
	}
	for _, p := range cases {
		t.Run(p, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, "dflt", v.String(p, "dflt"))
			})
			assert.Equal(t, Missing, v.Lookup(p).State)
		})
	}
}

func TestLookup_EmptyPathIsRoot(t *testing.T) {
	v := MustParse(`{"k":1}`)
	n, ok := v.Node("")
	require.True(t, ok)
	assert.Equal(t, KindMapping, n.Kind())
}

func TestInt_AcceptsNumericStrings(t *testing.T) {
	v := MustParse(`{
		"size":"12345","big":7311234567890123456,"frac":3.9,"word":"abc",
		"neg":"-42","exp":"1e3",
		"huge":"1e300","over":"9223372036854775808","overnum":9223372036854775808,
		"under":-1e300,"max":9223372036854775807,"min":"-9223372036854775808"
	}`)

	cases := []struct {
		path string
		want int64
	}{
		{"size", 12345},
		{"big", 7311234567890123456},
		{"frac", 3},
		{"word", -1},
		{"neg", -42},
		{"exp", 1000},
		// 超出 int64 范围：返回默认值而不是回绕
		{"huge", -1},
		{"over", -1},
		{"overnum", -1},
		{"under", -1},
		{"max", 9223372036854775807},
		{"min", -9223372036854775808},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, v.Int(c.path, -1), c.path)
	}

	_, ok := MustParse(`"1e300"`).Int64()
	assert.False(t, ok)
}

func TestString_NumbersKeepLiteral(t *testing.T) {
	v := MustParse(`{"aweme_id":7311234567890123456,"ok":true,"obj":{"x":1}}`)

	assert.Equal(t, "7311234567890123456", v.String("aweme_id", ""))
	assert.Equal(t, "true", v.String("ok", ""))
	assert.Equal(t, "dflt", v.String("obj", "dflt"))
}

func TestList(t *testing.T) {
	v := MustParse(`{"a":[1,2],"e":[],"s":"x"}`)

	assert.Len(t, v.List("a"), 2)
	assert.Nil(t, v.List("e"))
	assert.Nil(t, v.List("s"))
	assert.Nil(t, v.List("nope"))
}

func TestParse_RejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	require.Error(t, err)
}

func TestIndent_KeepsKeyOrderAndNonASCII(t *testing.T) {
	v := MustParse(`{"z":"抖音<&>","a":[1,{"m":null}]}`)

	got, err := v.Indent()
	require.NoError(t, err)
	want := "{\n  \"z\": \"抖音<&>\",\n  \"a\": [\n    1,\n    {\n      \"m\": null\n    }\n  ]\n}"
	assert.Equal(t, want, got)
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{
		"b":    []any{"x", 2, 3.5},
		"a":    true,
		"null": nil,
	})

	assert.Equal(t, []string{"a", "b", "null"}, v.Keys())
	assert.Equal(t, "x", v.String("b[0]", ""))
	assert.Equal(t, int64(2), v.Int("b[1]", 0))
	assert.Equal(t, "3.5", v.String("b[2]", ""))
	assert.True(t, v.Get("a", Value{}).Truthy())
	assert.True(t, v.Get("null", Value{}).IsNull())
}
