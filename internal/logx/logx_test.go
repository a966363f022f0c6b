package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_EchoControlsConsoleOnly(t *testing.T) {
	var rec, con bytes.Buffer
	l := New(&rec, &con).With("run_id", "r1")

	l.Info("视频 1 数据提取成功", false)
	l.Warning("提示", true, "n", 3)

	lines := strings.Split(strings.TrimSpace(rec.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "视频 1 数据提取成功", first["message"])
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "r1", first["run_id"])
	assert.Contains(t, first, "time")

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "warn", second["level"])
	assert.EqualValues(t, 3, second["n"])

	out := con.String()
	assert.NotContains(t, out, "数据提取成功")
	assert.Contains(t, out, "提示")
	assert.Contains(t, out, "n=3")
	assert.Contains(t, out, "run_id=r1")
}

func TestLogger_ErrorValueIsRecorded(t *testing.T) {
	var rec bytes.Buffer
	l := New(&rec, nil)

	l.Error("视频下载地址解析失败", true, "id", "7300", "err", errors.New("url_list 为空"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(rec.Bytes()), &got))
	assert.Equal(t, "error", got["level"])
	assert.Equal(t, "7300", got["id"])
	assert.Equal(t, "url_list 为空", got["err"])
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("x", true)
		l.Error("x", true)
		assert.Nil(t, l.With("k", "v"))
	})
	assert.NotPanics(t, func() {
		d := Discard().With("k", "v")
		d.Warning("x", true)
	})
}
