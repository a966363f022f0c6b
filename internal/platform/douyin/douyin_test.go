package douyin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/quality"
	"github.com/John-Robertt/SVEX/internal/value"
)

func fixture(t *testing.T, name string) value.Value {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "读取 fixture 失败")
	v, err := value.Parse(b)
	require.NoError(t, err, "解析 fixture 失败")
	return v
}

func TestVideo(t *testing.T) {
	item := fixture(t, "video.json")
	a := New()

	assert.Equal(t, domain.TypeVideo, a.Classify(item))

	m := a.Media(item)
	assert.Equal(t, domain.TypeVideo, m.Type)
	assert.Equal(t, int64(1080), m.Height)
	assert.Equal(t, int64(1920), m.Width)
	assert.Equal(t, []string{"u3"}, m.Downloads)
	assert.Equal(t, "01:02:05", m.Duration)
	assert.Equal(t, "v0200fg10000", m.URI)
	assert.Equal(t, "dyn-b", m.DynamicCover)
	assert.Equal(t, "cover-hq", m.StaticCover)
	assert.Empty(t, m.Degrades)

	assert.Equal(t, domain.Statistics{Digg: 120, Comment: -1, Collect: 8, Share: 3, Play: 5000}, a.Statistics(item))
	assert.Equal(t, []string{"户外", "", "运动"}, a.Tags(item))
	assert.Equal(t, []string{"旅行", "日常"}, a.TextExtra(item))
	assert.Equal(t, platform.Music{Author: "原声", Title: "@登山的人创作的原声", URL: "m1"}, a.Music(item))
	assert.Equal(t, "1080p", a.Ratio(item))

	au := a.Author(item)
	assert.Equal(t, platform.Author{
		UID: "100200300", SecUID: "MS4wLjABAAAA_demo", UniqueID: "hiker",
		Signature: "记录生活", UserAge: -1, Nickname: "登山的人",
	}, au)

	assert.Equal(t, "{\n  \"type\": 3,\n  \"title\": \"景点<推荐>\"\n}", a.Extra(item))
	assert.Equal(t, "7311234567890123456", item.String(a.Fields().ID, ""))
}

func TestImageSet(t *testing.T) {
	item := fixture(t, "image.json")
	a := New()

	assert.Equal(t, domain.TypeImage, a.Classify(item))
	m := a.Media(item)
	assert.Equal(t, platform.BlankMedia(domain.TypeImage).Duration, m.Duration)
	assert.Equal(t, int64(-1), m.Height)
	assert.Equal(t, int64(-1), m.Width)
	assert.Equal(t, []string{"i1-hq", "i2-hq", ""}, m.Downloads)
	assert.Empty(t, m.StaticCover)
	assert.Empty(t, m.DynamicCover)
	assert.Empty(t, m.URI)

	// 缺失的统计与音乐
	assert.Equal(t, domain.MissingStatistics(), a.Statistics(item))
	assert.Equal(t, platform.Music{}, a.Music(item))
	assert.Equal(t, "", a.Extra(item))
	assert.Nil(t, a.Tags(item))
}

func TestLivePhotoSet(t *testing.T) {
	item := fixture(t, "live.json")
	a := New()

	assert.Equal(t, domain.TypeLive, a.Classify(item))
	m := a.Media(item)
	assert.Equal(t, domain.TypeLive, m.Type)
	assert.Equal(t, []string{"still-1", "live-d", "broken-b"}, m.Downloads)

	require.Len(t, m.Degrades, 1)
	assert.Equal(t, quality.Degraded, m.Degrades[0].Result.Outcome)
	assert.Equal(t, int64(640), m.Degrades[0].Result.Height)
	assert.Len(t, m.Degrades[0].Variants, 1)
}

func TestVideo_NoVariants(t *testing.T) {
	item := value.MustParse(`{"aweme_id":"1","video":{"bit_rate":[]}}`)
	m := New().Media(item)

	assert.Equal(t, int64(-1), m.Height)
	assert.Equal(t, int64(-1), m.Width)
	assert.Nil(t, m.Downloads)
	assert.Equal(t, "00:00:00", m.Duration)
}

func TestShareURL(t *testing.T) {
	a := New()
	assert.Equal(t, "https://www.douyin.com/video/1", a.ShareURL(domain.TypeVideo, "1", "ignored"))
	assert.Equal(t, "https://www.douyin.com/note/2", a.ShareURL(domain.TypeImage, "2", ""))
	assert.Equal(t, "https://www.douyin.com/note/3", a.ShareURL(domain.TypeLive, "3", ""))
	assert.Equal(t, "", a.ShareURL(domain.WorkType("未知"), "4", ""))
}

func TestUserInfo(t *testing.T) {
	a := New()
	p, err := a.UserInfo(value.MustParse(`{"nickname":"n","sec_uid":"S","uid":12}`))
	require.NoError(t, err)
	assert.Equal(t, platform.Profile{Nickname: "n", SecUID: "S", UID: "12"}, p)

	_, err = a.UserInfo(value.MustParse(`{"nickname":"n","uid":"1"}`))
	require.ErrorIs(t, err, platform.ErrMissingField)
}

func TestMixID(t *testing.T) {
	assert.Equal(t, "m1", MixID(value.MustParse(`{"mix_info":{"mix_id":"m1"}}`)))
	assert.Equal(t, "", MixID(value.MustParse(`{}`)))
}
