package tiktok

import (
	"strconv"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/quality"
	"github.com/John-Robertt/SVEX/internal/value"
)

// Options 是 TikTok 候选地址的取用下标（负数从末尾计数）。
type Options struct {
	VideoIndex       int // PlayAddr.UrlList 下标
	ImageIndex       int // imageURL.urlList 下标
	BitrateInfoIndex int // uri 取自 video.bitrateInfo 的哪一项
}

// DefaultOptions 与平台返回的地址排列匹配：视频取第一个，图片取最后一个。
func DefaultOptions() Options {
	return Options{VideoIndex: 0, ImageIndex: -1, BitrateInfoIndex: 0}
}

// Adapter 实现 TikTok 作品数据的字段映射。
//
// 约束：
// - 视频时长字段单位为秒
// - 变体没有帧率字段（按 0 参与排序）
// - 平台不区分实况，带 imagePost.images 的作品一律视为图集
type Adapter struct {
	opt     Options
	schema  quality.Schema
	uriPath string
	imgPath string
}

func New(opt Options) Adapter {
	return Adapter{
		opt: opt,
		schema: quality.Schema{
			BitRate:  "Bitrate",
			ByteSize: "PlayAddr.DataSize",
			Height:   "PlayAddr.Height",
			Width:    "PlayAddr.Width",
			URLs:     "PlayAddr.UrlList",
			URLIndex: opt.VideoIndex,
		},
		uriPath: "video.bitrateInfo[" + strconv.Itoa(opt.BitrateInfoIndex) + "].PlayAddr.Uri",
		imgPath: "imageURL.urlList[" + strconv.Itoa(opt.ImageIndex) + "]",
	}
}

var statisticsKeys = [5]string{
	"stats.diggCount",
	"stats.commentCount",
	"stats.collectCount",
	"stats.shareCount",
	"stats.playCount",
}

func (Adapter) Platform() platform.Kind { return platform.TikTok }

func (Adapter) Fields() platform.Fields {
	return platform.Fields{
		ID:         "id",
		Desc:       "desc",
		CreateTime: "createTime",
		Identity: platform.IdentityKeys{
			SecUID:   "author.secUid",
			UID:      "author.id",
			Nickname: "author.nickname",
			MixID:    "playlistId",
			// 平台不返回合集标题
			MixTitle: "playlistId",
		},
	}
}

func (Adapter) Classify(item value.Value) domain.WorkType {
	if len(item.List("imagePost.images")) > 0 {
		return domain.TypeImage
	}
	return domain.TypeVideo
}

func (a Adapter) Media(item value.Value) platform.Media {
	if images := item.List("imagePost.images"); len(images) > 0 {
		m := platform.BlankMedia(domain.TypeImage)
		for _, img := range images {
			m.Downloads = append(m.Downloads, img.String(a.imgPath, ""))
		}
		return m
	}
	raw := item.List("video.bitrateInfo")
	res := quality.Select(raw, a.schema)
	m := platform.Media{
		Type:     domain.TypeVideo,
		Height:   res.Height,
		Width:    res.Width,
		Duration: platform.FormatDuration(item.Int("video.duration", 0)),
		URI:      item.String(a.uriPath, ""),

		DynamicCover: item.String("video.dynamicCover", ""),
		StaticCover:  item.String("video.cover", ""),
	}
	if res.URL != "" {
		m.Downloads = []string{res.URL}
	}
	if res.Outcome == quality.Degraded {
		m.Degrades = []platform.Degrade{{Result: res, Variants: raw}}
	}
	return m
}

func (Adapter) Statistics(item value.Value) domain.Statistics {
	var n [5]int64
	for i, k := range statisticsKeys {
		n[i] = item.Int(k, -1)
	}
	return domain.Statistics{Digg: n[0], Comment: n[1], Collect: n[2], Share: n[3], Play: n[4]}
}

// Tags 与 TextExtra 同源（textExtra[].hashtagName），但保留空项。
func (Adapter) Tags(item value.Value) []string {
	return platform.Strings(item.List("textExtra"), "hashtagName", true)
}

func (Adapter) TextExtra(item value.Value) []string {
	return platform.Strings(item.List("textExtra"), "hashtagName", false)
}

func (Adapter) Music(item value.Value) platform.Music {
	m, ok := item.Node("music")
	if !ok {
		return platform.Music{}
	}
	return platform.Music{
		Author: m.String("authorName", ""),
		Title:  m.String("title", ""),
		URL:    m.String("playUrl", ""),
	}
}

// Author 不提供年龄（恒为 -1）。
func (Adapter) Author(item value.Value) platform.Author {
	a := item.Get("author", value.Value{})
	return platform.Author{
		UID:       a.String("id", ""),
		SecUID:    a.String("secUid", ""),
		UniqueID:  a.String("uniqueId", ""),
		Signature: a.String("signature", ""),
		UserAge:   -1,
		Nickname:  a.String("nickname", ""),
	}
}

func (Adapter) Extra(value.Value) string { return "" }

func (Adapter) Ratio(item value.Value) string {
	return item.String("video.ratio", "")
}

func (Adapter) ShareURL(t domain.WorkType, id, handle string) string {
	return platform.ShareURL(platform.TikTok, t, id, handle)
}

func (Adapter) UserInfo(profile value.Value) (platform.Profile, error) {
	return platform.RequiredProfile(platform.TikTok, profile, "user.nickname", "user.secUid", "user.id")
}
