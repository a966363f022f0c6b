package douyin

import (
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/quality"
	"github.com/John-Robertt/SVEX/internal/value"
)

// Adapter 实现抖音作品数据的字段映射。
//
// 约束：
// - 视频时长字段单位为毫秒
// - 实况图集中带 video 的页取该视频的最佳变体地址，其余页取 url_list 最后一项
type Adapter struct{}

func New() Adapter { return Adapter{} }

// Variants 是 video.bit_rate 内变体字段的路径；地址取 url_list 最后一项。
var Variants = quality.Schema{
	FrameRate: "FPS",
	BitRate:   "bit_rate",
	ByteSize:  "play_addr.data_size",
	Height:    "play_addr.height",
	Width:     "play_addr.width",
	URLs:      "play_addr.url_list",
	URLIndex:  -1,
}

var statisticsKeys = [5]string{
	"statistics.digg_count",
	"statistics.comment_count",
	"statistics.collect_count",
	"statistics.share_count",
	"statistics.play_count",
}

func (Adapter) Platform() platform.Kind { return platform.Douyin }

func (Adapter) Fields() platform.Fields {
	return platform.Fields{
		ID:         "aweme_id",
		Desc:       "desc",
		CreateTime: "create_time",
		Identity: platform.IdentityKeys{
			SecUID:   "author.sec_uid",
			UID:      "author.uid",
			Nickname: "author.nickname",
			MixID:    "mix_info.mix_id",
			MixTitle: "mix_info.mix_name",
		},
	}
}

func (Adapter) Classify(item value.Value) domain.WorkType {
	images := item.List("images")
	if len(images) == 0 {
		return domain.TypeVideo
	}
	for _, img := range images {
		if img.Lookup("video").OK() {
			return domain.TypeLive
		}
	}
	return domain.TypeImage
}

func (a Adapter) Media(item value.Value) platform.Media {
	switch t := a.Classify(item); t {
	case domain.TypeImage, domain.TypeLive:
		m := platform.BlankMedia(t)
		for _, img := range item.List("images") {
			if t == domain.TypeLive && img.Lookup("video").OK() {
				raw := img.List("video.bit_rate")
				res := quality.Select(raw, Variants)
				if res.Outcome == quality.Degraded {
					m.Degrades = append(m.Degrades, platform.Degrade{Result: res, Variants: raw})
				}
				m.Downloads = append(m.Downloads, res.URL)
				continue
			}
			m.Downloads = append(m.Downloads, img.String("url_list[-1]", ""))
		}
		return m
	default:
		raw := item.List("video.bit_rate")
		res := quality.Select(raw, Variants)
		m := platform.Media{
			Type:     domain.TypeVideo,
			Height:   res.Height,
			Width:    res.Width,
			Duration: platform.FormatDuration(item.Int("video.duration", 0) / 1000),
			URI:      item.String("video.play_addr.uri", ""),

			DynamicCover: item.String("video.dynamic_cover.url_list[-1]", ""),
			// 静态封面取第一个地址（质量最高）
			StaticCover: item.String("video.cover.url_list[0]", ""),
		}
		if res.URL != "" {
			m.Downloads = []string{res.URL}
		}
		if res.Outcome == quality.Degraded {
			m.Degrades = []platform.Degrade{{Result: res, Variants: raw}}
		}
		return m
	}
}

func (Adapter) Statistics(item value.Value) domain.Statistics {
	var n [5]int64
	for i, k := range statisticsKeys {
		n[i] = item.Int(k, -1)
	}
	return domain.Statistics{Digg: n[0], Comment: n[1], Collect: n[2], Share: n[3], Play: n[4]}
}

// Tags 取 video_tag[].tag_name，保留空项与源顺序。
func (Adapter) Tags(item value.Value) []string {
	return platform.Strings(item.List("video_tag"), "tag_name", true)
}

func (Adapter) TextExtra(item value.Value) []string {
	return platform.Strings(item.List("text_extra"), "hashtag_name", false)
}

func (Adapter) Music(item value.Value) platform.Music {
	m, ok := item.Node("music")
	if !ok {
		return platform.Music{}
	}
	return platform.Music{
		Author: m.String("author", ""),
		Title:  m.String("title", ""),
		// 部分作品的音乐无法下载
		URL: m.String("play_url.url_list[-1]", ""),
	}
}

func (Adapter) Author(item value.Value) platform.Author {
	a := item.Get("author", value.Value{})
	return platform.Author{
		UID:       a.String("uid", ""),
		SecUID:    a.String("sec_uid", ""),
		UniqueID:  a.String("unique_id", ""),
		Signature: a.String("signature", ""),
		UserAge:   a.Int("user_age", -1),
		Nickname:  a.String("nickname", ""),
	}
}

// Extra 把 anchor_info 序列化为缩进 JSON；缺失时为空。
func (Adapter) Extra(item value.Value) string {
	n, ok := item.Node("anchor_info")
	if !ok {
		return ""
	}
	s, err := n.Indent()
	if err != nil {
		return ""
	}
	return s
}

func (Adapter) Ratio(item value.Value) string {
	return item.String("video.ratio", "")
}

// ShareURL 忽略 handle：抖音链接只由类型与 id 决定。
func (Adapter) ShareURL(t domain.WorkType, id, _ string) string {
	return platform.ShareURL(platform.Douyin, t, id, "")
}

func (Adapter) UserInfo(profile value.Value) (platform.Profile, error) {
	return platform.RequiredProfile(platform.Douyin, profile, "nickname", "sec_uid", "uid")
}

// MixID 返回作品所属合集 id（mix_info.mix_id）。
func MixID(item value.Value) string {
	return item.String("mix_info.mix_id", "")
}
