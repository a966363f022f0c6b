// Package platform 把“平台字段差异”限制在适配器内部；提取流水线只依赖统一接口。
package platform

import (
	"fmt"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/quality"
	"github.com/John-Robertt/SVEX/internal/value"
)

// Kind 是平台标识（小写）。
type Kind string

const (
	Douyin Kind = "douyin"
	TikTok Kind = "tiktok"
)

// IdentityKeys 是身份预处理使用的字段路径表。
type IdentityKeys struct {
	SecUID   string
	UID      string
	Nickname string
	MixID    string
	MixTitle string
}

// Fields 描述作品顶层基础字段的路径。
type Fields struct {
	ID         string
	Desc       string
	CreateTime string // 同时是原始数据日期筛选使用的键
	Identity   IdentityKeys
}

// Degrade 记录一次画质解析降级（供上层记日志）。
type Degrade struct {
	Result   quality.Result
	Variants []value.Value
}

// Media 是作品分类与下载信息。
//
// 约束：
// - 图集/实况：Height/Width 为 -1，Duration 为 00:00:00，URI 与封面为空
// - 视频：Downloads 至多一个地址
type Media struct {
	Type      domain.WorkType
	Height    int64
	Width     int64
	Downloads []string
	Duration  string
	URI       string

	DynamicCover string
	StaticCover  string

	Degrades []Degrade
}

// BlankMedia 返回图集/实况的基础媒体信息。
func BlankMedia(t domain.WorkType) Media {
	return Media{Type: t, Height: -1, Width: -1, Duration: "00:00:00"}
}

type Music struct {
	Author string
	Title  string
	URL    string
}

// Author 是作品作者信息。Nickname 为原始昵称，缺失时为空。
type Author struct {
	UID       string
	SecUID    string
	UniqueID  string
	Signature string
	UserAge   int64
	Nickname  string
}

// Profile 是账号主页数据中的身份字段。
type Profile struct {
	Nickname string
	SecUID   string
	UID      string
}

// Adapter 是单个平台的字段映射。
//
// 约束：
// - 所有方法必须是纯函数：相同输入 => 相同输出
// - 字段缺失一律退化为文档化的哨兵值（""、-1、nil），从不 panic
type Adapter interface {
	Platform() Kind
	Fields() Fields
	Classify(item value.Value) domain.WorkType
	Media(item value.Value) Media
	Statistics(item value.Value) domain.Statistics
	Tags(item value.Value) []string
	TextExtra(item value.Value) []string
	Music(item value.Value) Music
	Author(item value.Value) Author
	Extra(item value.Value) string
	Ratio(item value.Value) string
	ShareURL(t domain.WorkType, id, handle string) string
	UserInfo(profile value.Value) (Profile, error)
}

// FormatDuration 把秒数格式化为 HH:MM:SS（小时不截断）。
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// Strings 取序列中每个元素 path 处的字符串（缺失为 ""）。keepEmpty 为 false 时丢弃空串。
func Strings(items []value.Value, path string, keepEmpty bool) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := it.String(path, "")
		if s == "" && !keepEmpty {
			continue
		}
		out = append(out, s)
	}
	return out
}
