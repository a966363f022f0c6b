package domain

import (
	"fmt"
	"strings"
)

// WorkType 是作品分类。取值即记录中 type 列的文本。
type WorkType string

const (
	TypeVideo WorkType = "视频"
	TypeImage WorkType = "图集"
	TypeLive  WorkType = "实况"
)

func (t WorkType) Valid() bool {
	switch t {
	case TypeVideo, TypeImage, TypeLive:
		return true
	}
	return false
}

// ParseWorkType 接受中文取值或 video/image/live 英文别名。
func ParseWorkType(s string) (WorkType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "视频", "video":
		return TypeVideo, true
	case "图集", "image":
		return TypeImage, true
	case "实况", "live":
		return TypeLive, true
	}
	return "", false
}

// Statistics 是五个互动计数，缺失为 -1。
type Statistics struct {
	Digg    int64 `json:"digg_count"`
	Comment int64 `json:"comment_count"`
	Collect int64 `json:"collect_count"`
	Share   int64 `json:"share_count"`
	Play    int64 `json:"play_count"`
}

// MissingStatistics 返回全部为 -1 的计数。
func MissingStatistics() Statistics {
	return Statistics{Digg: -1, Comment: -1, Collect: -1, Share: -1, Play: -1}
}

// WorkItem 是一个作品的规范化平面记录。
//
// 不变量：
// - ID 非空（否则在流水线中被丢弃）
// - CreateTime 总是由 CreateTimestamp 格式化得到
// - 离开流水线后不再修改
type WorkItem struct {
	CollectionTime  string   `json:"collection_time"`
	Type            WorkType `json:"type"`
	ID              string   `json:"id"`
	Desc            string   `json:"desc"`
	TextExtra       []string `json:"text_extra"`
	Tag             []string `json:"tag"`
	CreateTime      string   `json:"create_time"`
	CreateTimestamp int64    `json:"create_timestamp"`
	URI             string   `json:"uri"`
	Ratio           string   `json:"ratio"`
	Width           int64    `json:"width"`
	Height          int64    `json:"height"`
	Duration        string   `json:"duration"`

	UID       string `json:"uid"`
	SecUID    string `json:"sec_uid"`
	UniqueID  string `json:"unique_id"`
	Signature string `json:"signature"`
	UserAge   int64  `json:"user_age"`
	Nickname  string `json:"nickname"`
	Mark      string `json:"mark"`

	MusicAuthor string `json:"music_author"`
	MusicTitle  string `json:"music_title"`
	MusicURL    string `json:"music_url"`

	StaticCover  string `json:"static_cover"`
	DynamicCover string `json:"dynamic_cover"`

	Statistics

	Extra     string   `json:"extra"`
	ShareURL  string   `json:"share_url"`
	Downloads []string `json:"downloads"`
}

// FieldKeys 是记录器的默认列顺序。
var FieldKeys = []string{
	"collection_time", "type", "id", "desc", "text_extra", "tag",
	"create_time", "create_timestamp", "uri", "ratio", "width", "height", "duration",
	"uid", "sec_uid", "unique_id", "signature", "user_age", "nickname", "mark",
	"music_author", "music_title", "music_url", "static_cover", "dynamic_cover",
	"digg_count", "comment_count", "collect_count", "share_count", "play_count",
	"extra", "share_url", "downloads",
}

// Field 按列名取值。序列字段以单个空格拼接为一个单元格。
func (w WorkItem) Field(key string) (any, bool) {
	switch key {
	case "collection_time":
		return w.CollectionTime, true
	case "type":
		return string(w.Type), true
	case "id":
		return w.ID, true
	case "desc":
		return w.Desc, true
	case "text_extra":
		return strings.Join(w.TextExtra, " "), true
	case "tag":
		return strings.Join(w.Tag, " "), true
	case "create_time":
		return w.CreateTime, true
	case "create_timestamp":
		return w.CreateTimestamp, true
	case "uri":
		return w.URI, true
	case "ratio":
		return w.Ratio, true
	case "width":
		return w.Width, true
	case "height":
		return w.Height, true
	case "duration":
		return w.Duration, true
	case "uid":
		return w.UID, true
	case "sec_uid":
		return w.SecUID, true
	case "unique_id":
		return w.UniqueID, true
	case "signature":
		return w.Signature, true
	case "user_age":
		return w.UserAge, true
	case "nickname":
		return w.Nickname, true
	case "mark":
		return w.Mark, true
	case "music_author":
		return w.MusicAuthor, true
	case "music_title":
		return w.MusicTitle, true
	case "music_url":
		return w.MusicURL, true
	case "static_cover":
		return w.StaticCover, true
	case "dynamic_cover":
		return w.DynamicCover, true
	case "digg_count":
		return w.Digg, true
	case "comment_count":
		return w.Comment, true
	case "collect_count":
		return w.Collect, true
	case "share_count":
		return w.Share, true
	case "play_count":
		return w.Play, true
	case "extra":
		return w.Extra, true
	case "share_url":
		return w.ShareURL, true
	case "downloads":
		return strings.Join(w.Downloads, " "), true
	}
	return nil, false
}

// Row 按 keys 顺序取值；未知列名返回错误。
func (w WorkItem) Row(keys []string) ([]any, error) {
	row := make([]any, 0, len(keys))
	for _, k := range keys {
		v, ok := w.Field(k)
		if !ok {
			return nil, fmt.Errorf("domain: 未知字段 %q", k)
		}
		row = append(row, v)
	}
	return row, nil
}
