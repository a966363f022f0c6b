package platform

import "github.com/John-Robertt/SVEX/internal/domain"

// ShareURL 由 (平台, 类型, id, handle) 确定性地生成分享链接；其它组合返回 ""。
//
// 抖音：视频 -> /video/{id}，图集与实况 -> /note/{id}（忽略 handle）
// TikTok：必须有 handle；视频 -> /@{handle}/video/{id}，图集 -> /@{handle}/photo/{id}
func ShareURL(k Kind, t domain.WorkType, id, handle string) string {
	if id == "" {
		return ""
	}
	switch k {
	case Douyin:
		switch t {
		case domain.TypeVideo:
			return "https://www.douyin.com/video/" + id
		case domain.TypeImage, domain.TypeLive:
			return "https://www.douyin.com/note/" + id
		}
	case TikTok:
		if handle == "" {
			return ""
		}
		switch t {
		case domain.TypeVideo:
			return "https://www.tiktok.com/@" + handle + "/video/" + id
		case domain.TypeImage:
			return "https://www.tiktok.com/@" + handle + "/photo/" + id
		}
	}
	return ""
}
