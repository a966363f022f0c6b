package payload

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/value"
)

// 详情页中携带注水数据的 script。
const (
	douyinScript = "script#RENDER_DATA"                        // URL 编码的 JSON
	tiktokScript = "script#__UNIVERSAL_DATA_FOR_REHYDRATION__" // 原始 JSON
)

var ErrNoHydration = errors.New("页面中没有注水数据")

// FromHTML 从保存的详情页中提取注水 JSON，再按 Unwrap 的规则拆出作品。
func FromHTML(b []byte) ([]value.Value, error) {
	raw, err := Hydration(b)
	if err != nil {
		return nil, err
	}
	v, err := value.Parse([]byte(raw))
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeDecodeFailed, Err: fmt.Errorf("注水数据：%w", err)}
	}
	items, err := Unwrap(v)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeDecodeFailed, Err: err}
	}
	return items, nil
}

// Hydration 返回页面注水数据的 JSON 文本。RENDER_DATA 会先做 URL 解码。
func Hydration(b []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", &Error{Code: domain.ErrCodeDecodeFailed, Err: err}
	}
	if s := doc.Find(tiktokScript).First(); s.Length() > 0 {
		if text := strings.TrimSpace(s.Text()); text != "" {
			return text, nil
		}
	}
	if s := doc.Find(douyinScript).First(); s.Length() > 0 {
		text := strings.TrimSpace(s.Text())
		decoded, err := url.PathUnescape(text)
		if err != nil {
			return "", &Error{Code: domain.ErrCodeDecodeFailed, Err: fmt.Errorf("RENDER_DATA：%w", err)}
		}
		if decoded != "" {
			return decoded, nil
		}
	}
	return "", &Error{Code: domain.ErrCodeDecodeFailed, Err: ErrNoHydration}
}
