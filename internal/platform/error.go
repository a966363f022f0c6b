package platform

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/SVEX/internal/value"
)

// ErrMissingField 表示账号数据缺少必需字段。
var ErrMissingField = errors.New("缺少必需字段")

// Error 是适配器阶段的可追溯错误。
type Error struct {
	Platform Kind
	Stage    string // 例如 "user_info"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("platform=%s stage=%s: %v", e.Platform, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RequiredProfile 按 nickname / sec_uid / uid 路径读取账号身份。
// 字段必须结构上存在（值可以为空字符串），否则返回 ErrMissingField。
func RequiredProfile(k Kind, node value.Value, nickname, secUID, uid string) (Profile, error) {
	vals := make([]string, 0, 3)
	for _, p := range []string{nickname, secUID, uid} {
		l := node.Lookup(p)
		if l.State == value.Missing {
			return Profile{}, &Error{Platform: k, Stage: "user_info", Err: fmt.Errorf("%w: %s", ErrMissingField, p)}
		}
		s, _ := l.Value.Str()
		vals = append(vals, s)
	}
	return Profile{Nickname: vals[0], SecUID: vals[1], UID: vals[2]}, nil
}
