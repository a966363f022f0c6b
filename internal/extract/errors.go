package extract

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/SVEX/internal/domain"
)

const (
	CodeIdentityMismatch = domain.ErrCodeIdentityMismatch
	CodeNotFound         = domain.ErrCodeNotFound
	CodeUnsupportedMode  = domain.ErrCodeUnsupportedMode
	CodeInvalidInput     = domain.ErrCodeInvalidInput
	CodePersistFailed    = domain.ErrCodePersistFailed
)

var (
	ErrIdentityMismatch = errors.New("账号标识不一致")
	ErrNotFound         = errors.New("未找到匹配的账号或合集")
	ErrUnknownMode      = errors.New("不支持的模式")
)

// Error 是流水线与身份预处理的可归类错误。
// 上层据此把失败写入 report 的 error_code。
type Error struct {
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s：%s：%v", e.Code, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s：%s", e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrIdentityMismatch) 等按 Code 匹配。
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIdentityMismatch:
		return e.Code == CodeIdentityMismatch
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrUnknownMode:
		return e.Code == CodeUnsupportedMode
	}
	return false
}

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
