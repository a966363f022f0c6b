package extract

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/value"
)

// 列表预处理模式。
const (
	PreprocessPost = "post" // 账号作品：按作者 sec_uid 匹配
	PreprocessMix  = "mix"  // 合集作品：按合集 id 匹配
)

// Preprocess 解析批量处理的身份三元组 (id, name, mark)。
//
// data 为映射时视为账号主页数据：sec_uid 必须等于 userID，否则返回 IdentityMismatch 与空三元组。
// data 为序列时按 mode 逐个匹配候选条目，首个匹配即返回；无匹配返回 NotFound。
func (e *Extractor) Preprocess(data value.Value, a platform.Adapter, mode, mark, userID string) (domain.Identity, error) {
	if a == nil {
		return domain.Identity{}, &Error{Code: CodeInvalidInput, Msg: "adapter 不能为空"}
	}
	switch data.Kind() {
	case value.KindMapping:
		return e.preprocessProfile(data, a, mark, userID)
	case value.KindSequence:
		return e.preprocessList(data.Items(), a, mode, mark, userID)
	default:
		return domain.Identity{}, &Error{Code: CodeInvalidInput, Msg: "预处理数据必须是对象或数组，实际为 " + data.Kind().String()}
	}
}

func (e *Extractor) preprocessProfile(data value.Value, a platform.Adapter, mark, userID string) (domain.Identity, error) {
	info, err := a.UserInfo(data)
	if err != nil {
		e.log.Error("提取账号信息失败", true, "err", err)
		return domain.Identity{}, &Error{Code: CodeIdentityMismatch, Msg: "sec_user_id " + userID + " 无法校验", Err: err}
	}
	if info.SecUID != userID {
		msg := fmt.Sprintf("sec_user_id %s 与 %s 不一致", userID, info.SecUID)
		e.log.Error(msg, true)
		return domain.Identity{}, &Error{Code: CodeIdentityMismatch, Msg: msg}
	}
	name := e.cleaner.FilterName(info.Nickname, info.UID)
	return domain.Identity{
		ID:   info.UID,
		Name: name,
		Mark: e.cleaner.FilterName(mark, name),
	}, nil
}

func (e *Extractor) preprocessList(items []value.Value, a platform.Adapter, mode, mark, userID string) (domain.Identity, error) {
	if userID == "" {
		return domain.Identity{}, &Error{Code: CodeInvalidInput, Msg: "userID 不能为空"}
	}
	keys := a.Fields().Identity
	var match, idKey, nameKey string
	switch mode {
	case PreprocessPost:
		match, idKey, nameKey = keys.SecUID, keys.UID, keys.Nickname
	case PreprocessMix:
		match, idKey, nameKey = keys.MixID, keys.MixID, keys.MixTitle
	default:
		return domain.Identity{}, &Error{Code: CodeUnsupportedMode, Msg: fmt.Sprintf("预处理模式 %q", mode)}
	}

	for _, item := range items {
		if item.String(match, "") != userID {
			continue
		}
		id := item.String(idKey, "")
		name := e.cleaner.FilterName(item.String(nameKey, id), "")
		return domain.Identity{
			ID:   id,
			Name: strings.TrimSpace(name),
			Mark: strings.TrimSpace(e.cleaner.FilterName(mark, name)),
		}, nil
	}
	return domain.Identity{}, &Error{Code: CodeNotFound, Msg: "提取账号信息或合集信息失败"}
}
