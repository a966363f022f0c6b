package domain

// Identity 是账号/合集预处理的结果三元组 (id, name, mark)。
// 只在一次批量处理中用于标记上下文，不持久化。
type Identity struct {
	ID   string
	Name string
	Mark string
}

func (i Identity) IsZero() bool {
	return i.ID == "" && i.Name == "" && i.Mark == ""
}
