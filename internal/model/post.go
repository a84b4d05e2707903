package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 帖子状态
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// 审核动作，写入 history
const (
	ActionSubmit    = "SUBMIT"
	ActionAccept    = "ACCEPT"
	ActionReject    = "REJECT"
	ActionSetFBLink = "SET_FB_LINK"
)

// HistoryEntry 单条审核记录
type HistoryEntry struct {
	Action string    `json:"action"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
}

// History 只追加的审核历史，整体以 JSON 存储，
// 与状态变更在同一事务内整字段替换以保证原子性
type History []HistoryEntry

func (h History) Value() (driver.Value, error) {
	if h == nil {
		h = History{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *History) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = History{}
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("unsupported history type %T", src)
	}
}

// Post 匿名帖子主体
type Post struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	// Number 公开序号，审核通过时一次性分配，单调递增不复用
	Number  *int64 `gorm:"uniqueIndex" json:"number"`
	Title   string `gorm:"type:varchar(255)" json:"title,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`
	Tag     string `gorm:"type:varchar(64);index:idx_post_tag" json:"tag"`
	// Hash 所有权令牌，仅创建时返回一次，列表中绝不暴露
	Hash      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Status    string    `gorm:"type:varchar(16);index;not null" json:"status"`
	FBLink    string    `gorm:"type:varchar(512)" json:"fbLink,omitempty"`
	Reason    string    `gorm:"type:varchar(512)" json:"-"`
	History   History   `gorm:"type:text" json:"-"`
	CreatedAt time.Time `gorm:"index:idx_post_created;not null" json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (Post) TableName() string { return "posts" }

// Accepted number 非空当且仅当状态为 ACCEPTED
func (p *Post) Accepted() bool { return p.Status == StatusAccepted }
