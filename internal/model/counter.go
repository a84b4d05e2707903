package model

// Counter 命名计数器，公开序号由此原子分配。
// 删除帖子不回退计数，保证编号永不复用。
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string { return "counters" }

// CounterPostNumber 帖子公开序号计数器
const CounterPostNumber = "post_number"
