package trainer

import (
	"strings"
	"time"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Quality 人工评审的答案质量
type Quality string

const (
	QualityUnset Quality = ""
	QualityGood  Quality = "good"
	QualityBad   Quality = "bad"
)

// Valid 检查质量取值
func (q Quality) Valid() bool {
	return q == QualityUnset || q == QualityGood || q == QualityBad
}

// Message 对话中的一条消息
// 引用列表归消息所有
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Citations []Chunk   `json:"citations,omitempty"`
	Preferred *string   `json:"preferred,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Quality   Quality   `json:"quality,omitempty"`
}

// Clone 深拷贝消息
func (m Message) Clone() Message {
	out := m
	if m.Citations != nil {
		out.Citations = CloneChunks(m.Citations)
	}
	if m.Preferred != nil {
		p := *m.Preferred
		out.Preferred = &p
	}
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}

// AddTag 添加标签
// 去除首尾空白，空标签忽略，已存在的标签不重复添加，保持插入顺序
// 返回是否发生变化
func (m *Message) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range m.Tags {
		if t == tag {
			return false
		}
	}
	m.Tags = append(m.Tags, tag)
	return true
}

// RemoveTag 移除标签，返回是否发生变化
func (m *Message) RemoveTag(tag string) bool {
	for i, t := range m.Tags {
		if t == tag {
			m.Tags = append(m.Tags[:i:i], m.Tags[i+1:]...)
			return true
		}
	}
	return false
}
