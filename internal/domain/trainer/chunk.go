package trainer

// DocumentRef 片段所属文档的引用
type DocumentRef struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Chunk 检索得到的文档片段
// Score 仅用于排序，不保证跨调用归一化
type Chunk struct {
	ID           string         `json:"id"`
	Content      string         `json:"content"`
	SectionTitle string         `json:"section_title,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	StartIndex   *int           `json:"start_index,omitempty"`
	EndIndex     *int           `json:"end_index,omitempty"`
	Page         *int           `json:"page,omitempty"`
	Score        *float64       `json:"score,omitempty"`
	Source       string         `json:"source,omitempty"`
	Reference    string         `json:"reference,omitempty"`
	Document     *DocumentRef   `json:"document,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	TokenCount   int            `json:"token_count,omitempty"`
}

// ScoreValue 返回分数，缺省为 0
func (c *Chunk) ScoreValue() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// Clone 深拷贝片段，返回值与原片段不共享任何可变字段
func (c Chunk) Clone() Chunk {
	out := c
	out.StartIndex = cloneInt(c.StartIndex)
	out.EndIndex = cloneInt(c.EndIndex)
	out.Page = cloneInt(c.Page)
	if c.Score != nil {
		s := *c.Score
		out.Score = &s
	}
	if c.Document != nil {
		d := *c.Document
		out.Document = &d
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CloneChunks 深拷贝片段列表，nil 输入返回空列表
func CloneChunks(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Clone())
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// Float64 返回浮点数指针，便于构造可选分数
func Float64(v float64) *float64 {
	return &v
}

// Int 返回整数指针，便于构造可选偏移
func Int(v int) *int {
	return &v
}
