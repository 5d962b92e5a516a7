package trainer

import "time"

// Department 部门
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document 部门下的文档
type Document struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	DepartmentID string      `json:"departmentId"`
	Size         *int64      `json:"size,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	Department   *Department `json:"department,omitempty"`
}

// ChatAnswer 一次问答的结果
type ChatAnswer struct {
	SessionID string  `json:"sessionId"`
	Answer    string  `json:"answer"`
	Sources   []Chunk `json:"sources"`
	MessageID string  `json:"messageId,omitempty"`
	Matched   bool    `json:"matched,omitempty"`
}

// UploadResult 文档上传结果
type UploadResult struct {
	Document Document       `json:"doc"`
	Chunks   []Chunk        `json:"chunks"`
	Raw      map[string]any `json:"-"`
}

// UploadFile 待上传文件
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Credential 登录凭据
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	User         map[string]any
}

// Expired 判断凭据是否已过期，ExpiresAt 为零值时视为不过期
func (c *Credential) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Bearer 返回 Authorization 头的值
func (c *Credential) Bearer() string {
	if c == nil || c.AccessToken == "" {
		return ""
	}
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + c.AccessToken
}
