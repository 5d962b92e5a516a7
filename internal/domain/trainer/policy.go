package trainer

// FailurePolicy 后端失败时的处理策略
type FailurePolicy string

const (
	// FailOpen 失败时按成功处理并标记 fallback
	FailOpen FailurePolicy = "fail-open"
	// FailClosed 失败直接返回给调用方
	FailClosed FailurePolicy = "fail-closed"
)

// ParsePolicy 解析策略，无法识别时返回默认值
func ParsePolicy(s string, def FailurePolicy) FailurePolicy {
	switch FailurePolicy(s) {
	case FailOpen, FailClosed:
		return FailurePolicy(s)
	}
	return def
}

// Policies 各操作的失败策略
type Policies struct {
	DocumentDelete FailurePolicy `json:"document_delete" yaml:"document_delete"`
	FeedbackSubmit FailurePolicy `json:"feedback_submit" yaml:"feedback_submit"`
}

// DefaultPolicies 删除默认放行，反馈默认拒绝
func DefaultPolicies() Policies {
	return Policies{
		DocumentDelete: FailOpen,
		FeedbackSubmit: FailClosed,
	}
}
