package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// 使用内置的 BPE 文件，不访问网络
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const encodingName = "cl100k_base"

// Counter 片段 token 计数器
type Counter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	instance *Counter
	once     sync.Once
)

// Default 获取计数器单例
// 编码加载失败时退化为按字符估算
func Default() *Counter {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			log.NewModuleLogger("tokenizer", "counter").Warn("Failed to load encoding, falling back to estimate",
				"encoding", encodingName,
				"error", err,
			)
		}
		instance = &Counter{encoding: enc}
	})
	return instance
}

// CountTokens 计算文本的 token 数
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.encoding == nil {
		return estimate(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// Annotate 为片段填充 TokenCount，原地修改
func (c *Counter) Annotate(chunks []trainer.Chunk) {
	for i := range chunks {
		chunks[i].TokenCount = c.CountTokens(chunks[i].Content)
	}
}

// estimate 约 4 个字符一个 token
func estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
