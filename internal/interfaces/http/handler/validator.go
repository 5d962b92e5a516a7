package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

var registerOnce sync.Once

// RegisterValidators 注册自定义 binding 标签
//
//	rerank_method: 空值或已知的重排序方法
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("rerank_method", func(fl validator.FieldLevel) bool {
			m := trainer.RerankMethod(fl.Field().String())
			return m == "" || m.Valid()
		})
	})
}
