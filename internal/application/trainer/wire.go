package trainer

import "github.com/google/wire"

// ProviderSet 评审工作区 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDeps,
	NewRegistry,
)
