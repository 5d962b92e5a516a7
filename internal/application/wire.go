package application

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/application/trainer"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	proxy.ProviderSet,
	trainer.ProviderSet,
)
