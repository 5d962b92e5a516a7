package interfaces

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/interfaces/http"
	"github.com/ragtrainer/gateway/internal/interfaces/mcp"
)

// ProviderSet Interfaces 层总 ProviderSet
var ProviderSet = wire.NewSet(
	http.ProviderSet,
	mcp.ProviderSet,
)
