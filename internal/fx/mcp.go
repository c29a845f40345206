package fx

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/config/configfx"
	appmcp "github.com/govscout/gov-index/internal/mcp"
)

// MCPParams represents dependencies for MCP server
type MCPParams struct {
	fx.In

	Config *configfx.Config
	Log    *slog.Logger
}

// NewMCPServer creates the MCP server. It opens its own component set so
// tool calls carrying a custom db path stay isolated from the CLI's stores.
func NewMCPServer(params MCPParams) *server.MCPServer {
	return appmcp.NewWithOptions(appmcp.ServerOptions{
		DB:          params.Config.DBPath,
		SubgraphURL: params.Config.SubgraphURL,
		EmbedURL:    params.Config.EmbedURL,
	}, params.Log)
}

// MCPModule provides MCP server components
var MCPModule = fx.Module("mcp",
	fx.Provide(NewMCPServer),
)
