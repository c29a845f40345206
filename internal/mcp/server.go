package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/govscout/gov-index/internal/config/configfx"
	"github.com/govscout/gov-index/internal/constants"
	"github.com/govscout/gov-index/internal/factory"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/search"
	"github.com/govscout/gov-index/internal/storage"
)

// ServerOptions contains configuration for the MCP server
type ServerOptions struct {
	DB          string // SQLite database path
	SubgraphURL string // Governance subgraph endpoint
	EmbedURL    string // Embedding API URL
}

// Server wraps an MCP server with configuration options
type Server struct {
	opts       ServerOptions
	server     *server.MCPServer
	components *factory.Components
	log        *slog.Logger
}

// NewWithOptions returns an MCP server exposing the proposal mirror tools.
// Components are shared across requests; a tool call carrying its own db
// path gets a throwaway set against that database instead.
func NewWithOptions(opts ServerOptions, log *slog.Logger) *server.MCPServer {
	if opts.SubgraphURL == "" {
		opts.SubgraphURL = constants.DefaultSubgraphURL
	}
	if opts.EmbedURL == "" {
		opts.EmbedURL = constants.DefaultEmbedURL
	}

	srv := &Server{
		opts: opts,
		log:  log,
		server: server.NewMCPServer(
			"gov-index/mcp",
			"0.1.0",
			server.WithToolCapabilities(true),
		),
	}

	if opts.DB != "" {
		components, err := factory.New(srv.config(opts.DB), log)
		if err != nil {
			log.Error("initialize components failed", "error", err)
		} else {
			srv.components = components
		}
	}

	srv.server.AddTool(newListProposalsTool(), srv.handleListProposals)
	srv.server.AddTool(newGetProposalTool(), srv.handleGetProposal)
	srv.server.AddTool(newGetProposalVotesTool(), srv.handleGetProposalVotes)
	srv.server.AddTool(newSearchProposalsTool(), srv.handleSearchProposals)
	srv.server.AddTool(newSyncProposalsTool(), srv.handleSyncProposals)
	srv.server.AddTool(newIndexEmbeddingsTool(), srv.handleIndexEmbeddings)

	return srv.server
}

func (srv *Server) config(dbPath string) configfx.Config {
	return configfx.Config{
		DBPath:      dbPath,
		SubgraphURL: srv.opts.SubgraphURL,
		EmbedURL:    srv.opts.EmbedURL,
		Dimension:   constants.VectorDimension,
	}
}

// componentsFor resolves the component set for one tool call. The cleanup
// function is a no-op for the shared set.
func (srv *Server) componentsFor(req mcp.CallToolRequest) (*factory.Components, func(), error) {
	dbPath := req.GetString("db", srv.opts.DB)
	if dbPath == srv.opts.DB && srv.components != nil {
		return srv.components, func() {}, nil
	}
	if dbPath == "" {
		return nil, nil, fmt.Errorf("database path must be specified (through parameters or server configuration)")
	}
	components, err := factory.New(srv.config(dbPath), srv.log)
	if err != nil {
		return nil, nil, err
	}
	return components, func() { _ = components.Close() }, nil
}

// Tool definitions
func newListProposalsTool() mcp.Tool {
	return mcp.NewTool(
		"list_proposals",
		mcp.WithDescription("List mirrored governance proposals"),
		mcp.WithString("status", mcp.Description("Filter by proposal status")),
		mcp.WithNumber("limit", mcp.Description("Max proposals to return"), mcp.DefaultNumber(20)),
		mcp.WithNumber("offset", mcp.Description("Pagination offset"), mcp.DefaultNumber(0)),
		mcp.WithString("order", mcp.Description("Creation time order: asc or desc"), mcp.DefaultString("desc")),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

func newGetProposalTool() mcp.Tool {
	return mcp.NewTool(
		"get_proposal",
		mcp.WithDescription("Get one proposal by number or hex id"),
		mcp.WithString("id_or_number", mcp.Description("Proposal number or hex id"), mcp.Required()),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

func newGetProposalVotesTool() mcp.Tool {
	return mcp.NewTool(
		"get_proposal_votes",
		mcp.WithDescription("List votes on a proposal with an unfiltered summary"),
		mcp.WithString("id_or_number", mcp.Description("Proposal number or hex id"), mcp.Required()),
		mcp.WithString("support", mcp.Description("Filter by vote: for, against or abstain")),
		mcp.WithNumber("limit", mcp.Description("Max votes to return"), mcp.DefaultNumber(50)),
		mcp.WithNumber("offset", mcp.Description("Pagination offset"), mcp.DefaultNumber(0)),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

func newSearchProposalsTool() mcp.Tool {
	return mcp.NewTool(
		"search_proposals",
		mcp.WithDescription("Semantic search over proposal text"),
		mcp.WithString("query", mcp.Description("Natural language query"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Max proposals to return"), mcp.DefaultNumber(constants.SearchDefaultLimit)),
		mcp.WithString("status", mcp.Description("Filter by proposal status")),
		mcp.WithNumber("threshold", mcp.Description("Minimum cosine similarity"), mcp.DefaultNumber(constants.SearchDefaultThreshold)),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

func newSyncProposalsTool() mcp.Tool {
	return mcp.NewTool(
		"sync_proposals",
		mcp.WithDescription("Mirror proposals and votes from the governance subgraph"),
		mcp.WithBoolean("full", mcp.Description("Re-sync the entire corpus"), mcp.DefaultBool(false)),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

func newIndexEmbeddingsTool() mcp.Tool {
	return mcp.NewTool(
		"index_embeddings",
		mcp.WithDescription("Embed proposals that have no chunks yet"),
		mcp.WithString("db", mcp.Description("SQLite DB path")),
	)
}

// Handlers
func (srv *Server) handleListProposals(
	_ context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	opts := storage.ListOptions{
		Limit:  req.GetInt("limit", 20),
		Offset: req.GetInt("offset", 0),
		Order:  storage.OrderDesc,
	}
	switch order := req.GetString("order", "desc"); order {
	case "asc":
		opts.Order = storage.OrderAsc
	case "desc":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown order %q (expected asc or desc)", order)), nil
	}
	status, result := statusParam(req)
	if result != nil {
		return result, nil
	}
	opts.Status = status

	proposals, err := components.Proposals.ListProposals(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	total, err := components.Proposals.CountProposals(status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"proposals": proposals,
		"total":     total,
	}), nil
}

func (srv *Server) handleGetProposal(
	_ context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	idOrNumber, err := req.RequireString("id_or_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	proposal, err := resolveProposal(components.Proposals, idOrNumber)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if proposal == nil {
		return notFound(idOrNumber), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"found":    true,
		"proposal": proposal,
	}), nil
}

func (srv *Server) handleGetProposalVotes(
	_ context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	idOrNumber, err := req.RequireString("id_or_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	proposal, err := resolveProposal(components.Proposals, idOrNumber)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if proposal == nil {
		return notFound(idOrNumber), nil
	}

	opts := storage.VoteOptions{
		Limit:  req.GetInt("limit", 50),
		Offset: req.GetInt("offset", 0),
	}
	if raw := req.GetString("support", ""); raw != "" {
		support, ok := models.StringToVoteSupport(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown support %q (expected for, against or abstain)", raw)), nil
		}
		opts.Support = &support
	}

	votes, err := components.Votes.ListVotes(proposal.ProposalID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := components.Votes.VoteSummary(proposal.ProposalID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"found":           true,
		"proposal_number": proposal.ProposalNumber,
		"votes":           votes,
		"summary":         summary,
	}), nil
}

func (srv *Server) handleSearchProposals(
	_ context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	status, result := statusParam(req)
	if result != nil {
		return result, nil
	}
	resp, err := components.Searcher.Search(search.Request{
		Query:     query,
		Status:    status,
		Limit:     req.GetInt("limit", 0),
		Threshold: float32(req.GetFloat("threshold", 0)),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(resp), nil
}

func (srv *Server) handleSyncProposals(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	var result models.SyncResult
	if req.GetBool("full", false) {
		result, err = components.Engine.Full(ctx)
	} else {
		result, err = components.Engine.Incremental(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(result), nil
}

func (srv *Server) handleIndexEmbeddings(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	components, cleanup, err := srv.componentsFor(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer cleanup()

	result, err := components.Indexer.Run(ctx, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(result), nil
}

// resolveProposal looks up by number when the argument is all digits and by
// hex id otherwise. Absence is (nil, nil), not an error.
func resolveProposal(store storage.ProposalStore, idOrNumber string) (*models.Proposal, error) {
	trimmed := strings.TrimSpace(idOrNumber)
	if trimmed == "" {
		return nil, fmt.Errorf("id_or_number must not be empty")
	}
	if number, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return store.GetProposalByNumber(number)
	}
	return store.GetProposalByID(trimmed)
}

func statusParam(req mcp.CallToolRequest) (*models.ProposalStatus, *mcp.CallToolResult) {
	raw := req.GetString("status", "")
	if raw == "" {
		return nil, nil
	}
	status, ok := models.StringToProposalStatus(raw)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown status %q", raw))
	}
	return &status, nil
}

func notFound(idOrNumber string) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"found":   false,
		"message": fmt.Sprintf("proposal %s not found", idOrNumber),
	})
}
