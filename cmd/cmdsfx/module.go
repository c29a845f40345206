package cmdsfx

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/indexer"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/search"
	"github.com/govscout/gov-index/internal/storage"
	syncengine "github.com/govscout/gov-index/internal/sync"
)

// CommandRunner provides methods to run different application commands
type CommandRunner struct {
	proposals     storage.ProposalStore
	votes         storage.VoteStore
	engine        *syncengine.Engine
	indexJob      *indexer.Job
	searchService *search.Service
	mcpServer     *server.MCPServer
}

// Params represents dependencies for command runner
type Params struct {
	fx.In

	Proposals     storage.ProposalStore `optional:"true"`
	Votes         storage.VoteStore     `optional:"true"`
	Engine        *syncengine.Engine    `optional:"true"`
	IndexJob      *indexer.Job          `optional:"true"`
	SearchService *search.Service       `optional:"true"`
	MCPServer     *server.MCPServer     `optional:"true"`
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(params Params) *CommandRunner {
	return &CommandRunner{
		proposals:     params.Proposals,
		votes:         params.Votes,
		engine:        params.Engine,
		indexJob:      params.IndexJob,
		searchService: params.SearchService,
		mcpServer:     params.MCPServer,
	}
}

// RunSync executes an incremental or full sync and prints the result
func (r *CommandRunner) RunSync(ctx context.Context, full bool) error {
	if r.engine == nil {
		return fmt.Errorf("sync engine not available")
	}

	var (
		result models.SyncResult
		err    error
	)
	if full {
		result, err = r.engine.Full(ctx)
	} else {
		result, err = r.engine.Incremental(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d new, %d updated\n", result.RunID, result.Synced, result.Updated)
	for _, msg := range result.Errors {
		fmt.Printf("  error: %s\n", msg)
	}
	return nil
}

// RunIndex embeds proposals that have no chunks yet, with progress output
func (r *CommandRunner) RunIndex(ctx context.Context) error {
	if r.indexJob == nil {
		return fmt.Errorf("indexer not available")
	}

	result, err := r.indexJob.Run(ctx, func(done, total int) {
		fmt.Printf("\r[%3.0f%%] proposals:%d/%d", float64(done)/float64(total)*100, done, total)
	})
	if err != nil {
		fmt.Println()
		return err
	}
	if result.Indexed > 0 || len(result.Errors) > 0 {
		fmt.Println()
	}
	fmt.Printf("indexed %d proposals\n", result.Indexed)
	for _, msg := range result.Errors {
		fmt.Printf("  error: %s\n", msg)
	}
	return nil
}

// RunSearch executes semantic search and prints ranked hits
func (r *CommandRunner) RunSearch(req search.Request) error {
	if r.searchService == nil {
		return fmt.Errorf("search service not available")
	}

	resp, err := r.searchService.Search(req)
	if err != nil {
		return err
	}
	if resp.EmbeddingsIndexed == 0 {
		fmt.Println("no embeddings indexed yet, run `gov-index index` first")
		return nil
	}
	if len(resp.Hits) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for i, hit := range resp.Hits {
		fmt.Printf("%d. [%.3f] #%d %s (%s)\n", i+1, hit.Similarity, hit.ProposalNumber, hit.Title, hit.Status)
		fmt.Printf("   %s\n", hit.Excerpt)
	}
	return nil
}

// RunListProposals prints mirrored proposals
func (r *CommandRunner) RunListProposals(opts storage.ListOptions) error {
	if r.proposals == nil {
		return fmt.Errorf("proposal store not available")
	}

	proposals, err := r.proposals.ListProposals(opts)
	if err != nil {
		return err
	}
	total, err := r.proposals.CountProposals(opts.Status)
	if err != nil {
		return err
	}

	for _, p := range proposals {
		fmt.Printf("#%-5d %-10s %s\n", p.ProposalNumber, p.Status, p.Title)
	}
	fmt.Printf("%d of %d proposals\n", len(proposals), total)
	return nil
}

// RunShowProposal prints one proposal by number or hex id
func (r *CommandRunner) RunShowProposal(idOrNumber string) error {
	if r.proposals == nil {
		return fmt.Errorf("proposal store not available")
	}

	proposal, err := r.lookup(idOrNumber)
	if err != nil {
		return err
	}
	if proposal == nil {
		fmt.Printf("proposal %s not found\n", idOrNumber)
		return nil
	}

	fmt.Printf("#%d %s\n", proposal.ProposalNumber, proposal.Title)
	fmt.Printf("id:       %s\n", proposal.ProposalID)
	fmt.Printf("status:   %s\n", proposal.Status)
	fmt.Printf("proposer: %s\n", proposal.Proposer)
	fmt.Printf("for: %s  against: %s  abstain: %s  quorum: %s\n",
		proposal.ForVotes, proposal.AgainstVotes, proposal.AbstainVotes, proposal.QuorumVotes)
	if proposal.Description != "" {
		fmt.Println()
		fmt.Println(proposal.Description)
	}
	return nil
}

// RunVotes prints votes on one proposal along with the unfiltered summary
func (r *CommandRunner) RunVotes(idOrNumber string, opts storage.VoteOptions) error {
	if r.proposals == nil || r.votes == nil {
		return fmt.Errorf("vote store not available")
	}

	proposal, err := r.lookup(idOrNumber)
	if err != nil {
		return err
	}
	if proposal == nil {
		fmt.Printf("proposal %s not found\n", idOrNumber)
		return nil
	}

	votes, err := r.votes.ListVotes(proposal.ProposalID, opts)
	if err != nil {
		return err
	}
	summary, err := r.votes.VoteSummary(proposal.ProposalID)
	if err != nil {
		return err
	}

	for _, v := range votes {
		line := fmt.Sprintf("%-8s %s weight=%s", v.Support, v.Voter, v.Weight)
		if v.Reason != "" {
			line += fmt.Sprintf(" reason=%q", v.Reason)
		}
		fmt.Println(line)
	}
	fmt.Printf("for:%d against:%d abstain:%d\n", summary.ForCount, summary.AgainstCount, summary.AbstainCount)
	return nil
}

// RunMCPServer executes the MCP server
func (r *CommandRunner) RunMCPServer(transport, address string) error {
	if r.mcpServer == nil {
		return fmt.Errorf("MCP server not available")
	}

	switch transport {
	case "stdio":
		return server.ServeStdio(r.mcpServer)
	case "http":
		addr := address
		if addr == "" {
			addr = ":8080"
		}
		httpSrv := server.NewStreamableHTTPServer(r.mcpServer)
		return httpSrv.Start(addr)
	case "sse":
		addr := address
		if addr == "" {
			addr = ":8080"
		}
		sseSrv := server.NewSSEServer(r.mcpServer,
			server.WithBaseURL(""),
			server.WithStaticBasePath("/mcp"),
		)
		return sseSrv.Start(addr)
	default:
		return fmt.Errorf(
			"unsupported transport: %s (supported: stdio, http, sse)",
			transport,
		)
	}
}

func (r *CommandRunner) lookup(idOrNumber string) (*models.Proposal, error) {
	trimmed := strings.TrimSpace(idOrNumber)
	if number, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return r.proposals.GetProposalByNumber(number)
	}
	return r.proposals.GetProposalByID(trimmed)
}

// Module provides command runner
var Module = fx.Module("commands",
	fx.Provide(NewCommandRunner),
)
