package subgraph

// Wire types mirror the subgraph schema. Every numeric field arrives as a
// decimal string so 256-bit values survive transport; parsing into fixed
// width types happens later, behind range validation.

type Account struct {
	ID string `json:"id"`
}

type Proposal struct {
	ID                     string  `json:"id"`
	ProposalNumber         string  `json:"proposalNumber"`
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	Proposer               Account `json:"proposer"`
	ForVotes               string  `json:"forVotes"`
	AgainstVotes           string  `json:"againstVotes"`
	AbstainVotes           string  `json:"abstainVotes"`
	QuorumVotes            string  `json:"quorumVotes"`
	Executed               bool    `json:"executed"`
	Canceled               bool    `json:"canceled"`
	Vetoed                 bool    `json:"vetoed"`
	Queued                 bool    `json:"queued"`
	CreatedTimestamp       string  `json:"createdTimestamp"`
	VoteStart              string  `json:"voteStart"`
	VoteEnd                string  `json:"voteEnd"`
	ExecutionETA           string  `json:"executionETA"`
	ExpiresAt              string  `json:"expiresAt"`
	CreatedTransactionHash string  `json:"createdTransactionHash"`
}

type Vote struct {
	ID              string  `json:"id"`
	Voter           Account `json:"voter"`
	SupportDetailed int     `json:"supportDetailed"`
	Weight          string  `json:"weight"`
	Reason          string  `json:"reason"`
	BlockTimestamp  string  `json:"blockTimestamp"`
	TransactionHash string  `json:"transactionHash"`
}
