// Package sqlite implements the relational half of the mirror: proposals,
// votes and the sync cursor, on the pure-Go sqlite driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
	_ "modernc.org/sqlite"
)

const cursorKey = "last_sync_time"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS proposals (
		proposal_number INTEGER PRIMARY KEY,
		proposal_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		proposer TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		for_votes TEXT NOT NULL DEFAULT '0',
		against_votes TEXT NOT NULL DEFAULT '0',
		abstain_votes TEXT NOT NULL DEFAULT '0',
		quorum_votes TEXT NOT NULL DEFAULT '0',
		executed INTEGER NOT NULL DEFAULT 0,
		canceled INTEGER NOT NULL DEFAULT 0,
		vetoed INTEGER NOT NULL DEFAULT 0,
		queued INTEGER NOT NULL DEFAULT 0,
		created_timestamp INTEGER NOT NULL DEFAULT 0,
		vote_start INTEGER NOT NULL DEFAULT 0,
		vote_end INTEGER NOT NULL DEFAULT 0,
		execution_eta INTEGER NOT NULL DEFAULT 0,
		expires_at INTEGER NOT NULL DEFAULT 0,
		transaction_hash TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status);
	CREATE INDEX IF NOT EXISTS idx_proposals_created ON proposals(created_timestamp);
	CREATE INDEX IF NOT EXISTS idx_proposals_id ON proposals(proposal_id);

	CREATE TABLE IF NOT EXISTS votes (
		vote_id TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL,
		voter TEXT NOT NULL,
		support INTEGER NOT NULL,
		weight TEXT NOT NULL DEFAULT '0',
		reason TEXT NOT NULL DEFAULT '',
		block_timestamp INTEGER NOT NULL DEFAULT 0,
		transaction_hash TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_votes_proposal ON votes(proposal_id);
	CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter);

	CREATE TABLE IF NOT EXISTS sync_cursor (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) UpsertProposals(proposals []models.Proposal) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO proposals(
		proposal_number, proposal_id, title, description, proposer, status,
		for_votes, against_votes, abstain_votes, quorum_votes,
		executed, canceled, vetoed, queued,
		created_timestamp, vote_start, vote_end, execution_eta, expires_at,
		transaction_hash
	) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(proposal_number) DO UPDATE SET
		proposal_id=excluded.proposal_id,
		title=excluded.title,
		description=excluded.description,
		proposer=excluded.proposer,
		status=excluded.status,
		for_votes=excluded.for_votes,
		against_votes=excluded.against_votes,
		abstain_votes=excluded.abstain_votes,
		quorum_votes=excluded.quorum_votes,
		executed=excluded.executed,
		canceled=excluded.canceled,
		vetoed=excluded.vetoed,
		queued=excluded.queued,
		created_timestamp=excluded.created_timestamp,
		vote_start=excluded.vote_start,
		vote_end=excluded.vote_end,
		execution_eta=excluded.execution_eta,
		expires_at=excluded.expires_at,
		transaction_hash=excluded.transaction_hash`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()
	written := 0
	for _, p := range proposals {
		if _, err := stmt.Exec(
			p.ProposalNumber, p.ProposalID, p.Title, p.Description, p.Proposer, string(p.Status),
			p.ForVotes, p.AgainstVotes, p.AbstainVotes, p.QuorumVotes,
			p.Executed, p.Canceled, p.Vetoed, p.Queued,
			p.CreatedTimestamp, p.VoteStart, p.VoteEnd, p.ExecutionETA, p.ExpiresAt,
			p.TransactionHash,
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upsert proposal %d: %w", p.ProposalNumber, err)
		}
		written++
	}
	return written, tx.Commit()
}

const proposalColumns = `proposal_number, proposal_id, title, description, proposer, status,
	for_votes, against_votes, abstain_votes, quorum_votes,
	executed, canceled, vetoed, queued,
	created_timestamp, vote_start, vote_end, execution_eta, expires_at,
	transaction_hash`

func scanProposal(row interface{ Scan(...any) error }) (*models.Proposal, error) {
	var p models.Proposal
	var status string
	if err := row.Scan(
		&p.ProposalNumber, &p.ProposalID, &p.Title, &p.Description, &p.Proposer, &status,
		&p.ForVotes, &p.AgainstVotes, &p.AbstainVotes, &p.QuorumVotes,
		&p.Executed, &p.Canceled, &p.Vetoed, &p.Queued,
		&p.CreatedTimestamp, &p.VoteStart, &p.VoteEnd, &p.ExecutionETA, &p.ExpiresAt,
		&p.TransactionHash,
	); err != nil {
		return nil, err
	}
	p.Status = models.ProposalStatus(status)
	return &p, nil
}

func (s *Store) GetProposalByNumber(number uint64) (*models.Proposal, error) {
	row := s.db.QueryRow(
		`SELECT `+proposalColumns+` FROM proposals WHERE proposal_number = ?`, number)
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetProposalByID may legitimately miss while the subgraph has not yet
// indexed the canonical id; that is a nil result, not an error.
func (s *Store) GetProposalByID(id string) (*models.Proposal, error) {
	row := s.db.QueryRow(
		`SELECT `+proposalColumns+` FROM proposals WHERE proposal_id = ?`, id)
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *Store) ListProposals(opts storage.ListOptions) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	var args []any
	if opts.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*opts.Status))
	}
	if opts.Order == storage.OrderAsc {
		query += ` ORDER BY created_timestamp ASC`
	} else {
		query += ` ORDER BY created_timestamp DESC`
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) CountProposals(status *models.ProposalStatus) (int, error) {
	query := `SELECT COUNT(*) FROM proposals`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	var n int
	err := s.db.QueryRow(query, args...).Scan(&n)
	return n, err
}

func (s *Store) UpsertVotes(votes []models.Vote) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO votes(
		vote_id, proposal_id, voter, support, weight, reason, block_timestamp, transaction_hash
	) VALUES(?,?,?,?,?,?,?,?)
	ON CONFLICT(vote_id) DO UPDATE SET
		proposal_id=excluded.proposal_id,
		voter=excluded.voter,
		support=excluded.support,
		weight=excluded.weight,
		reason=excluded.reason,
		block_timestamp=excluded.block_timestamp,
		transaction_hash=excluded.transaction_hash`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()
	written := 0
	for _, v := range votes {
		if _, err := stmt.Exec(
			v.VoteID, v.ProposalID, v.Voter, int(v.Support),
			v.Weight, v.Reason, v.BlockTimestamp, v.TransactionHash,
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upsert vote %s: %w", v.VoteID, err)
		}
		written++
	}
	return written, tx.Commit()
}

func (s *Store) ListVotes(proposalID string, opts storage.VoteOptions) ([]models.Vote, error) {
	query := `SELECT vote_id, proposal_id, voter, support, weight, reason,
		block_timestamp, transaction_hash
		FROM votes WHERE proposal_id = ?`
	args := []any{proposalID}
	if opts.Support != nil {
		query += ` AND support = ?`
		args = append(args, int(*opts.Support))
	}
	query += ` ORDER BY block_timestamp DESC`
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []models.Vote
	for rows.Next() {
		var v models.Vote
		var support int
		if err := rows.Scan(
			&v.VoteID, &v.ProposalID, &v.Voter, &support,
			&v.Weight, &v.Reason, &v.BlockTimestamp, &v.TransactionHash,
		); err != nil {
			return nil, err
		}
		v.Support = models.VoteSupport(support)
		out = append(out, v)
	}
	return out, rows.Err()
}

// VoteSummary counts voters per support over the full vote set, ignoring
// any pagination or support filter applied to the listing.
func (s *Store) VoteSummary(proposalID string) (models.VoteSummary, error) {
	rows, err := s.db.Query(
		`SELECT support, COUNT(*) FROM votes WHERE proposal_id = ? GROUP BY support`,
		proposalID,
	)
	if err != nil {
		return models.VoteSummary{}, err
	}
	defer func() { _ = rows.Close() }()
	var summary models.VoteSummary
	for rows.Next() {
		var support, count int
		if err := rows.Scan(&support, &count); err != nil {
			return models.VoteSummary{}, err
		}
		switch models.VoteSupport(support) {
		case models.SupportFor:
			summary.ForCount = count
		case models.SupportAgainst:
			summary.AgainstCount = count
		case models.SupportAbstain:
			summary.AbstainCount = count
		}
	}
	return summary, rows.Err()
}

func (s *Store) GetSyncCursor() (int64, error) {
	var ts int64
	err := s.db.QueryRow(`SELECT value FROM sync_cursor WHERE key = ?`, cursorKey).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return ts, err
}

func (s *Store) SetSyncCursor(ts int64) error {
	_, err := s.db.Exec(`INSERT INTO sync_cursor(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, cursorKey, ts)
	return err
}
