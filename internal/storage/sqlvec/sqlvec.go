// Package sqlvec implements the embedding-chunk store. Vectors are kept as
// opaque little-endian float32 blobs in the sqlite-vec wire format, next to
// the chunk text they were derived from, and mirrored into a vec0 virtual
// table so QueryNearest can serve index-backed KNN on large corpora.
package sqlvec

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/util"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db        *sql.DB
	dimension int
}

func New(path string, dimension int) (*Store, error) {
	// enable sqlite-vec for all future connections
	sqlite_vec.Auto()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, dimension); err != nil {
		return nil, err
	}
	return &Store{db: db, dimension: dimension}, nil
}

func migrate(db *sql.DB, dimension int) error {
	// proposals table (reuse schema from the sqlite store if not exists);
	// both stores share one database file.
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS proposals (
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
	);`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(proposal_id, chunk_index)
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_proposal ON chunks(proposal_id);`); err != nil {
		return err
	}
	if dimension <= 0 {
		return nil
	}
	// vec0 virtual table holds embeddings for KNN; dimension is fixed per
	// table. vec_map ties vec rowids to chunk ids since vec0 tables cannot
	// carry text keys.
	if _, err := db.Exec(fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(
		embedding float32[%d] distance_metric=cosine
	);`, dimension)); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS vec_map (
		rid INTEGER UNIQUE NOT NULL,
		id TEXT UNIQUE NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_vec_map_id ON vec_map(id);`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) UpsertChunks(chunks []models.EmbeddingChunk) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare(`INSERT INTO chunks(
		id, proposal_id, chunk_index, content, embedding, created_at
	) VALUES(?,?,?,?,?,?)
	ON CONFLICT(proposal_id, chunk_index) DO UPDATE SET
		content=excluded.content,
		embedding=excluded.embedding,
		created_at=excluded.created_at`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	// vec0 mirror statements; the vec table only exists with a fixed dimension
	var insertVec, replaceVec, upsertMap, selectRid *sql.Stmt
	if s.dimension > 0 {
		if insertVec, err = tx.Prepare(`INSERT INTO vec_embeddings(embedding) VALUES(?)`); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		defer func() { _ = insertVec.Close() }()
		if replaceVec, err = tx.Prepare(
			`INSERT OR REPLACE INTO vec_embeddings(rowid, embedding) VALUES(?, ?)`,
		); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		defer func() { _ = replaceVec.Close() }()
		if upsertMap, err = tx.Prepare(`INSERT OR REPLACE INTO vec_map(rid, id) VALUES(?, ?)`); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		defer func() { _ = upsertMap.Close() }()
		if selectRid, err = tx.Prepare(`SELECT rid FROM vec_map WHERE id = ?`); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		defer func() { _ = selectRid.Close() }()
	}

	written := 0
	for _, ch := range chunks {
		if s.dimension > 0 && len(ch.Vector) != s.dimension {
			_ = tx.Rollback()
			return 0, fmt.Errorf("chunk %s/%d: vector dimension %d, want %d",
				ch.ProposalID, ch.ChunkIndex, len(ch.Vector), s.dimension)
		}
		blob, err := sqlite_vec.SerializeFloat32(ch.Vector)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		createdAt := ch.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		key := util.ChunkKey(ch.ProposalID, ch.ChunkIndex)
		if _, err := stmt.Exec(
			key, ch.ProposalID, ch.ChunkIndex, ch.Text, blob, createdAt.Unix(),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upsert chunk %s/%d: %w", ch.ProposalID, ch.ChunkIndex, err)
		}
		if s.dimension > 0 {
			if err := upsertVecRow(tx, insertVec, replaceVec, upsertMap, selectRid, key, blob); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("upsert chunk vector %s/%d: %w", ch.ProposalID, ch.ChunkIndex, err)
			}
		}
		written++
	}
	return written, tx.Commit()
}

// upsertVecRow writes one embedding into the vec0 table, reusing the rowid
// mapped to the chunk key so re-indexing replaces in place.
func upsertVecRow(tx *sql.Tx, insertVec, replaceVec, upsertMap, selectRid *sql.Stmt, key string, blob []byte) error {
	var rid sql.NullInt64
	if err := selectRid.QueryRow(key).Scan(&rid); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if rid.Valid {
		_, err := replaceVec.Exec(rid.Int64, blob)
		return err
	}
	if _, err := insertVec.Exec(blob); err != nil {
		return err
	}
	var newRid int64
	if err := tx.QueryRow(`SELECT last_insert_rowid()`).Scan(&newRid); err != nil {
		return err
	}
	_, err := upsertMap.Exec(newRid, key)
	return err
}

// ListChunks returns every chunk joined with its owning proposal's number,
// title and status, optionally filtered by status, ordered by proposal and
// chunk index so ranking input order is stable across runs.
func (s *Store) ListChunks(status *models.ProposalStatus) ([]models.ProposalChunk, error) {
	query := `SELECT c.proposal_id, c.chunk_index, c.content, c.embedding, c.created_at,
		p.proposal_number, p.title, p.status
		FROM chunks c
		JOIN proposals p ON p.proposal_id = c.proposal_id`
	var args []any
	if status != nil {
		query += ` WHERE p.status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY p.proposal_number ASC, c.chunk_index ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []models.ProposalChunk
	for rows.Next() {
		var pc models.ProposalChunk
		var blob []byte
		var createdAt int64
		var st string
		if err := rows.Scan(
			&pc.ProposalID, &pc.ChunkIndex, &pc.Text, &blob, &createdAt,
			&pc.ProposalNumber, &pc.Title, &st,
		); err != nil {
			return nil, err
		}
		vec, err := deserializeFloat32(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s/%d: %w", pc.ProposalID, pc.ChunkIndex, err)
		}
		pc.Vector = vec
		pc.CreatedAt = time.Unix(createdAt, 0)
		pc.Status = models.ProposalStatus(st)
		out = append(out, pc)
	}
	return out, rows.Err()
}

// QueryNearest runs KNN over the vec0 table, joining hits back to their
// chunk text and owning proposal. With cosine distance the similarity is
// 1 - distance. ListChunks plus in-process ranking stays the default read
// path; this one serves corpora too large to scan per query.
func (s *Store) QueryNearest(vector []float32, topK int) ([]models.ChunkHit, error) {
	if s.dimension <= 0 {
		return nil, fmt.Errorf("vector table disabled: dimension %d", s.dimension)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension %d, want %d", len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		WITH knn AS (
			SELECT rowid, distance
			FROM vec_embeddings
			WHERE embedding MATCH ?
			ORDER BY distance
			LIMIT ?
		)
		SELECT c.proposal_id, c.chunk_index, c.content, c.created_at,
			p.proposal_number, p.title, p.status, k.distance
		FROM knn k
		JOIN vec_map m ON m.rid = k.rowid
		JOIN chunks c ON c.id = m.id
		JOIN proposals p ON p.proposal_id = c.proposal_id
		ORDER BY k.distance ASC`, blob, topK)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var hits []models.ChunkHit
	for rows.Next() {
		var hit models.ChunkHit
		var createdAt int64
		var st string
		var distance float32
		if err := rows.Scan(
			&hit.Chunk.ProposalID, &hit.Chunk.ChunkIndex, &hit.Chunk.Text, &createdAt,
			&hit.Chunk.ProposalNumber, &hit.Chunk.Title, &st, &distance,
		); err != nil {
			return nil, err
		}
		hit.Chunk.CreatedAt = time.Unix(createdAt, 0)
		hit.Chunk.Status = models.ProposalStatus(st)
		hit.Similarity = 1 - distance
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// ProposalsWithoutChunks drives the indexing job: proposals that have no
// embedding rows yet, oldest first.
func (s *Store) ProposalsWithoutChunks() ([]models.Proposal, error) {
	rows, err := s.db.Query(`SELECT p.proposal_number, p.proposal_id, p.title, p.description, p.status
		FROM proposals p
		LEFT JOIN chunks c ON c.proposal_id = p.proposal_id
		WHERE c.id IS NULL
		ORDER BY p.proposal_number ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []models.Proposal
	for rows.Next() {
		var p models.Proposal
		var status string
		if err := rows.Scan(&p.ProposalNumber, &p.ProposalID, &p.Title, &p.Description, &status); err != nil {
			return nil, err
		}
		p.Status = models.ProposalStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CountChunks() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// deserializeFloat32 is the inverse of sqlite_vec.SerializeFloat32:
// little-endian float32 values, no header.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}
