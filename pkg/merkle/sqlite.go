package merkle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorer implements Storer on a SQLite database.
type SQLiteStorer struct {
	db *sql.DB
}

// NewSQLiteStorer opens (and migrates) the database at dbPath.
// The dbPath can be a file path or ":memory:".
func NewSQLiteStorer(dbPath string) (*SQLiteStorer, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorer{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorer) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		hash TEXT PRIMARY KEY,
		parent_hash TEXT,
		bucket TEXT NOT NULL,
		model TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_parent_hash ON nodes(parent_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Put stores a node. Existing hashes are left untouched and reported as not new.
func (s *SQLiteStorer) Put(ctx context.Context, node *Node) (bool, error) {
	if node == nil {
		return false, errors.New("cannot store nil node")
	}

	bucketJSON, err := json.Marshal(node.Bucket)
	if err != nil {
		return false, fmt.Errorf("failed to marshal bucket: %w", err)
	}

	query := `INSERT OR IGNORE INTO nodes (hash, parent_hash, bucket, model) VALUES (?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query, node.Hash, node.ParentHash, string(bucketJSON), node.Model)
	if err != nil {
		return false, fmt.Errorf("failed to insert node: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}

// Get retrieves a node by its hash.
func (s *SQLiteStorer) Get(ctx context.Context, hash string) (*Node, error) {
	query := `SELECT hash, parent_hash, bucket, model FROM nodes WHERE hash = ?`

	node, err := scanNode(s.db.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Hash: hash}
	}
	if err != nil {
		return nil, err
	}

	return node, nil
}

// Ancestry returns the path from a node back to its root (node first, root
// last) with one recursive query. An unknown hash is ErrNotFound.
func (s *SQLiteStorer) Ancestry(ctx context.Context, hash string) ([]*Node, error) {
	query := `
		WITH RECURSIVE path(hash, parent_hash, bucket, model, depth) AS (
			SELECT hash, parent_hash, bucket, model, 0 FROM nodes WHERE hash = ?
			UNION ALL
			SELECT n.hash, n.parent_hash, n.bucket, n.model, path.depth + 1
			FROM nodes n JOIN path ON n.hash = path.parent_hash
		)
		SELECT hash, parent_hash, bucket, model FROM path ORDER BY depth
	`

	rows, err := s.db.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query ancestry: %w", err)
	}
	defer rows.Close()

	var path []*Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("getting node %s: %w", hash, ErrNotFound{Hash: hash})
	}
	return path, nil
}

// Leaves returns all leaf nodes (nodes with no children), oldest first.
func (s *SQLiteStorer) Leaves(ctx context.Context) ([]*Node, error) {
	query := `
		SELECT n.hash, n.parent_hash, n.bucket, n.model
		FROM nodes n
		LEFT JOIN nodes c ON c.parent_hash = n.hash
		WHERE c.hash IS NULL
		ORDER BY n.created_at, n.rowid
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return nodes, nil
}

// Close closes the database connection.
func (s *SQLiteStorer) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var (
		node       Node
		bucketJSON string
		parentHash sql.NullString
		model      sql.NullString
	)

	if err := row.Scan(&node.Hash, &parentHash, &bucketJSON, &model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	if parentHash.Valid {
		node.ParentHash = &parentHash.String
	}
	node.Model = model.String

	if err := json.Unmarshal([]byte(bucketJSON), &node.Bucket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bucket: %w", err)
	}

	return &node, nil
}

var _ Storer = (*SQLiteStorer)(nil)
