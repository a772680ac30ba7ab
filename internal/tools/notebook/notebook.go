// Package notebook implements the fixed-schema notebook store: free-form
// text documents with append-only editing and substring search.
package notebook

import (
	"context"
	"database/sql"
	"strconv"

	bridgeerrors "github.com/toolwire/sqlbridge/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS notebooks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL DEFAULT '',
	data TEXT
);
`

// List pagination bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	snippetLength = 200
)

// Notebooks persists notebook rows.
type Notebooks struct {
	db *sql.DB
}

// New wraps db. Call EnsureSchema before first use on a fresh database.
func New(db *sql.DB) *Notebooks {
	return &Notebooks{db: db}
}

// EnsureSchema creates the notebooks table when missing.
func (n *Notebooks) EnsureSchema(ctx context.Context) error {
	if _, err := n.db.ExecContext(ctx, schema); err != nil {
		return bridgeerrors.NewExecution("create notebook schema", err)
	}
	return nil
}

// Create inserts a notebook and returns its id.
func (n *Notebooks) Create(ctx context.Context, title, body string) (int64, error) {
	res, err := n.db.ExecContext(ctx,
		"INSERT INTO notebooks (title, data) VALUES (?, ?)", title, body)
	if err != nil {
		return 0, bridgeerrors.NewExecution("create notebook", err)
	}
	return res.LastInsertId()
}

// Append concatenates delta onto the notebook body. A NULL body counts as
// empty. Returns the number of rows touched, zero for an unknown id.
func (n *Notebooks) Append(ctx context.Context, id int64, delta string) (int64, error) {
	res, err := n.db.ExecContext(ctx,
		"UPDATE notebooks SET data = COALESCE(data,'') || ? WHERE id = ?", delta, id)
	if err != nil {
		return 0, bridgeerrors.NewExecution("append to notebook", err)
	}
	return res.RowsAffected()
}

// Delete removes a notebook by id.
func (n *Notebooks) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := n.db.ExecContext(ctx, "DELETE FROM notebooks WHERE id = ?", id)
	if err != nil {
		return 0, bridgeerrors.NewExecution("delete notebook", err)
	}
	return res.RowsAffected()
}

// Item is one notebook_list entry. Snippet carries at most the first 200
// characters of the body.
type Item struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// List returns notebooks newest-first. When query is non-empty it filters
// on a substring match against title or body. Limit is clamped to
// [1, MaxListLimit], offset to non-negative.
func (n *Notebooks) List(ctx context.Context, query string, limit, offset int64) ([]Item, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var rows *sql.Rows
	var err error
	if query != "" {
		like := "%" + query + "%"
		rows, err = n.db.QueryContext(ctx,
			"SELECT id, title, substr(data,1,?) AS snippet FROM notebooks WHERE (title LIKE ? OR data LIKE ?) ORDER BY id DESC LIMIT ? OFFSET ?",
			snippetLength, like, like, limit, offset)
	} else {
		rows, err = n.db.QueryContext(ctx,
			"SELECT id, title, substr(data,1,?) AS snippet FROM notebooks ORDER BY id DESC LIMIT ? OFFSET ?",
			snippetLength, limit, offset)
	}
	if err != nil {
		return nil, bridgeerrors.NewExecution("list notebooks", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var snippet sql.NullString
		if err := rows.Scan(&it.ID, &it.Title, &snippet); err != nil {
			return nil, bridgeerrors.NewExecution("scan notebook row", err)
		}
		it.Snippet = snippet.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, bridgeerrors.NewExecution("list notebooks", err)
	}
	return items, nil
}

// Notebook is a full notebook row.
type Notebook struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Data  string `json:"data"`
}

// Get fetches a notebook by id. An unknown id returns a NotFoundError.
func (n *Notebooks) Get(ctx context.Context, id int64) (*Notebook, error) {
	var nb Notebook
	var data sql.NullString
	err := n.db.QueryRowContext(ctx,
		"SELECT id, title, data FROM notebooks WHERE id = ?", id).
		Scan(&nb.ID, &nb.Title, &data)
	switch {
	case err == sql.ErrNoRows:
		return nil, bridgeerrors.NewNotFound("notebook", strconv.FormatInt(id, 10))
	case err != nil:
		return nil, bridgeerrors.NewExecution("get notebook", err)
	}
	nb.Data = data.String
	return &nb, nil
}
