package output

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS report_tables (
    id INTEGER PRIMARY KEY,
    source TEXT NOT NULL,
    position INTEGER NOT NULL,
    table_index TEXT NOT NULL,
    description TEXT NOT NULL,
    header TEXT NOT NULL,
    UNIQUE (source, position)
);

CREATE TABLE IF NOT EXISTS report_rows (
    table_id INTEGER NOT NULL REFERENCES report_tables(id) ON DELETE CASCADE,
    row_no INTEGER NOT NULL,
    cells TEXT NOT NULL,
    PRIMARY KEY (table_id, row_no)
);

CREATE INDEX IF NOT EXISTS idx_report_tables_index ON report_tables(source, table_index);
`

// WriteSQLite stores tables in the database at path under the source name.
// Tables stored earlier for the same source are replaced; other sources are
// kept. Everything happens in one transaction.
func WriteSQLite(ctx context.Context, path, source string, tables []model.Table) error {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return errors.Wrap(err, "creating schema")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM report_rows
		WHERE table_id IN (SELECT id FROM report_tables WHERE source = ?)
	`, source); err != nil {
		return errors.Wrap(err, "clearing previous rows")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM report_tables WHERE source = ?", source); err != nil {
		return errors.Wrap(err, "clearing previous tables")
	}

	rowStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO report_rows (table_id, row_no, cells) VALUES (?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "preparing row insert")
	}
	defer rowStmt.Close()

	for pos, t := range tables {
		header, err := json.Marshal(t.Header)
		if err != nil {
			return errors.WithStack(err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO report_tables (source, position, table_index, description, header)
			VALUES (?, ?, ?, ?, ?)
		`, source, pos, t.Index, t.Description, string(header))
		if err != nil {
			return errors.Wrapf(err, "inserting table %s", t.Index)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.WithStack(err)
		}

		for r, row := range t.Data {
			cells, err := json.Marshal(row)
			if err != nil {
				return errors.WithStack(err)
			}
			if _, err := rowStmt.ExecContext(ctx, id, r, string(cells)); err != nil {
				return errors.Wrapf(err, "inserting row %d of table %s", r, t.Index)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}
	return nil
}

// ReadSQLite loads the tables stored for source, in their original order
func ReadSQLite(ctx context.Context, path, source string) ([]model.Table, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, table_index, description, header
		FROM report_tables WHERE source = ? ORDER BY position
	`, source)
	if err != nil {
		return nil, errors.Wrap(err, "querying tables")
	}
	defer rows.Close()

	var ids []int64
	tables := []model.Table{}
	for rows.Next() {
		var (
			id     int64
			t      model.Table
			header string
		)
		if err := rows.Scan(&id, &t.Index, &t.Description, &header); err != nil {
			return nil, errors.WithStack(err)
		}
		if err := json.Unmarshal([]byte(header), &t.Header); err != nil {
			return nil, errors.Wrapf(err, "decoding header of table %s", t.Index)
		}
		t.Data = [][]string{}
		ids = append(ids, id)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	rows.Close()

	for i, id := range ids {
		if err := readRows(ctx, db, id, &tables[i]); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func readRows(ctx context.Context, db *sql.DB, id int64, t *model.Table) error {
	rows, err := db.QueryContext(ctx,
		"SELECT cells FROM report_rows WHERE table_id = ? ORDER BY row_no", id)
	if err != nil {
		return errors.Wrap(err, "querying rows")
	}
	defer rows.Close()

	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return errors.WithStack(err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return errors.Wrapf(err, "decoding row of table %s", t.Index)
		}
		t.Data = append(t.Data, row)
	}
	return errors.WithStack(rows.Err())
}
