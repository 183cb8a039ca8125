package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore keeps objects in a single sqlite table. It stands in for a
// homeserver during local development and in tests.
type SqliteStore struct {
	db        *sql.DB
	tableName string
}

func NewSQLiteStore(dbPath string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	s := &SqliteStore{
		db:        db,
		tableName: "objects",
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SqliteStore) init() error {
	createTable := fmt.Sprintf(`
	create table if not exists %s (
		url text primary key,
		data blob not null,
		updated text not null default (strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ', 'now'))
	);`, s.tableName)
	_, err := s.db.Exec(createTable)
	return err
}

func (s *SqliteStore) List(ctx context.Context, prefix string) ([]string, error) {
	// substr comparison keeps '%' and '_' in urls from acting as wildcards
	query := fmt.Sprintf(`
		select url from %s
		where substr(url, 1, length(?)) = ?
		order by url asc;
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

func (s *SqliteStore) Get(ctx context.Context, url string) ([]byte, error) {
	query := fmt.Sprintf(`select data from %s where url = ?;`, s.tableName)

	var data []byte
	err := s.db.QueryRowContext(ctx, query, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (s *SqliteStore) Put(ctx context.Context, url string, data []byte) error {
	query := fmt.Sprintf(`
		insert into %s (url, data)
		values (?, ?)
		on conflict(url) do update set
			data = excluded.data,
			updated = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ', 'now');
	`, s.tableName)

	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, query, url, data)
	return err
}

func (s *SqliteStore) Delete(ctx context.Context, url string) error {
	query := fmt.Sprintf(`delete from %s where url = ?;`, s.tableName)

	res, err := s.db.ExecContext(ctx, query, url)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
