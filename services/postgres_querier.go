package services

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// postgresQuerier runs one statement per call on a connection checked
// out of the pool just for that statement. The connection is released
// on every exit path, execution failure included.
type postgresQuerier struct {
	db *sql.DB
}

func NewPostgresQuerier(db *sql.DB) RowQuerier {
	return &postgresQuerier{db: db}
}

func (q *postgresQuerier) Query(ctx context.Context, sqlText string, args []interface{}) ([]string, [][]interface{}, error) {
	conn, err := q.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	result := make([][]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, err
		}
		// lib/pq hands text columns back as []byte; make them JSON-friendly.
		for i, value := range values {
			if raw, ok := value.([]byte); ok {
				values[i] = string(raw)
			}
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, result, nil
}
