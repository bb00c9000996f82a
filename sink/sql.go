/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAlertTable = `alerts`

// PgxAlertSink persists one row per alert into a PostgreSQL table via
// a pooled connection.
type PgxAlertSink struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPgxAlertSink connects to dsn and returns a ready SQLSink. table,
// when empty, defaults to "alerts".
func OpenPgxAlertSink(ctx context.Context, dsn, table string) (*PgxAlertSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to alert database: %w", err)
	}
	if table == `` {
		table = defaultAlertTable
	}
	return &PgxAlertSink{pool: pool, table: table}, nil
}

func (s *PgxAlertSink) WriteAlert(ctx context.Context, row AlertRow) error {
	const stmt = `INSERT INTO %s
		(ts, src_ip, src_port, dest_ip, dest_port, proto, signature_id, signature_rev, signature, classtype, class_description, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.pool.Exec(ctx, fmt.Sprintf(stmt, s.table),
		row.Timestamp, row.SrcIP, row.SrcPort, row.DestIP, row.DestPort, row.Proto,
		row.SignatureID, row.SignatureRev, row.Signature, row.Classtype, row.ClassDesc, row.RawJSON)
	if err != nil {
		return fmt.Errorf("writing alert row: %w", err)
	}
	return nil
}

func (s *PgxAlertSink) Close() error {
	s.pool.Close()
	return nil
}
