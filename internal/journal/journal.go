// Package journal records committed pool events in SQLite so indexers can
// read them back in commit order.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nulln0ne/dex-amm/internal/pool"
)

//go:embed schema.sql
var schemaSQL string

// Journal is a pool.EventSink backed by a SQLite database.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Record is one stored event. Amount fields not carried by the event's kind
// are nil.
type Record struct {
	Seq       int64
	Name      string
	Topic     common.Hash
	Account   common.Address
	AssetIn   *common.Address
	AmountA   *uint256.Int
	AmountB   *uint256.Int
	Shares    *uint256.Int
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
}

// Open creates or opens the journal at path. ":memory:" gives a private
// in-memory journal.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// one connection: sqlite has a single writer and each ":memory:"
	// connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Publish implements pool.EventSink. The transition is already committed
// when it is called, so a failed insert is logged rather than returned.
func (j *Journal) Publish(ctx context.Context, ev pool.Event) {
	if err := j.Append(context.WithoutCancel(ctx), ev); err != nil {
		j.logger.Error("failed to journal event", "event", ev.Name(), "err", err)
	}
}

// Append stores ev.
func (j *Journal) Append(ctx context.Context, ev pool.Event) error {
	var (
		account                  common.Address
		assetIn                  sql.NullString
		amountA, amountB, shares sql.NullString
		amountIn, amountOut      sql.NullString
	)
	switch e := ev.(type) {
	case pool.LiquidityAdded:
		account = e.Account
		amountA, amountB, shares = dec(e.AmountA), dec(e.AmountB), dec(e.SharesMinted)
	case pool.LiquidityRemoved:
		account = e.Account
		amountA, amountB, shares = dec(e.AmountA), dec(e.AmountB), dec(e.SharesBurned)
	case pool.Swap:
		account = e.Account
		assetIn = sql.NullString{String: e.AssetIn.Hex(), Valid: true}
		amountIn, amountOut = dec(e.AmountIn), dec(e.AmountOut)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (name, topic, account, asset_in, amount_a, amount_b, shares, amount_in, amount_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Name(), ev.Topic().Hex(), account.Hex(), assetIn, amountA, amountB, shares, amountIn, amountOut)
	if err != nil {
		return fmt.Errorf("insert %s: %w", ev.Name(), err)
	}
	return nil
}

// Events returns stored events with seq greater than after, oldest first,
// at most limit of them (0 means no limit).
func (j *Journal) Events(ctx context.Context, after int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, name, topic, account, asset_in, amount_a, amount_b, shares, amount_in, amount_out
		FROM events WHERE seq > ? ORDER BY seq LIMIT ?`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                                             Record
			topic, account                                string
			assetIn, amountA, amountB, shares, in, outAmt sql.NullString
		)
		if err := rows.Scan(&r.Seq, &r.Name, &topic, &account, &assetIn, &amountA, &amountB, &shares, &in, &outAmt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		r.Topic = common.HexToHash(topic)
		r.Account = common.HexToAddress(account)
		if assetIn.Valid {
			addr := common.HexToAddress(assetIn.String)
			r.AssetIn = &addr
		}
		for _, f := range []struct {
			src sql.NullString
			dst **uint256.Int
		}{{amountA, &r.AmountA}, {amountB, &r.AmountB}, {shares, &r.Shares}, {in, &r.AmountIn}, {outAmt, &r.AmountOut}} {
			if !f.src.Valid {
				continue
			}
			v, err := uint256.FromDecimal(f.src.String)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", r.Seq, err)
			}
			*f.dst = v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func dec(v *uint256.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Dec(), Valid: true}
}
