package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/paintstock-bot/internal/pkg/clock"
)

type Repo struct {
	db    *sql.DB
	clock clock.Clock
}

func NewRepo(db *sql.DB, clk clock.Clock) *Repo {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Repo{db: db, clock: clk}
}

// AddStock приход: увеличивает остаток существующей позиции (code, effect) или создаёт новую.
func (r *Repo) AddStock(ctx context.Context, code string, effect Effect, amount float64) (*AddResult, error) {
	code, amount, err := validate(code, effect, amount)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := r.clock.Now()
	var current float64
	res := &AddResult{Paint: Paint{ColorCode: code, Effect: effect, Unit: "kg", LastUpdated: now}}

	err = tx.QueryRowContext(ctx, `
		SELECT id, quantity FROM paints WHERE color_code = $1 AND effect = $2
	`, code, string(effect)).Scan(&res.Paint.ID, &current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO paints (color_code, effect, quantity, unit, last_updated)
			VALUES ($1,$2,$3,'kg',$4)
			RETURNING id, quantity
		`, code, string(effect), amount, now).Scan(&res.Paint.ID, &res.Paint.Quantity); err != nil {
			return nil, fmt.Errorf("insert paint: %w", err)
		}
		res.Created = true
	case err != nil:
		return nil, fmt.Errorf("lookup paint: %w", err)
	default:
		if err = tx.QueryRowContext(ctx, `
			UPDATE paints SET quantity = $1, last_updated = $2
			WHERE id = $3
			RETURNING quantity
		`, RoundKg(current+amount), now, res.Paint.ID).Scan(&res.Paint.Quantity); err != nil {
			return nil, fmt.Errorf("update paint: %w", err)
		}
	}

	if err = logMovement(ctx, tx, res.Paint.ID, MoveAdd, amount, now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// UseStock списание. Остаток не может уйти в минус: при нехватке ничего не меняется.
func (r *Repo) UseStock(ctx context.Context, code string, effect Effect, amount float64) (*Paint, error) {
	code, amount, err := validate(code, effect, amount)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	p := &Paint{ColorCode: code, Effect: effect}
	err = tx.QueryRowContext(ctx, `
		SELECT id, quantity, COALESCE(unit, 'kg') FROM paints WHERE color_code = $1 AND effect = $2
	`, code, string(effect)).Scan(&p.ID, &p.Quantity, &p.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup paint: %w", err)
	}
	// остатки из старых версий могли накопить хвосты float
	available := RoundKg(p.Quantity)
	if available < amount {
		return nil, &InsufficientError{Available: available}
	}
	left := RoundKg(available - amount)
	if left < 0 {
		left = 0
	}

	now := r.clock.Now()
	if err = tx.QueryRowContext(ctx, `
		UPDATE paints SET quantity = $1, last_updated = $2
		WHERE id = $3
		RETURNING quantity
	`, left, now, p.ID).Scan(&p.Quantity); err != nil {
		return nil, fmt.Errorf("update paint: %w", err)
	}
	p.LastUpdated = now

	if err = logMovement(ctx, tx, p.ID, MoveUse, amount, now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func logMovement(ctx context.Context, tx *sql.Tx, paintID int64, mtype MoveType, amount float64, at time.Time) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (paint_id, type, amount, date)
		VALUES ($1,$2,$3,$4)
	`, paintID, string(mtype), amount, at); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListAll все позиции, сгруппированные по коду.
func (r *Repo) ListAll(ctx context.Context) ([]Paint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, color_code, effect, quantity, COALESCE(unit, 'kg'), last_updated
		FROM paints
		ORDER BY color_code, effect
	`)
	if err != nil {
		return nil, err
	}
	return scanPaints(rows)
}

// SearchByCode точное совпадение кода; пустой Items: код не найден.
func (r *Repo) SearchByCode(ctx context.Context, code string) (*SearchResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, color_code, effect, quantity, COALESCE(unit, 'kg'), last_updated
		FROM paints
		WHERE color_code = $1
		ORDER BY effect
	`, code)
	if err != nil {
		return nil, err
	}
	items, err := scanPaints(rows)
	if err != nil {
		return nil, err
	}
	res := &SearchResult{Code: code, Items: items}
	for _, p := range items {
		res.Total += p.Quantity
	}
	return res, nil
}

func (r *Repo) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM paints
	`).Scan(&st.Count, &st.Total); err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.paint_id, t.type, t.amount, t.date, p.color_code, p.effect
		FROM transactions t
		JOIN paints p ON p.id = t.paint_id
		ORDER BY t.date DESC, t.id DESC
		LIMIT $1
	`, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m RecentMovement
		if err := rows.Scan(&m.ID, &m.PaintID, &m.Type, &m.Amount, &m.Date, &m.ColorCode, &m.Effect); err != nil {
			return nil, err
		}
		st.Recent = append(st.Recent, m)
	}
	return &st, rows.Err()
}

// Movements история движений по позиции, старые сначала.
func (r *Repo) Movements(ctx context.Context, paintID int64) ([]Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, paint_id, type, amount, date
		FROM transactions
		WHERE paint_id = $1
		ORDER BY date, id
	`, paintID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.PaintID, &m.Type, &m.Amount, &m.Date); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanPaints(rows *sql.Rows) ([]Paint, error) {
	defer func() { _ = rows.Close() }()
	var out []Paint
	for rows.Next() {
		var p Paint
		if err := rows.Scan(&p.ID, &p.ColorCode, &p.Effect, &p.Quantity, &p.Unit, &p.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
