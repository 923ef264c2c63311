package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

const fieldCount = 6

var (
	ErrRuleTooLong = errors.New("pgxcasbin: rule has more than 6 fields")
	ErrEmptyPtype  = errors.New("pgxcasbin: ptype is empty")
)

// DB is the subset of pgxpool.Pool used by the adapter.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// store keeps rules as ptype plus six text columns, blank when unused.
type store struct {
	db    DB
	table string
}

var columns = strings.Join(lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) }), ", ")

func (s *store) row(ptype string, rule []string) ([]any, error) {
	if ptype == "" {
		return nil, ErrEmptyPtype
	}
	if len(rule) > fieldCount {
		return nil, fmt.Errorf("%w: %v", ErrRuleTooLong, rule)
	}

	out := make([]any, 0, fieldCount+1)
	out = append(out, ptype)
	for i := range fieldCount {
		v := ""
		if i < len(rule) {
			v = rule[i]
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *store) insert(ctx context.Context, db execer, ptype string, rule []string) error {
	args, err := s.row(ptype, rule)
	if err != nil {
		return err
	}

	q := fmt.Sprintf("INSERT INTO %s (ptype, %s) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING", s.table, columns)
	if _, err := db.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("pgxcasbin: insert rule: %w", err)
	}
	return nil
}

func (s *store) delete(ctx context.Context, db execer, ptype string, rule []string) error {
	args, err := s.row(ptype, rule)
	if err != nil {
		return err
	}

	conds := lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) + " = $" + strconv.Itoa(i+2) })
	q := fmt.Sprintf("DELETE FROM %s WHERE ptype = $1 AND %s", s.table, strings.Join(conds, " AND "))
	if _, err := db.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("pgxcasbin: delete rule: %w", err)
	}
	return nil
}

// where builds "ptype = $1 AND vN = $k ..." skipping blank values.
func where(ptype string, from int, values []string) (string, []any, error) {
	if from+len(values) > fieldCount {
		return "", nil, ErrRuleTooLong
	}

	conds := []string{}
	args := []any{}
	if ptype != "" {
		conds = append(conds, "ptype = $1")
		args = append(args, ptype)
	}
	for i, v := range values {
		if v == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, "v"+strconv.Itoa(from+i)+" = $"+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *store) deleteWhere(ctx context.Context, ptype string, from int, values ...string) error {
	if ptype == "" {
		return ErrEmptyPtype
	}
	clause, args, err := where(ptype, from, values)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, "DELETE FROM "+s.table+clause, args...); err != nil {
		return fmt.Errorf("pgxcasbin: delete filtered: %w", err)
	}
	return nil
}

// selectWhere returns rules as [ptype, v0, ...] with trailing blanks cut.
func (s *store) selectWhere(ctx context.Context, ptype string, from int, values ...string) ([][]string, error) {
	clause, args, err := where(ptype, from, values)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, "SELECT ptype, "+columns+" FROM "+s.table+clause+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("pgxcasbin: select: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		line := make([]string, fieldCount+1)
		dst := lo.Map(line, func(_ string, i int) any { return &line[i] })
		if err := rows.Scan(dst...); err != nil {
			return nil, fmt.Errorf("pgxcasbin: scan: %w", err)
		}
		out = append(out, trimBlank(line))
	}
	return out, rows.Err()
}

// inTx runs fn in a transaction.
func (s *store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgxcasbin: begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func trimBlank(line []string) []string {
	end := len(line)
	for end > 0 && line[end-1] == "" {
		end--
	}
	return line[:end]
}
