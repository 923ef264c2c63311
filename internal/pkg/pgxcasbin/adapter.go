// Package pgxcasbin stores casbin rules in postgres through pgx and
// propagates policy changes between processes with LISTEN/NOTIFY.
package pgxcasbin

import (
	"context"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"go.uber.org/atomic"
)

const DefaultTable = "auth_casbin_rules"

var (
	_ persist.Adapter         = (*Adapter)(nil)
	_ persist.ContextAdapter  = (*Adapter)(nil)
	_ persist.BatchAdapter    = (*Adapter)(nil)
	_ persist.FilteredAdapter = (*Adapter)(nil)
)

// Filter selects rules by ptype; each entry is matched from v0 and blank
// values are wildcards.
type Filter map[string][][]string

type Adapter struct {
	store    *store
	filtered *atomic.Bool
}

type Option func(*Adapter)

func WithTable(name string) Option {
	return func(a *Adapter) { a.store.table = lo.SnakeCase(name) }
}

func NewAdapter(db DB, opts ...Option) *Adapter {
	a := &Adapter{store: &store{db: db, table: DefaultTable}, filtered: atomic.NewBool(false)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) LoadPolicyCtx(ctx context.Context, m model.Model) error {
	a.filtered.Store(false)
	lines, err := a.store.selectWhere(ctx, "", 0)
	if err != nil {
		return err
	}
	return load(m, lines)
}

// SavePolicyCtx replaces the whole table with the rules held by m.
func (a *Adapter) SavePolicyCtx(ctx context.Context, m model.Model) error {
	return a.store.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+a.store.table); err != nil {
			return fmt.Errorf("pgxcasbin: clear: %w", err)
		}
		for _, sec := range []string{"p", "g"} {
			for ptype, ast := range m[sec] {
				for _, rule := range ast.Policy {
					if err := a.store.insert(ctx, tx, ptype, rule); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func (a *Adapter) AddPolicyCtx(ctx context.Context, _ string, ptype string, rule []string) error {
	return a.store.insert(ctx, a.store.db, ptype, rule)
}

func (a *Adapter) RemovePolicyCtx(ctx context.Context, _ string, ptype string, rule []string) error {
	return a.store.delete(ctx, a.store.db, ptype, rule)
}

func (a *Adapter) RemoveFilteredPolicyCtx(ctx context.Context, _ string, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.store.deleteWhere(ctx, ptype, fieldIndex, fieldValues...)
}

func (a *Adapter) AddPoliciesCtx(ctx context.Context, _ string, ptype string, rules [][]string) error {
	return a.store.inTx(ctx, func(tx pgx.Tx) error {
		for _, rule := range rules {
			if err := a.store.insert(ctx, tx, ptype, rule); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Adapter) RemovePoliciesCtx(ctx context.Context, _ string, ptype string, rules [][]string) error {
	return a.store.inTx(ctx, func(tx pgx.Tx) error {
		for _, rule := range rules {
			if err := a.store.delete(ctx, tx, ptype, rule); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Adapter) LoadFilteredPolicyCtx(ctx context.Context, m model.Model, filter any) error {
	if lo.IsNil(filter) {
		return a.LoadPolicyCtx(ctx, m)
	}
	f, ok := filter.(Filter)
	if !ok {
		return fmt.Errorf("pgxcasbin: filter must be pgxcasbin.Filter, got %T", filter)
	}

	a.filtered.Store(true)
	var lines [][]string
	for ptype, conds := range f {
		for _, values := range conds {
			rows, err := a.store.selectWhere(ctx, ptype, 0, values...)
			if err != nil {
				return err
			}
			lines = append(lines, rows...)
		}
	}

	lines = lo.UniqBy(lines, func(l []string) string { return strings.Join(l, ",") })
	return load(m, lines)
}

func (a *Adapter) LoadPolicy(m model.Model) error {
	return a.LoadPolicyCtx(context.Background(), m)
}

func (a *Adapter) SavePolicy(m model.Model) error {
	return a.SavePolicyCtx(context.Background(), m)
}

func (a *Adapter) AddPolicy(sec, ptype string, rule []string) error {
	return a.AddPolicyCtx(context.Background(), sec, ptype, rule)
}

func (a *Adapter) RemovePolicy(sec, ptype string, rule []string) error {
	return a.RemovePolicyCtx(context.Background(), sec, ptype, rule)
}

func (a *Adapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.RemoveFilteredPolicyCtx(context.Background(), sec, ptype, fieldIndex, fieldValues...)
}

func (a *Adapter) AddPolicies(sec, ptype string, rules [][]string) error {
	return a.AddPoliciesCtx(context.Background(), sec, ptype, rules)
}

func (a *Adapter) RemovePolicies(sec, ptype string, rules [][]string) error {
	return a.RemovePoliciesCtx(context.Background(), sec, ptype, rules)
}

func (a *Adapter) LoadFilteredPolicy(m model.Model, filter any) error {
	return a.LoadFilteredPolicyCtx(context.Background(), m, filter)
}

func (a *Adapter) IsFiltered() bool {
	return a.filtered.Load()
}

func (a *Adapter) IsFilteredCtx(context.Context) bool {
	return a.filtered.Load()
}

func load(m model.Model, lines [][]string) error {
	for _, line := range lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}
