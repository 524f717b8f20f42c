package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Result is the outcome of a multi-row operation. Err is nil on success, in
// which case Data holds the rows (possibly none).
type Result struct {
	Data  []Row
	Count int
	Err   error
}

// Decode decodes Data into dst, a pointer to a slice of structs.
func (r Result) Decode(dst any) error {
	if r.Err != nil {
		return r.Err
	}
	rows := r.Data
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode rows: %w", err)
	}
	return nil
}

// SingleResult is the outcome of Single. Data is nil when nothing matched.
type SingleResult struct {
	Data Row
	Err  error
}

// Decode decodes Data into dst and reports whether a row was found.
func (r SingleResult) Decode(dst any) (bool, error) {
	if r.Err != nil {
		return false, r.Err
	}
	if r.Data == nil {
		return false, nil
	}
	if err := r.Data.Decode(dst); err != nil {
		return false, err
	}
	return true, nil
}

type Table struct {
	client *Client
	name   string
	known  bool
}

func (t *Table) Name() string {
	return t.name
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type selectOptions struct {
	count bool
}

type SelectOption func(*selectOptions)

// WithCount fills Result.Count with the number of rows matching the filters,
// before the limit is applied.
func WithCount() SelectOption {
	return func(o *selectOptions) { o.count = true }
}

type order struct {
	column    string
	direction Direction
}

type SelectQuery struct {
	table   *Table
	columns []string
	opts    selectOptions
	filters []Filter
	order   *order
	limit   int
	offset  int
}

// Select begins a read. columns is "*" or empty for whole rows, otherwise a
// comma separated list of column names.
func (t *Table) Select(columns string, opts ...SelectOption) *SelectQuery {
	q := &SelectQuery{table: t, columns: parseColumns(columns), limit: -1}
	for _, opt := range opts {
		opt(&q.opts)
	}
	return q
}

func (q *SelectQuery) Eq(column string, value any) *SelectQuery {
	q.filters = append(q.filters, Filter{Column: column, Value: value})
	return q
}

// Order sorts by column. Calling it again replaces the previous ordering.
func (q *SelectQuery) Order(column string, direction Direction) *SelectQuery {
	q.order = &order{column: column, direction: direction}
	return q
}

// Limit keeps at most n rows. Negative values are treated as zero.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = max(0, n)
	return q
}

// Range keeps rows from index from to index to, both inclusive.
func (q *SelectQuery) Range(from, to int) *SelectQuery {
	q.offset = max(0, from)
	q.limit = max(0, to-q.offset+1)
	return q
}

func (q *SelectQuery) Execute(ctx context.Context) Result {
	op := Operation{Kind: OpSelect, Table: q.table.name, Filters: copyFilters(q.filters)}
	if err := q.table.client.runHooks(ctx, op); err != nil {
		return Result{Err: err}
	}

	rows, err := q.matching(ctx)
	if err != nil {
		return Result{Err: err}
	}

	count := 0
	if q.opts.count {
		count = len(rows)
	}

	if q.offset > 0 {
		if q.offset >= len(rows) {
			rows = rows[:0]
		} else {
			rows = rows[q.offset:]
		}
	}
	if q.limit >= 0 && q.limit < len(rows) {
		rows = rows[:q.limit]
	}

	data := make([]Row, len(rows))
	for i, r := range rows {
		data[i] = project(r, q.columns)
	}
	return Result{Data: data, Count: count}
}

// Single returns the first row after filtering and ordering, or nil data when
// nothing matched. It never fails because of how many rows matched.
func (q *SelectQuery) Single(ctx context.Context) SingleResult {
	op := Operation{Kind: OpSingle, Table: q.table.name, Filters: copyFilters(q.filters)}
	if err := q.table.client.runHooks(ctx, op); err != nil {
		return SingleResult{Err: err}
	}

	rows, err := q.matching(ctx)
	if err != nil {
		return SingleResult{Err: err}
	}
	if len(rows) == 0 {
		return SingleResult{}
	}
	return SingleResult{Data: project(rows[0], q.columns)}
}

func (q *SelectQuery) matching(ctx context.Context) ([]Row, error) {
	if !q.table.known {
		return []Row{}, nil
	}

	all, err := q.table.client.backend.Load(ctx, q.table.name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", q.table.name, err)
	}

	rows := make([]Row, 0, len(all))
	for _, r := range all {
		if matchAll(r, q.filters) {
			rows = append(rows, r)
		}
	}

	if q.order != nil {
		column, desc := q.order.column, q.order.direction == Descending
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareValues(rows[i][column], rows[j][column])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return rows, nil
}

// Insert adds rows. In WriteEcho mode the rows are returned unchanged and
// nothing is stored.
func (t *Table) Insert(ctx context.Context, rows ...Row) Result {
	c := t.client
	if err := c.runHooks(ctx, Operation{Kind: OpInsert, Table: t.name}); err != nil {
		return Result{Err: err}
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	if c.mode != WritePersist || !t.known {
		return Result{Data: out}
	}

	now := c.now().UTC().Format(time.RFC3339Nano)
	for _, r := range out {
		if missingID(r) {
			r["id"] = c.newID()
		}
		if _, ok := r["created_at"]; !ok {
			r["created_at"] = now
		}
	}
	if err := c.backend.Append(ctx, t.name, out); err != nil {
		return Result{Err: fmt.Errorf("failed to insert into %s: %w", t.name, err)}
	}

	data := make([]Row, len(out))
	for i, r := range out {
		data[i] = r.Clone()
	}
	return Result{Data: data}
}

// missingID reports whether r lacks an id the caller chose. Ids of any
// other type are kept as given.
func missingID(r Row) bool {
	id, ok := r["id"]
	return !ok || id == nil || id == ""
}

type UpdateQuery struct {
	table   *Table
	partial Row
	filters []Filter
}

// Update begins a partial update. At least one Eq is required before
// Execute.
func (t *Table) Update(partial Row) *UpdateQuery {
	return &UpdateQuery{table: t, partial: partial.Clone()}
}

func (q *UpdateQuery) Eq(column string, value any) *UpdateQuery {
	q.filters = append(q.filters, Filter{Column: column, Value: value})
	return q
}

// Execute applies the update. WriteEcho returns the partial as the only row.
// WritePersist returns every row the update matched, after the merge.
func (q *UpdateQuery) Execute(ctx context.Context) Result {
	if len(q.filters) == 0 {
		return Result{Err: ErrMissingFilter}
	}

	c := q.table.client
	op := Operation{Kind: OpUpdate, Table: q.table.name, Filters: copyFilters(q.filters)}
	if err := c.runHooks(ctx, op); err != nil {
		return Result{Err: err}
	}

	if c.mode != WritePersist {
		return Result{Data: []Row{q.partial.Clone()}}
	}
	if !q.table.known {
		return Result{Data: []Row{}}
	}

	updated, err := c.backend.Patch(ctx, q.table.name, q.filters, q.partial)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to update %s: %w", q.table.name, err)}
	}
	if updated == nil {
		updated = []Row{}
	}
	return Result{Data: updated, Count: len(updated)}
}

type DeleteQuery struct {
	table   *Table
	filters []Filter
}

// Delete begins a delete. At least one Eq is required before Execute.
func (t *Table) Delete() *DeleteQuery {
	return &DeleteQuery{table: t}
}

func (q *DeleteQuery) Eq(column string, value any) *DeleteQuery {
	q.filters = append(q.filters, Filter{Column: column, Value: value})
	return q
}

// Execute removes matching rows and reports how many in Count. WriteEcho
// removes nothing.
func (q *DeleteQuery) Execute(ctx context.Context) Result {
	if len(q.filters) == 0 {
		return Result{Err: ErrMissingFilter}
	}

	c := q.table.client
	op := Operation{Kind: OpDelete, Table: q.table.name, Filters: copyFilters(q.filters)}
	if err := c.runHooks(ctx, op); err != nil {
		return Result{Err: err}
	}

	if c.mode != WritePersist || !q.table.known {
		return Result{Data: []Row{}}
	}

	removed, err := c.backend.Remove(ctx, q.table.name, q.filters)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to delete from %s: %w", q.table.name, err)}
	}
	return Result{Data: []Row{}, Count: removed}
}

func copyFilters(filters []Filter) []Filter {
	if len(filters) == 0 {
		return nil
	}
	out := make([]Filter, len(filters))
	copy(out, filters)
	return out
}
