package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testDataset() Dataset {
	return Dataset{
		TableBookings: {
			{"id": "b1", "user_id": "u1", "status": "confirmed", "booking_date": "2026-03-02"},
			{"id": "b2", "user_id": "u2", "status": "pending", "booking_date": "2026-01-15"},
			{"id": "b3", "user_id": "u1", "status": "pending", "booking_date": "2026-02-10"},
			{"id": "b4", "user_id": "u1", "status": "confirmed", "booking_date": "2026-01-05"},
		},
		TableServices: {
			{"id": "1", "title": "Haircut", "price": float64(5000)},
			{"id": "2", "title": "Cleaning", "price": float64(8500)},
		},
	}
}

func newTestClient(opts ...Option) *Client {
	base := []Option{
		WithBackend(NewMemoryBackend(testDataset())),
		WithIDGenerator(func() string { return "generated-id" }),
		WithClock(func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }),
	}
	return New(append(base, opts...)...)
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String("id"))
	}
	return out
}

func TestSelect_UnknownTableIsEmpty(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	res := c.From("invoices").Select("*").Execute(ctx)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Data) != 0 {
		t.Errorf("expected no rows, got %d", len(res.Data))
	}

	single := c.From("invoices").Select("*").Eq("id", "x").Single(ctx)
	if single.Err != nil || single.Data != nil {
		t.Errorf("expected nil data and nil error, got %v / %v", single.Data, single.Err)
	}
}

func TestSelect_EqIsStrict(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "string id matches", value: "1", want: []string{"1"}},
		{name: "number does not match string id", value: 1, want: []string{}},
		{name: "float does not match string id", value: float64(1), want: []string{}},
		{name: "nil matches nothing", value: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.From(TableServices).Select("*").Eq("id", tt.value).Execute(ctx)
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if diff := cmp.Diff(tt.want, ids(res.Data)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelect_FilterAndOrderCommute(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	eqFirst := c.From(TableBookings).Select("*").
		Eq("user_id", "u1").
		Order("booking_date", Ascending).
		Execute(ctx)
	orderFirst := c.From(TableBookings).Select("*").
		Order("booking_date", Ascending).
		Eq("user_id", "u1").
		Execute(ctx)

	want := []string{"b4", "b3", "b1"}
	if diff := cmp.Diff(want, ids(eqFirst.Data)); diff != "" {
		t.Errorf("eq then order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids(eqFirst.Data), ids(orderFirst.Data)); diff != "" {
		t.Errorf("call order changed the result (-eq first +order first):\n%s", diff)
	}
}

func TestSelect_MultipleEqAndDescendingOrder(t *testing.T) {
	c := newTestClient()

	res := c.From(TableBookings).Select("*").
		Eq("user_id", "u1").
		Eq("status", "confirmed").
		Order("booking_date", Descending).
		Execute(context.Background())

	if diff := cmp.Diff([]string{"b1", "b4"}, ids(res.Data)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_LimitAndCount(t *testing.T) {
	c := newTestClient()

	res := c.From(TableBookings).Select("*", WithCount()).
		Order("booking_date", Descending).
		Limit(2).
		Execute(context.Background())

	if res.Count != 4 {
		t.Errorf("expected count 4, got %d", res.Count)
	}
	if diff := cmp.Diff([]string{"b1", "b3"}, ids(res.Data)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Range(t *testing.T) {
	c := newTestClient()

	res := c.From(TableBookings).Select("*").
		Order("booking_date", Ascending).
		Range(1, 2).
		Execute(context.Background())

	if diff := cmp.Diff([]string{"b2", "b3"}, ids(res.Data)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Projection(t *testing.T) {
	c := newTestClient()

	res := c.From(TableServices).Select("id, title").Eq("id", "2").Execute(context.Background())
	want := []Row{{"id": "2", "title": "Cleaning"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestSingle_FirstMatchOrNil(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	many := c.From(TableBookings).Select("*").Eq("user_id", "u1").Order("booking_date", Ascending).Single(ctx)
	if many.Err != nil {
		t.Fatalf("single over many rows failed: %v", many.Err)
	}
	if got := many.Data.String("id"); got != "b4" {
		t.Errorf("expected first ordered row b4, got %q", got)
	}

	none := c.From(TableBookings).Select("*").Eq("user_id", "nobody").Single(ctx)
	if none.Err != nil || none.Data != nil {
		t.Errorf("expected nil data and nil error, got %v / %v", none.Data, none.Err)
	}
}

func TestResultsDoNotAliasStorage(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	res := c.From(TableServices).Select("*").Eq("id", "1").Single(ctx)
	res.Data["title"] = "changed"

	again := c.From(TableServices).Select("*").Eq("id", "1").Single(ctx)
	if got := again.Data.String("title"); got != "Haircut" {
		t.Errorf("stored row was mutated through a result, title = %q", got)
	}
}

func TestInsert_EchoStoresNothing(t *testing.T) {
	c := newTestClient(WithWriteMode(WriteEcho))
	ctx := context.Background()

	in := Row{"title": "Tutoring", "price": float64(4000)}
	res := c.From(TableServices).Insert(ctx, in)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if diff := cmp.Diff([]Row{in}, res.Data); diff != "" {
		t.Errorf("echo mismatch (-want +got):\n%s", diff)
	}

	all := c.From(TableServices).Select("*").Execute(ctx)
	if len(all.Data) != 2 {
		t.Errorf("echo mode stored the row, have %d services", len(all.Data))
	}
}

func TestInsert_PersistAssignsIDAndTimestamp(t *testing.T) {
	c := newTestClient(WithWriteMode(WritePersist))
	ctx := context.Background()

	res := c.From(TableServices).Insert(ctx, Row{"title": "Tutoring"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := []Row{{"id": "generated-id", "title": "Tutoring", "created_at": "2026-10-19T12:00:00Z"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("insert result mismatch (-want +got):\n%s", diff)
	}

	stored := c.From(TableServices).Select("*").Eq("id", "generated-id").Single(ctx)
	if stored.Data == nil {
		t.Fatal("inserted row not readable")
	}
}

func TestInsert_PersistKeepsCallerIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     any
		wantID any
	}{
		{name: "numeric id is kept", id: 5, wantID: 5},
		{name: "string id is kept", id: "svc-9", wantID: "svc-9"},
		{name: "empty id is generated", id: "", wantID: "generated-id"},
		{name: "null id is generated", id: nil, wantID: "generated-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(WithWriteMode(WritePersist))
			ctx := context.Background()

			res := c.From(TableServices).Insert(ctx, Row{"id": tt.id, "title": "Tutoring"})
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if got := res.Data[0]["id"]; got != tt.wantID {
				t.Errorf("expected id %v, got %v", tt.wantID, got)
			}

			stored := c.From(TableServices).Select("*").Eq("id", tt.wantID).Single(ctx)
			if stored.Data == nil || stored.Data["title"] != "Tutoring" {
				t.Errorf("row not stored under id %v: %v", tt.wantID, stored.Data)
			}
		})
	}
}

func TestUpdate_RequiresFilter(t *testing.T) {
	for _, mode := range []WriteMode{WriteEcho, WritePersist} {
		c := newTestClient(WithWriteMode(mode))
		res := c.From(TableBookings).Update(Row{"status": "cancelled"}).Execute(context.Background())
		if !errors.Is(res.Err, ErrMissingFilter) {
			t.Errorf("%s: expected ErrMissingFilter, got %v", mode, res.Err)
		}
	}
}

func TestUpdate_EchoReturnsPartial(t *testing.T) {
	c := newTestClient(WithWriteMode(WriteEcho))
	ctx := context.Background()

	partial := Row{"status": "cancelled"}
	res := c.From(TableBookings).Update(partial).Eq("id", "b2").Execute(ctx)
	if diff := cmp.Diff([]Row{partial}, res.Data); diff != "" {
		t.Errorf("echo mismatch (-want +got):\n%s", diff)
	}

	row := c.From(TableBookings).Select("*").Eq("id", "b2").Single(ctx)
	if got := row.Data.String("status"); got != "pending" {
		t.Errorf("echo mode changed the stored row, status = %q", got)
	}
}

func TestUpdate_PersistMergesMatchingRows(t *testing.T) {
	c := newTestClient(WithWriteMode(WritePersist))
	ctx := context.Background()

	res := c.From(TableBookings).Update(Row{"status": "cancelled"}).
		Eq("id", "b3").
		Eq("user_id", "u1").
		Execute(ctx)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := []Row{{"id": "b3", "user_id": "u1", "status": "cancelled", "booking_date": "2026-02-10"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("update result mismatch (-want +got):\n%s", diff)
	}

	other := c.From(TableBookings).Update(Row{"status": "cancelled"}).
		Eq("id", "b2").
		Eq("user_id", "u1").
		Execute(ctx)
	if other.Err != nil || len(other.Data) != 0 {
		t.Errorf("update of a foreign row should match nothing, got %v / %v", other.Data, other.Err)
	}
	b2 := c.From(TableBookings).Select("status").Eq("id", "b2").Single(ctx)
	if got := b2.Data.String("status"); got != "pending" {
		t.Errorf("foreign row changed, status = %q", got)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	echo := newTestClient(WithWriteMode(WriteEcho))
	if res := echo.From(TableServices).Delete().Eq("id", "1").Execute(ctx); res.Err != nil || res.Count != 0 {
		t.Errorf("echo delete: got count %d, err %v", res.Count, res.Err)
	}

	persist := newTestClient(WithWriteMode(WritePersist))
	if res := persist.From(TableServices).Delete().Execute(ctx); !errors.Is(res.Err, ErrMissingFilter) {
		t.Errorf("expected ErrMissingFilter, got %v", res.Err)
	}
	res := persist.From(TableServices).Delete().Eq("id", "1").Execute(ctx)
	if res.Err != nil || res.Count != 1 {
		t.Fatalf("persist delete: got count %d, err %v", res.Count, res.Err)
	}
	left := persist.From(TableServices).Select("*").Execute(ctx)
	if diff := cmp.Diff([]string{"2"}, ids(left.Data)); diff != "" {
		t.Errorf("remaining rows mismatch (-want +got):\n%s", diff)
	}
}

func TestHook_InjectsFailure(t *testing.T) {
	boom := errors.New("boom")
	c := newTestClient(WithHook(func(_ context.Context, op Operation) error {
		if op.Kind == OpSingle && op.Table == TableServices {
			return boom
		}
		return nil
	}))
	ctx := context.Background()

	single := c.From(TableServices).Select("*").Eq("id", "1").Single(ctx)
	if !errors.Is(single.Err, boom) || single.Data != nil {
		t.Errorf("expected injected error and nil data, got %v / %v", single.Data, single.Err)
	}

	list := c.From(TableServices).Select("*").Execute(ctx)
	if list.Err != nil {
		t.Errorf("unrelated operation failed: %v", list.Err)
	}
}

func TestHook_SeesOperationsInOrder(t *testing.T) {
	var seen []Operation
	c := newTestClient(WithHook(func(_ context.Context, op Operation) error {
		seen = append(seen, op)
		return nil
	}))
	ctx := context.Background()

	c.From(TableBookings).Select("*").Eq("user_id", "u1").Execute(ctx)
	c.From(TableBookings).Update(Row{"status": "cancelled"}).Eq("id", "b1").Execute(ctx)
	c.Auth().GetSession(ctx)

	want := []Operation{
		{Kind: OpSelect, Table: TableBookings, Filters: []Filter{{Column: "user_id", Value: "u1"}}},
		{Kind: OpUpdate, Table: TableBookings, Filters: []Filter{{Column: "id", Value: "b1"}}},
		{Kind: OpGetSession},
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRows(t *testing.T) {
	type svc struct {
		ID    string  `json:"id"`
		Price float64 `json:"price"`
	}
	c := newTestClient()

	res := c.From(TableServices).Select("*").Order("price", Descending).Execute(context.Background())
	got, err := DecodeRows[svc](res.Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []svc{{ID: "2", Price: 8500}, {ID: "1", Price: 5000}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}
