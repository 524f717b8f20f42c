package mongo

import (
	"testing"

	"servimarket/pkg/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestCollections_CoverEveryTable(t *testing.T) {
	defs := Collections()

	for _, table := range query.Tables {
		def, ok := defs[table]
		if !ok {
			t.Errorf("no migration for table %s", table)
			continue
		}

		hasUniqueID := false
		for _, idx := range def.Indexes {
			keys, ok := idx.Keys.(bson.D)
			if !ok || len(keys) != 1 || keys[0].Key != "id" {
				continue
			}
			hasUniqueID = idx.Options != nil && idx.Options.Unique != nil && *idx.Options.Unique
		}
		if !hasUniqueID {
			t.Errorf("table %s is missing a unique id index", table)
		}
	}

	if len(defs) != len(query.Tables) {
		t.Errorf("expected %d collections, got %d", len(query.Tables), len(defs))
	}
}

func TestBookingValidator_StatusEnum(t *testing.T) {
	schema := Collections()[query.TableBookings].Validator["$jsonSchema"].(bson.M)
	status := schema["properties"].(bson.M)["status"].(bson.M)

	got := status["enum"].([]string)
	want := map[string]bool{"pending": true, "confirmed": true, "cancelled": true, "completed": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d statuses, got %v", len(want), got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected status %q", s)
		}
	}
}

func TestBookings_ActiveSlotIsUnique(t *testing.T) {
	var slot *options.IndexOptions
	for _, idx := range Collections()[query.TableBookings].Indexes {
		if idx.Options != nil && idx.Options.Name != nil && *idx.Options.Name == "active_slot_unique" {
			slot = idx.Options
		}
	}
	if slot == nil {
		t.Fatal("bookings are missing the active slot index")
	}
	if slot.Unique == nil || !*slot.Unique {
		t.Error("active slot index must be unique")
	}

	filter, ok := slot.PartialFilterExpression.(bson.M)
	if !ok {
		t.Fatalf("expected a partial filter, got %T", slot.PartialFilterExpression)
	}
	statuses := filter["status"].(bson.M)["$in"].([]string)
	for _, s := range statuses {
		if s == "cancelled" {
			t.Error("cancelled bookings must not hold the slot")
		}
	}
	if len(statuses) != 3 {
		t.Errorf("expected 3 active statuses, got %v", statuses)
	}
}
