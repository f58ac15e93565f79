package store

import (
	"maps"
	"testing"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/abhisek/mistakecoach/ent/schema"
)

// declared maps each storage column of an ent schema to whether it is
// optional. ent adds an integer id when the schema defines none.
func declared(s ent.Interface) map[string]bool {
	cols := map[string]bool{"id": false}
	var fields []ent.Field
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	for _, f := range append(fields, s.Fields()...) {
		d := f.Descriptor()
		name := d.Name
		if d.StorageKey != "" {
			delete(cols, "id")
			name = d.StorageKey
		}
		cols[name] = d.Optional
	}
	return cols
}

func migrated(t *entschema.Table) map[string]bool {
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		cols[c.Name] = c.Nullable
	}
	return cols
}

func TestTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		table  *entschema.Table
		schema ent.Interface
	}{
		{kvSchema, schema.KV{}},
		{llmEventSchema, schema.LLMRequestEvent{}},
		{feedbackSchema, schema.FeedbackEntry{}},
	}
	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			want, got := declared(tt.schema), migrated(tt.table)
			if !maps.Equal(got, want) {
				t.Errorf("columns (name → nullable)\n got: %v\nwant: %v", got, want)
			}
		})
	}
}
