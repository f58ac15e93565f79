package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// Appended is mixed into tables that are only ever appended to. Rows are
// ordered by sequence; timestamp is for display and range queries.
type Appended struct {
	mixin.Schema
}

func (Appended) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").Unique().Immutable(),
		field.Int64("timestamp").Immutable().Comment("unix ms"),
	}
}

func (Appended) Indexes() []ent.Index {
	return []ent.Index{index.Fields("timestamp")}
}
