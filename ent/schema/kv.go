package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KV holds the learner's JSON documents: profile, history and theme.
type KV struct {
	ent.Schema
}

func (KV) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("key").
			Unique(),
		field.Text("value"),
		field.Int64("updated_at").
			Comment("Unix milliseconds of the last write"),
	}
}
