package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// FeedbackEntry is a note the learner sent from the feedback screen.
type FeedbackEntry struct {
	ent.Schema
}

func (FeedbackEntry) Mixin() []ent.Mixin {
	return []ent.Mixin{Appended{}}
}

func (FeedbackEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID"),
		field.Text("message"),
		field.String("learning_mode").
			Optional().
			Comment("Teaching mode active when the note was written"),
	}
}
