// Package todo holds the in-memory task list.
//
// A Store owns an ordered slice of Task values, the id generator, and a stack
// of recently added ids that drives undo:
//
//	s := todo.NewStore()
//	id := s.Add("Buy milk")        // 1
//	s.AddTimed("Report", "Friday") // 2
//	s.Complete(id)
//	s.Undo()                       // removes task 2
//
// # Identity
//
// Ids are positive integers handed out in increasing order and never reused
// within a session. After a load, the generator continues from one past the
// highest id seen.
//
// # Undo
//
// Only additions are undoable. Completions, sorts and loads never touch the
// undo stack, and an undone addition cannot be redone.
//
// # Ordering
//
// Tasks keep insertion order until Sort is called. Both sort criteria are
// stable.
package todo
