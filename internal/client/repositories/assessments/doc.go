// Package assessments is the facade over the "assessments" collection.
//
// Saved assessments start unsynced. The sync scheduler pushes them to the
// remote authority and flips them with MarkSynced; nothing here talks to the
// network.
//
// Typical Usage
//
//	repo := assessments.NewStoreRepository(st)
//	item, _ := repo.Save(ctx, map[string]any{"id": "a1", "score": 4})
//	list, _ := repo.List(ctx, 0)
//	pending, _ := repo.ListUnsynced(ctx)
//	_, _ = repo.MarkSynced(ctx, *item)
package assessments
