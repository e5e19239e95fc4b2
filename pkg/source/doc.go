// Package source loads family-member snapshots from repositories.
//
// Every backend implements [Repository]. [List] returns records in stored
// order (creation time, oldest first), which the layout relies on for
// deterministic tie-breaking.
//
// Backends:
//
//   - [File]: .json, .yaml/.yml, .toml and .xlsx snapshots
//   - [REST]: PostgREST-style HTTP endpoints (GET /rest/v1/<table>)
//   - [SQLite]: a family_members table in a SQLite database
//   - [Mongo]: a MongoDB collection
//   - [Memory]: fixed in-process records
//
// [Open] picks a backend from a URI:
//
//	repo, err := source.Open(ctx, "sqlite://family.db", source.Options{})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//	people, err := repo.List(ctx)
package source
