// Package snapshot renders a component to HTML and stores the result.
//
// Render mounts a component into a fresh host.Tree and serializes it. A
// Store persists the bytes under a name: FileStore writes to a directory,
// S3Store uploads to a bucket.
//
//	html, err := snapshot.Render(app)
//	loc, err := snapshot.NewFileStore("dist").Put(ctx, "index.html", html)
package snapshot
