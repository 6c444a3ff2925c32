package snapshot

import (
	"context"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Store persists rendered snapshots.
type Store interface {
	// Put stores data under name and returns where it was written.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get returns the data stored under name.
	Get(ctx context.Context, name string) ([]byte, error)
}

// Render mounts comp into an empty tree, serializes it and unmounts it.
func Render(comp *vdom.Component, opts ...render.Option) ([]byte, error) {
	html, _, err := RenderTree(comp, opts...)
	return html, err
}

// RenderTree is Render but also returns the tree, for inspection.
func RenderTree(comp *vdom.Component, opts ...render.Option) ([]byte, *host.Tree, error) {
	tree := host.NewTree()
	inst, err := render.New(tree, opts...).Render(comp, tree.Root())
	if err != nil {
		return nil, nil, err
	}
	html := []byte(tree.HTML())
	inst.Unmount()
	return html, tree, nil
}

// Save renders comp and stores it under name.
func Save(ctx context.Context, store Store, name string, comp *vdom.Component, opts ...render.Option) (string, error) {
	html, err := Render(comp, opts...)
	if err != nil {
		return "", err
	}
	return store.Put(ctx, name, html)
}
