// Package host provides an in-memory host tree for the renderer.
//
// Tree implements render.HostOps and render.Remover. Every operation is
// appended to an op log and pushed to subscribers, which is how the live
// preview server streams changes to a browser and how tests assert on the
// exact operations a patch issued. HTML serializes the current tree, and
// Dispatch invokes an event handler stored on a node.
package host
