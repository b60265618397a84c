// Package engine adapts pongo2 to the scripting seam.
//
// A Factory is the long-lived, process-wide half: it owns the factory
// settings, an optionally bound Configuration (falling back to a lazily
// built default), and a tracker over the template-model registry. Engines
// are the per-render half: Eval merges the current template models into the
// bindings, parses the script with the current Configuration and executes
// it into the context writer.
//
// Reconfiguration swaps the bound Configuration atomically. A render keeps
// the Configuration it loaded when it started.
package engine
