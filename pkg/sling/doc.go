// Package sling defines the narrow host contracts the scripting engine and
// its directives consume: resources and their resolver, the request and
// response of the rendering pass, request dispatchers for nested includes,
// and the capture response used to buffer an include.
//
// Nothing in this package renders anything. A host (see internal/host for
// the in-memory reference host) implements these interfaces and hands them
// to the engine through the script bindings named by the Binding constants.
package sling
