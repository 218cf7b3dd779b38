// Package ports defines the interfaces the plugin proxy's components are
// wired through. These ports enable dependency inversion - the catalog and
// the execution engines depend on abstractions, and the application and
// infrastructure layers implement them.
package ports
