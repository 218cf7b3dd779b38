// Package wazero runs sandboxed extensions on the wazero runtime. Each
// extension gets its own runtime instance, virtual stdio and injected host
// capabilities; compiled code is shared across instantiations through one
// compilation cache.
package wazero
