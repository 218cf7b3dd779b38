// Package wasmtest provides hand-assembled WebAssembly modules small enough
// to embed in test files, so sandbox tests need no build toolchain.
package wasmtest

// NoopModule is a minimal module exporting an empty "initialize" function.
//
//	(module (func (export "initialize")))
func NoopModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type: () -> ()
		0x03, 0x02, 0x01, 0x00, // func 0 has type 0
		0x07, 0x0e, 0x01, // export section, 1 entry
		0x0a, 'i', 'n', 'i', 't', 'i', 'a', 'l', 'i', 'z', 'e',
		0x00, 0x00, // func index 0
		0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code: empty body
	}
}

// NotifyModule imports the proxy's capability bridge and calls it from its
// exported "initialize" function.
//
//	(module
//	  (import "lapce" "host_handle_notification" (func $notify))
//	  (func (export "initialize") (call $notify)))
func NotifyModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type: () -> ()
		0x02, 0x22, 0x01, // import section, 1 entry
		0x05, 'l', 'a', 'p', 'c', 'e',
		0x18, 'h', 'o', 's', 't', '_', 'h', 'a', 'n', 'd', 'l', 'e', '_',
		'n', 'o', 't', 'i', 'f', 'i', 'c', 'a', 't', 'i', 'o', 'n',
		0x00, 0x00, // func import, type 0
		0x03, 0x02, 0x01, 0x00, // func 1 has type 0
		0x07, 0x0e, 0x01, // export section, 1 entry
		0x0a, 'i', 'n', 'i', 't', 'i', 'a', 'l', 'i', 'z', 'e',
		0x00, 0x01, // func index 1
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x10, 0x00, 0x0b, // code: call 0
	}
}
