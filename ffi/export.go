package ffi

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uint8_t *buf;
	size_t len;
} ffi_bytes;

typedef struct {
	int status;
	ffi_bytes data;
} ffi_bytes_output;

typedef struct {
	int status;
	char *data;
} ffi_string_output;
*/
import "C"

import "unsafe"

// The cgo-exported functions below use C's snake_case naming (rather
// than idiomatic Go) because the exported symbol name must match the
// Go function name exactly, and this is the exact C ABI spec.md §6
// names: version, encode_packet, decode_packet, free_bytes,
// free_string.

//export version
func version() *C.char {
	return C.CString(Version)
}

//export encode_packet
func encode_packet(input *C.char, isRequest C.int) C.ffi_bytes_output {
	if input == nil {
		return C.ffi_bytes_output{status: C.int(StatusNullPointer)}
	}
	out, status, err := EncodePacket(C.GoString(input), isRequest != 0)
	if err != nil {
		return C.ffi_bytes_output{status: C.int(status), data: newCBytes([]byte(err.Error()))}
	}
	return C.ffi_bytes_output{status: C.int(StatusOk), data: newCBytes(out)}
}

//export decode_packet
func decode_packet(input C.ffi_bytes, isRequest C.int) C.ffi_string_output {
	if input.buf == nil || input.len == 0 {
		return C.ffi_string_output{status: C.int(StatusNullPointer)}
	}
	raw := C.GoBytes(unsafe.Pointer(input.buf), C.int(input.len))
	out, status, err := DecodePacket(raw, isRequest != 0)
	if err != nil {
		return C.ffi_string_output{status: C.int(status), data: C.CString(err.Error())}
	}
	return C.ffi_string_output{status: C.int(StatusOk), data: C.CString(out)}
}

//export free_bytes
func free_bytes(data C.ffi_bytes) {
	if data.buf == nil {
		return
	}
	C.free(unsafe.Pointer(data.buf))
}

//export free_string
func free_string(s *C.char) {
	if s == nil {
		return
	}
	C.free(unsafe.Pointer(s))
}

func newCBytes(b []byte) C.ffi_bytes {
	if len(b) == 0 {
		return C.ffi_bytes{}
	}
	buf := C.CBytes(b)
	return C.ffi_bytes{buf: (*C.uint8_t)(buf), len: C.size_t(len(b))}
}
