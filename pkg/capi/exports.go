// Package main provides C-compatible functions for building a shared library.
// Build with: go build -buildmode=c-shared -o libgomoku.so ./pkg/capi
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"unsafe"
)

//export gomoku_version
func gomoku_version() *C.char {
	return C.CString(libraryVersion)
}

//export gomoku_last_error
func gomoku_last_error() *C.char {
	msg := getError()
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

//export gomoku_init
func gomoku_init(weightsFile *C.char) C.int {
	path := ""
	if weightsFile != nil {
		path = C.GoString(weightsFile)
	}
	if err := initEngine(path); err != nil {
		setError(err)
		return -1
	}
	setError(nil)
	return 0
}

//export gomoku_shutdown
func gomoku_shutdown() {
	shutdownEngine()
}

// result hands a JSON string to the caller, who must free it with gomoku_free_string.
func result(out **C.char, body string, err error) C.int {
	if err != nil {
		setError(err)
		*out = C.CString(errorJSON(err))
		return -1
	}
	setError(nil)
	*out = C.CString(body)
	return 0
}

//export gomoku_evaluate
func gomoku_evaluate(positionID *C.char, resultJSON **C.char) C.int {
	body, err := evaluateJSON(C.GoString(positionID))
	return result(resultJSON, body, err)
}

//export gomoku_best_move
func gomoku_best_move(positionID *C.char, depth C.int, resultJSON **C.char) C.int {
	body, err := bestMoveJSON(C.GoString(positionID), int(depth))
	return result(resultJSON, body, err)
}

//export gomoku_legal_moves
func gomoku_legal_moves(positionID *C.char, resultJSON **C.char) C.int {
	body, err := legalMovesJSON(C.GoString(positionID))
	return result(resultJSON, body, err)
}

//export gomoku_free_string
func gomoku_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}
