// Package main provides C-compatible functions for building a shared library.
// Build with: go build -buildmode=c-shared -o libbbengine.so ./pkg/capi
//
// Every function returning a string hands ownership to the caller, who
// releases it with bbengine_free_string.
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"sync"
	"unsafe"

	"github.com/yourusername/bbengine/pkg/engine"
)

var (
	globalEngine *engine.Engine
	engineMutex  sync.RWMutex
	lastError    string
	errorMutex   sync.Mutex
)

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func currentEngine() *engine.Engine {
	engineMutex.RLock()
	defer engineMutex.RUnlock()
	return globalEngine
}

//export bbengine_version
func bbengine_version() *C.char {
	return C.CString("0.1.0")
}

//export bbengine_last_error
func bbengine_last_error() *C.char {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if lastError == "" {
		return nil
	}
	return C.CString(lastError)
}

//export bbengine_init
func bbengine_init(strict C.int) C.int {
	engineMutex.Lock()
	defer engineMutex.Unlock()

	eng, err := engine.NewEngine(engine.EngineOptions{
		StrictBallPass:    strict != 0,
		StrictBallCarrier: strict != 0,
	})
	if err != nil {
		setError(err)
		return -1
	}

	globalEngine = eng
	setError(nil)
	return 0
}

//export bbengine_shutdown
func bbengine_shutdown() {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = nil
}

//export bbengine_legal_actions
func bbengine_legal_actions(position, side *C.char, resultJSON **C.char) C.int {
	eng := currentEngine()
	if eng == nil {
		setError(errNotInitialized)
		*resultJSON = C.CString(`{"error": "engine not initialized"}`)
		return -1
	}

	out, err := legalActionsJSON(eng, C.GoString(position), C.GoString(side))
	if err != nil {
		setError(err)
		*resultJSON = C.CString(`{"error": "invalid position"}`)
		return -1
	}

	*resultJSON = C.CString(out)
	setError(nil)
	return 0
}

// bbengine_validate returns 0 for a legal action, 1 for an illegal one
// (reason in bbengine_last_error) and -1 on bad arguments.
//
//export bbengine_validate
func bbengine_validate(position, side *C.char, index, cell C.int) C.int {
	eng := currentEngine()
	if eng == nil {
		setError(errNotInitialized)
		return -1
	}

	code, reason, err := validate(eng, C.GoString(position), C.GoString(side), int(index), int(cell))
	switch {
	case err != nil:
		setError(err)
	case code == 1:
		errorMutex.Lock()
		lastError = reason
		errorMutex.Unlock()
	default:
		setError(nil)
	}
	return C.int(code)
}

//export bbengine_play
func bbengine_play(seed C.int64_t, maxRounds C.int, listing **C.char) C.int {
	eng := currentEngine()
	if eng == nil {
		setError(errNotInitialized)
		return -1
	}

	out, err := playListing(eng, int64(seed), int(maxRounds))
	if err != nil {
		setError(err)
		return -1
	}

	*listing = C.CString(out)
	setError(nil)
	return 0
}

//export bbengine_free_string
func bbengine_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
