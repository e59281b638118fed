// Copyright 2024 The Synapse Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package disk

import (
	"flag"
	"io"
	"io/ioutil"
	"log"
	"os"
	"sync"
)

// Adapted from the teacher package's own debug.go: a single flag-gated
// stdlib logger, silent unless -disk.debug is passed. Unlike the teacher's
// version, initLogger tolerates being called before flag.Parse (tests
// construct a worker without ever parsing flags) rather than panicking.
var fEnableDebug = flag.Bool(
	"disk.debug",
	false,
	"Write disk worker debugging messages to stderr.")

var gLogger *log.Logger
var gLoggerOnce sync.Once

func initLogger() {
	var writer io.Writer = ioutil.Discard
	if flag.Parsed() && *fEnableDebug {
		writer = os.Stderr
	}

	const flags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
	gLogger = log.New(writer, "disk: ", flags)
}

func getLogger() *log.Logger {
	gLoggerOnce.Do(initLogger)
	return gLogger
}

// jobLogger adapts the logger above to the worker's job protocol: it knows
// each jobKind's verb and the shape of the job that produced an error, so
// callers in handle.go report a failure with one call instead of
// hand-formatting a message per case. Unlike the teacher's fuse.Logger
// (which callers use as a bare *log.Logger for arbitrary trace lines), the
// disk worker never logs on success — a completed cache access is exactly
// as uninteresting as the completed FUSE ops the teacher's own logger
// exists to trace, so this only ever reports the failures jobResult.err
// carries.
type jobLogger struct {
	*log.Logger
}

// failed logs j's failure if err is non-nil; it is a no-op otherwise, so
// every call site in worker.run can call it unconditionally.
func (l jobLogger) failed(j job, err error) {
	if err == nil {
		return
	}
	l.Printf("%s %s@%d+%d: %v", jobVerb(j.kind), j.path, j.offset, jobByteCount(j), err)
}

func jobVerb(kind jobKind) string {
	switch kind {
	case jobRead:
		return "read"
	case jobWrite:
		return "write"
	case jobRemove:
		return "remove"
	case jobFlush:
		return "flush"
	case jobShutdown:
		return "shutdown"
	default:
		return "job"
	}
}

// jobByteCount reports the length a failure message should cite: jobWrite
// jobs carry their payload in data rather than length.
func jobByteCount(j job) int {
	if j.kind == jobWrite {
		return len(j.data)
	}
	return j.length
}
