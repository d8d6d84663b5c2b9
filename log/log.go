// Copyright 2017 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides an opinionated, leveled, structured logging API used
// by the engine and its supporting packages. It is deliberately small: the
// interpreter's dispatch loop never logs, so this package only needs to
// serve coarse-grained call-frame tracing and error reporting.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a log level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERRO"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	case LvlTrace:
		return "TRCE"
	default:
		return "UNKNOWN"
	}
}

// Record is a single log event.
type Record struct {
	Time  time.Time
	Lvl   Lvl
	Msg   string
	Ctx   []interface{}
	Call  stack.Call
}

// Handler writes out a Record. Handlers must be safe for concurrent use.
type Handler interface {
	Log(r *Record) error
}

// Logger writes structured, leveled log records to an underlying Handler.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})

	// New returns a new Logger with ctx appended to every record it emits.
	New(ctx ...interface{}) Logger

	// SetHandler replaces the underlying output handler.
	SetHandler(h Handler)
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// swapHandler lets SetHandler swap the active handler without requiring
// callers to hold a lock across every Log call.
type swapHandler struct {
	mu sync.RWMutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.RLock()
	h := s.h
	s.mu.RUnlock()
	return h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

// Root is the root logger; New() without a parent derives from it.
var root = &logger{h: new(swapHandler)}

func init() {
	root.h.Swap(StreamHandler(os.Stderr, TerminalFormat(isatty.IsTerminal(os.Stderr.Fd()))))
}

// New returns a new Logger whose records carry ctx in addition to anything
// logged at the call site.
func New(ctx ...interface{}) Logger {
	return root.New(ctx...)
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{h: l.h}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
		Call: stack.Caller(2),
	}
	l.h.Log(r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

func (l *logger) SetHandler(h Handler) { l.h.Swap(h) }

// package-level convenience funcs mirroring the root logger, the common
// entrypoint used by the rest of the module.
func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LvlInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LvlWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx); os.Exit(1) }

// SetHandler replaces the root logger's handler.
func SetHandler(h Handler) { root.SetHandler(h) }

// fmtHandler formats records with a render func and writes them via writer.
type fmtHandler struct {
	mu     sync.Mutex
	writer writeSyncer
	format func(r *Record) []byte
}

type writeSyncer interface {
	Write(p []byte) (int, error)
}

func (f *fmtHandler) Log(r *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.writer.Write(f.format(r))
	return err
}

// StreamHandler returns a handler that writes formatted records to wr.
func StreamHandler(wr writeSyncer, format func(r *Record) []byte) Handler {
	return &fmtHandler{writer: wr, format: format}
}

// TerminalFormat returns a render func producing go-ethereum-style
// human-readable, optionally ANSI-colored log lines: level, time, message,
// then "k=v" pairs.
func TerminalFormat(color bool) func(r *Record) []byte {
	return func(r *Record) []byte {
		var b []byte
		lvl := r.Lvl.String()
		if color {
			lvl = colorize(r.Lvl, lvl)
		}
		b = append(b, fmt.Sprintf("%s[%s] %s", lvl, r.Time.Format("01-02|15:04:05.000"), r.Msg)...)
		for i := 0; i < len(r.Ctx)-1; i += 2 {
			b = append(b, fmt.Sprintf(" %v=%v", r.Ctx[i], r.Ctx[i+1])...)
		}
		b = append(b, '\n')
		return b
	}
}

func colorize(lvl Lvl, s string) string {
	var color int
	switch lvl {
	case LvlCrit:
		color = 35 // magenta
	case LvlError:
		color = 31 // red
	case LvlWarn:
		color = 33 // yellow
	case LvlInfo:
		color = 32 // green
	case LvlDebug:
		color = 36 // cyan
	default:
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}

// terminalWriter wraps colorable.NewColorable so callers that want forced
// ANSI passthrough on Windows consoles can opt in explicitly.
func terminalWriter(f *os.File) writeSyncer {
	return colorable.NewColorable(f)
}
