// Package profile provides optional runtime profiling for the molang
// command.
//
// Profiling wraps [github.com/pkg/profile] and must be enabled at build time
// with the "pprof" build tag:
//
//	go build -tags pprof -o molang .
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
// A profile is described by [Settings] and started with [Settings.Start]:
//
//	defer profile.Settings{Mode: "cpu", Dir: "/tmp/profiles"}.Start().Stop()
//
// From the command line:
//
//	molang --pprof-mode cpu -e 'math.pow(2, 10)'
//	molang --pprof-mode heap --pprof-dir ./profiles script.mo
//
// Profiles are written under $XDG_CACHE_HOME/molang/pprof by default and are
// read with go tool pprof:
//
//	go tool pprof -http=: ~/.cache/molang/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
