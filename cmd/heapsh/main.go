// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The heapsh command is an interactive shell for poking at a teavmgc
// Collector: allocate objects, pin and unpin roots, force a collection,
// and inspect the resulting heap, one command at a time. It is the
// module's stand-in for a live debugger REPL, since there is no
// compiled mutator process to attach to.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"teavmgc/collector"
	"teavmgc/internal/heap"
)

const help = `commands:
  node                 allocate a demo Node object, print its address
  array <n>             allocate an int array of length n, print its address
  root <addr>           pin the object at addr as a root
  unroot <addr>         drop the pin on the object at addr
  collect               run one clearMarks/mark/sweep cycle
  stats                 print live/free byte and chunk counts
  dump                  list every record in the heap
  help                  print this message
  quit                  exit
`

func main() {
	c, err := collector.New(collector.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapsh: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()
	nodeTag := c.Define("Node", 24, 16)
	roots := c.Roots().(*collector.StaticRoots)

	rl, err := readline.New("heapsh> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapsh: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("teavmgc heap shell. Type help for commands, quit to exit.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "heapsh: %v\n", err)
			return
		}
		if !dispatch(c, nodeTag, roots, strings.TrimSpace(line)) {
			return
		}
	}
}

// dispatch runs one command line and reports whether the shell should
// keep reading. Allocation and collection failures surface as
// *collector.FatalError panics (spec.md §7); the shell recovers them so
// one bad command doesn't kill the whole session.
func dispatch(c *collector.Collector, nodeTag collector.Tag, roots *collector.StaticRoots, line string) (keepGoing bool) {
	keepGoing = true
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*collector.FatalError); ok {
				fmt.Println(fe.Error())
				return
			}
			panic(r)
		}
	}()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "help":
		fmt.Print(help)
	case "quit", "exit":
		return false
	case "node":
		addr := c.Alloc(nodeTag)
		fmt.Println(addr)
	case "array":
		if len(fields) != 2 {
			fmt.Println("usage: array <length>")
			return true
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("bad length:", err)
			return true
		}
		addr := c.IntArrayAlloc(int32(n))
		fmt.Println(addr)
	case "root":
		addr, ok := parseAddr(fields)
		if !ok {
			return true
		}
		roots.Pin(addr)
	case "unroot":
		addr, ok := parseAddr(fields)
		if !ok {
			return true
		}
		roots.Unpin(addr)
	case "collect":
		c.CollectGarbage()
		fmt.Println("ok")
	case "stats":
		s := c.Stats()
		fmt.Printf("live objects: %d  live bytes: %d  free bytes: %d  free chunks: %d\n",
			s.LiveObjects, s.LiveBytes, s.FreeBytes, s.FreeChunks)
	case "dump":
		err := c.ForEachRecord(func(info collector.ObjectInfo) bool {
			if info.Free {
				fmt.Printf("  %v  free   size=%d\n", info.Addr, info.Size)
			} else {
				fmt.Printf("  %v  object size=%d tag=%#x marked=%v\n", info.Addr, info.Size, int32(info.Tag), info.Tag.Marked())
			}
			return true
		})
		if err != nil {
			fmt.Println("dump failed:", err)
		}
	default:
		fmt.Printf("unknown command %q; try help\n", fields[0])
	}
	return true
}

func parseAddr(fields []string) (heap.Address, bool) {
	if len(fields) != 2 {
		fmt.Println("usage:", fields[0], "<addr>")
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 64)
	if err != nil {
		fmt.Println("bad address:", err)
		return 0, false
	}
	return heap.Address(n), true
}
