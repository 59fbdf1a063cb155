//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Stepgen generates the compact gate table from a YAML step tree.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxStates = 0xffff

// Substep defines one substep of a step type.
type Substep struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
	Type  string `yaml:"type"`
}

// Names returns the expanded substep names.
func (s Substep) Names() []string {
	if s.Count == 0 {
		return []string{s.Name}
	}
	var result []string
	for i := 0; i < s.Count; i++ {
		result = append(result, fmt.Sprintf("%s%d", s.Name, i))
	}
	return result
}

// Tree defines the step tree.
type Tree struct {
	Root  string               `yaml:"root"`
	Types map[string][]Substep `yaml:"types"`
}

type edge struct {
	name string
	next int
}

type state struct {
	path  string
	edges []edge
}

type generator struct {
	tree   *Tree
	states []*state
	stack  map[string]bool
}

func (gen *generator) expand(path, typ string) (int, error) {
	if len(gen.states) >= maxStates {
		return 0, fmt.Errorf("too many states")
	}
	idx := len(gen.states)
	s := &state{
		path: path,
	}
	gen.states = append(gen.states, s)

	if len(typ) == 0 {
		return idx, nil
	}
	substeps, ok := gen.tree.Types[typ]
	if !ok {
		return 0, fmt.Errorf("%s: unknown type '%s'", path, typ)
	}
	if gen.stack[typ] {
		return 0, fmt.Errorf("%s: recursive type '%s'", path, typ)
	}
	gen.stack[typ] = true
	defer delete(gen.stack, typ)

	seen := make(map[string]bool)
	for _, sub := range substeps {
		for _, name := range sub.Names() {
			if len(name) == 0 || strings.Contains(name, "/") {
				return 0, fmt.Errorf("%s: invalid substep '%s'", path, name)
			}
			if seen[name] {
				return 0, fmt.Errorf("%s: duplicate substep '%s'", path, name)
			}
			seen[name] = true

			next, err := gen.expand(path+"/"+name, sub.Type)
			if err != nil {
				return 0, err
			}
			s.edges = append(s.edges, edge{
				name: name,
				next: next,
			})
		}
	}
	return idx, nil
}

func (gen *generator) write(input string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Code generated by stepgen from %s; DO NOT EDIT.

package step

`, input)

	fmt.Fprintf(&buf, "var compactNames = [...]string{\n")
	for _, s := range gen.states {
		fmt.Fprintf(&buf, "\t%q,\n", s.path)
	}
	fmt.Fprintf(&buf, "}\n\n")

	fmt.Fprintf(&buf, "var compactFirst = [...]uint16{\n")
	var first int
	for _, s := range gen.states {
		fmt.Fprintf(&buf, "\t%d,\n", first)
		first += len(s.edges)
	}
	fmt.Fprintf(&buf, "\t%d,\n", first)
	fmt.Fprintf(&buf, "}\n\n")

	fmt.Fprintf(&buf, "var compactEdges = [...]compactEdge{\n")
	for _, s := range gen.states {
		for _, e := range s.edges {
			fmt.Fprintf(&buf, "\t{%q, %d},\n", e.name, e.next)
		}
	}
	fmt.Fprintf(&buf, "}\n")

	return format.Source(buf.Bytes())
}

func main() {
	input := flag.String("i", "steps.yaml", "step tree file")
	output := flag.String("o", "", "output file")
	flag.Parse()

	log.SetFlags(0)

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}
	tree := new(Tree)
	if err := yaml.Unmarshal(data, tree); err != nil {
		log.Fatalf("%s: %s", *input, err)
	}
	if len(tree.Root) == 0 {
		log.Fatalf("%s: no root", *input)
	}

	gen := &generator{
		tree:  tree,
		stack: make(map[string]bool),
	}
	if _, err := gen.expand(tree.Root, tree.Root); err != nil {
		log.Fatalf("%s: %s", *input, err)
	}
	src, err := gen.write(*input)
	if err != nil {
		log.Fatal(err)
	}
	if len(*output) == 0 {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*output, src, 0644); err != nil {
		log.Fatal(err)
	}
}
