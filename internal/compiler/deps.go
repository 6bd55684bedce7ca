package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// detectDependencyCycles finds loops in the conditional-visibility
// graph (question → dependsOn target).
//
// A cycle means no member could ever become visible: each waits for an
// answer to another member that is itself unreachable. The strictly
// smaller orderIndex rule already excludes cycles among individually
// valid questions, but the cycle check runs regardless so a pack with
// several ordering mistakes reports the loop as one finding instead of
// a confusing scatter of E109s.
//
// Uses Tarjan's algorithm to find strongly connected components; each
// SCC with more than one member, or a self-loop, is one E110 finding.
func detectDependencyCycles(questions []quiz.Question) []ValidationError {
	if len(questions) == 0 {
		return nil
	}

	graph := make(dependencyGraph, len(questions))
	byID := make(map[string]bool, len(questions))
	for _, q := range questions {
		byID[q.ID] = true
	}
	for _, q := range questions {
		graph[q.ID] = nil
		if q.Conditional != nil && byID[q.Conditional.DependsOn] {
			graph[q.ID] = append(graph[q.ID], q.Conditional.DependsOn)
		}
	}

	var errs []ValidationError
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		sort.Strings(scc)
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("question.%s.dependsOn", scc[0]),
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(append(scc, scc[0]), " -> ")),
			Code:    ErrDependencyCycle,
		})
	}
	return errs
}

// dependencyGraph maps question ID to the questions it depends on.
type dependencyGraph map[string][]string

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's
// algorithm. Single-node SCCs without self-loops are not cycles.
// Iteration over nodes is sorted so findings are stable across runs.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v roots an SCC: pop the stack down to it
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}
