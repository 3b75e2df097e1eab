package writer

import (
	"fmt"
	"strings"

	"github.com/maksimkurb/hostsfilter/internal/merge"
)

// Diff renders a unified diff between the current target content and the
// content an apply of the given result would produce. Used by the preview
// surfaces (CLI "diff" and the API) so the user can audit the change before
// touching the system file.
func Diff(current string, result *merge.Result) string {
	return unifiedDiff(
		splitLines(current),
		splitLines(string(Render(result))),
		"hosts (current)",
		"hosts (new)",
	)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// unifiedDiff computes a line-based unified diff with 3 lines of context.
// Classic LCS over the two line slices; list sizes here are bounded by
// hosts-file sizes, so the quadratic table is acceptable.
func unifiedDiff(a, b []string, fromFile, toFile string) string {
	ops := diffOps(a, b)

	changed := false
	for _, op := range ops {
		if op.kind != opEqual {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", fromFile)
	fmt.Fprintf(&sb, "+++ %s\n", toFile)

	const context = 3

	// Mark the ops that belong in a hunk: every change plus its context.
	keep := make([]bool, len(ops))
	for idx, op := range ops {
		if op.kind == opEqual {
			continue
		}
		lo := idx - context
		if lo < 0 {
			lo = 0
		}
		hi := idx + context
		if hi > len(ops)-1 {
			hi = len(ops) - 1
		}
		for k := lo; k <= hi; k++ {
			keep[k] = true
		}
	}

	for i := 0; i < len(ops); {
		if !keep[i] {
			i++
			continue
		}

		end := i
		for end < len(ops) && keep[end] {
			end++
		}

		aStart, aCount, bStart, bCount := hunkRange(ops, i, end)
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", aStart+1, aCount, bStart+1, bCount)
		for _, op := range ops[i:end] {
			switch op.kind {
			case opEqual:
				sb.WriteString(" " + op.line + "\n")
			case opDelete:
				sb.WriteString("-" + op.line + "\n")
			case opInsert:
				sb.WriteString("+" + op.line + "\n")
			}
		}

		i = end
	}

	return sb.String()
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type diffOp struct {
	kind   opKind
	line   string
	aIndex int
	bIndex int
}

func diffOps(a, b []string) []diffOp {
	// LCS length table.
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			ops = append(ops, diffOp{kind: opEqual, line: a[i], aIndex: i, bIndex: j})
			i++
			j++
		} else if lcs[i+1][j] >= lcs[i][j+1] {
			ops = append(ops, diffOp{kind: opDelete, line: a[i], aIndex: i, bIndex: j})
			i++
		} else {
			ops = append(ops, diffOp{kind: opInsert, line: b[j], aIndex: i, bIndex: j})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, diffOp{kind: opDelete, line: a[i], aIndex: i, bIndex: j})
	}
	for ; j < len(b); j++ {
		ops = append(ops, diffOp{kind: opInsert, line: b[j], aIndex: i, bIndex: j})
	}

	return ops
}

func hunkRange(ops []diffOp, start, end int) (aStart, aCount, bStart, bCount int) {
	aStart = ops[start].aIndex
	bStart = ops[start].bIndex
	for _, op := range ops[start:end] {
		switch op.kind {
		case opEqual:
			aCount++
			bCount++
		case opDelete:
			aCount++
		case opInsert:
			bCount++
		}
	}
	return aStart, aCount, bStart, bCount
}
