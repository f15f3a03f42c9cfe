// Package tree assembles taxonomy terms into a nested tree.
package tree

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/archivegraph/internal/core/model"
	"github.com/agenthands/archivegraph/internal/core/normalize"
)

// Term is a taxonomy term and the id of the node it is a child of.
type Term struct {
	Node     model.Node
	ParentID string
}

// TermsFromRecords reads the term and parentId columns of records.
func TermsFromRecords(records []*neo4j.Record) []Term {
	out := make([]Term, 0, len(records))
	for _, rec := range records {
		v, ok := rec.Get("term")
		if !ok {
			continue
		}
		n, ok := v.(neo4j.Node)
		if !ok {
			continue
		}
		t := Term{Node: normalize.Node(n)}
		if p, ok := rec.Get("parentId"); ok {
			if id, ok := p.(int64); ok {
				t.ParentID = strconv.FormatInt(id, 10)
			}
		}
		out = append(out, t)
	}
	return out
}

// Build hangs terms under root by parent id. A term is placed once, at the
// first parent that reaches it. Terms whose parent is unknown, and terms
// caught in a cycle, are attached to the root. Children are sorted by label.
func Build(root model.Node, terms []Term) *model.TaxonomyTree {
	rootTree := newTree(root)

	nodes := make(map[string]*model.TaxonomyTree, len(terms))
	order := make([]string, 0, len(terms))
	children := make(map[string][]string)

	for _, t := range terms {
		id := t.Node.ID()
		if id == "" || id == rootTree.ID {
			continue
		}
		if _, ok := nodes[id]; !ok {
			nodes[id] = newTree(t.Node)
			order = append(order, id)
		}
		children[t.ParentID] = append(children[t.ParentID], id)
	}

	placed := make(map[string]bool, len(nodes))
	attach := func(start *model.TaxonomyTree) {
		stack := []*model.TaxonomyTree{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, id := range children[cur.ID] {
				if placed[id] {
					continue
				}
				placed[id] = true
				child := nodes[id]
				cur.Children = append(cur.Children, child)
				stack = append(stack, child)
			}
		}
	}

	attach(rootTree)
	for _, id := range order {
		if placed[id] {
			continue
		}
		placed[id] = true
		rootTree.Children = append(rootTree.Children, nodes[id])
		attach(nodes[id])
	}

	sortChildren(rootTree)
	return rootTree
}

func newTree(n model.Node) *model.TaxonomyTree {
	t := &model.TaxonomyTree{
		ID:       n.ID(),
		Label:    n.Label(),
		Children: []*model.TaxonomyTree{},
	}
	if v, ok := n["labelId"]; ok && v != nil {
		t.LabelID = fmt.Sprint(v)
	}
	if v, ok := n["systemType"]; ok && v != nil {
		t.SystemType = fmt.Sprint(v)
	}
	if v, ok := n["locked"].(bool); ok {
		t.Locked = v
	}
	return t
}

func sortChildren(root *model.TaxonomyTree) {
	stack := []*model.TaxonomyTree{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sort.SliceStable(cur.Children, func(i, j int) bool {
			return cur.Children[i].Label < cur.Children[j].Label
		})
		stack = append(stack, cur.Children...)
	}
}
