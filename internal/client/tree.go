package client

import "smart-tasks-backend/internal/tasks/model"

// Node is a task with its nested subtasks.
type Node struct {
	model.Task
	Subtasks []Node `json:"subtasks,omitempty"`
}

// BuildTree nests a flat list by parentId, keeping the input order at every
// level. Tasks whose parent is not in the list stay at the top level.
func BuildTree(list []model.Task) []Node {
	present := make(map[string]bool, len(list))
	for _, t := range list {
		present[t.ID] = true
	}

	children := make(map[string][]model.Task)
	var roots []model.Task
	for _, t := range list {
		if t.ParentID != "" && t.ParentID != t.ID && present[t.ParentID] {
			children[t.ParentID] = append(children[t.ParentID], t)
			continue
		}
		roots = append(roots, t)
	}

	visited := make(map[string]bool, len(list))
	var build func(ts []model.Task) []Node
	build = func(ts []model.Task) []Node {
		var out []Node
		for _, t := range ts {
			if visited[t.ID] {
				continue
			}
			visited[t.ID] = true
			out = append(out, Node{Task: t, Subtasks: build(children[t.ID])})
		}
		return out
	}

	nodes := build(roots)

	// members of a parent cycle are unreachable from any root
	for _, t := range list {
		if !visited[t.ID] {
			nodes = append(nodes, build([]model.Task{t})...)
		}
	}
	return nodes
}

// MapTree applies fn to every node, depth first, and rebuilds the tree from
// the results. fn sees each node with its subtasks already mapped.
func MapTree(nodes []Node, fn func(Node) Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		n.Subtasks = MapTree(n.Subtasks, fn)
		out = append(out, fn(n))
	}
	return out
}

// FilterTree drops every node for which keep is false, together with its
// subtree, at any depth.
func FilterTree(nodes []Node, keep func(Node) bool) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !keep(n) {
			continue
		}
		n.Subtasks = FilterTree(n.Subtasks, keep)
		out = append(out, n)
	}
	return out
}

// FindNode returns the node with id at any depth.
func FindNode(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := FindNode(n.Subtasks, id); ok {
			return found, true
		}
	}
	return Node{}, false
}
