package tree

// Entry is one node of a flattened tree, linked to its parent by id.
type Entry struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
}

// Flatten lists the nodes of t in pre-order with parent links.
func (t *Tree) Flatten() []Entry {
	if t == nil || t.Root == nil {
		return nil
	}
	var entries []Entry
	var visit func(n *Node, parent string)
	visit = func(n *Node, parent string) {
		id := n.ID.String()
		entries = append(entries, Entry{
			ID:     id,
			Parent: parent,
			Kind:   n.Kind.String(),
			Label:  n.Label(),
		})
		for _, child := range n.Children {
			visit(child, id)
		}
	}
	visit(t.Root, "")
	return entries
}
