package trace

// Visitor is called once per object node.
type Visitor func(obj Node)

// Walk traverses n depth-first. Every member value and array element is
// walked before the visitor sees the object that contains it, so nested
// records are always reported ahead of their parents. Primitive leaves are
// not visited.
func Walk(n Node, visit Visitor) {
	switch n.kind {
	case KindObject:
		for _, m := range n.members {
			Walk(m.Value, visit)
		}
		visit(n)
	case KindArray:
		for _, item := range n.items {
			Walk(item, visit)
		}
	}
}
