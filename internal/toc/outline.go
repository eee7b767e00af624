package toc

// Node is a section of the master TOC with its subsections.
type Node struct {
	Entry    Entry
	Children []*Node
}

// Outline nests entries by numeral prefix. entries must be in All() order. An entry
// whose parent section was never registered is attached to the nearest registered
// ancestor, or to the top level.
func Outline(entries []Entry) []*Node {
	root := &Node{}
	stack := []*Node{root}

	for _, e := range entries {
		n := &Node{Entry: e}
		for len(stack) > 1 && !e.Section.HasPrefix(stack[len(stack)-1].Entry.Section) {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack, n)
	}
	return root.Children
}
