package quantize

import (
	"image"
	"image/color"
)

// Octree partitions RGB space recursively and merges the deepest leaves until
// at most maxColors remain.
type Octree struct {
	Stride int
	Depth  int
}

type octNode struct {
	r, g, b, n float64
	leaf       bool
	children   [8]*octNode
}

type octree struct {
	depth     int
	root      *octNode
	leaves    int
	reducible [][]*octNode
}

// Build implements PaletteBuilder.
func (o *Octree) Build(img *image.RGBA, maxColors int) color.Palette {
	depth := o.Depth
	if depth < 1 || depth > 8 {
		depth = 6
	}
	t := &octree{depth: depth, root: &octNode{}, reducible: make([][]*octNode, depth)}
	t.reducible[0] = []*octNode{t.root}
	for _, e := range histogram(img, o.Stride) {
		t.insert(e)
	}
	for t.leaves > maxColors && t.reduce() {
	}

	var pal color.Palette
	t.collect(t.root, &pal)
	if len(pal) == 0 {
		pal = color.Palette{color.RGBA{A: 255}}
	}
	return pal
}

func (t *octree) insert(e entry) {
	r, g, b := clamp8(e.r), clamp8(e.g), clamp8(e.b)
	node := t.root
	for level := 0; level < t.depth; level++ {
		shift := 7 - level
		idx := int((r>>shift)&1)<<2 | int((g>>shift)&1)<<1 | int((b>>shift)&1)
		child := node.children[idx]
		if child == nil {
			child = &octNode{}
			node.children[idx] = child
			if level == t.depth-1 {
				child.leaf = true
				t.leaves++
			} else {
				t.reducible[level+1] = append(t.reducible[level+1], child)
			}
		}
		node = child
		if node.leaf {
			break
		}
	}
	node.r += e.r * e.n
	node.g += e.g * e.n
	node.b += e.b * e.n
	node.n += e.n
}

// reduce folds the children of one node at the deepest reducible level into
// it, choosing the node with the smallest population.
func (t *octree) reduce() bool {
	level := len(t.reducible) - 1
	for level >= 0 && len(t.reducible[level]) == 0 {
		level--
	}
	if level < 0 {
		return false
	}

	nodes := t.reducible[level]
	best := 0
	for i, n := range nodes {
		if subtreeCount(n) < subtreeCount(nodes[best]) {
			best = i
		}
	}
	node := nodes[best]
	t.reducible[level] = append(nodes[:best], nodes[best+1:]...)

	merged := 0
	for i, c := range node.children {
		if c == nil {
			continue
		}
		node.r += c.r
		node.g += c.g
		node.b += c.b
		node.n += c.n
		if c.leaf {
			merged++
		}
		node.children[i] = nil
	}
	node.leaf = true
	t.leaves -= merged - 1
	return true
}

func subtreeCount(n *octNode) float64 {
	total := n.n
	for _, c := range n.children {
		if c != nil {
			total += subtreeCount(c)
		}
	}
	return total
}

func (t *octree) collect(n *octNode, pal *color.Palette) {
	if n.leaf {
		if n.n > 0 {
			*pal = append(*pal, toColor(n.r/n.n, n.g/n.n, n.b/n.n))
		}
		return
	}
	for _, c := range n.children {
		if c != nil {
			t.collect(c, pal)
		}
	}
}
