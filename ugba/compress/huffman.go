package compress

import (
	"container/heap"
	"encoding/binary"
	"fmt"

	"github.com/valerio/go-ugba/ugba/bios"
)

type huffNode struct {
	freq   int
	order  int
	symbol byte
	leaves int
	child  [2]*huffNode
}

func (n *huffNode) leaf() bool { return n.child[0] == nil }

type nodeHeap []*huffNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*huffNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

func symbols(data []byte, bits int) []byte {
	if bits == 8 {
		return data
	}
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, b&0xF, b>>4)
	}
	return out
}

func buildTree(syms []byte) *huffNode {
	var freq [256]int
	for _, s := range syms {
		freq[s]++
	}

	h := &nodeHeap{}
	order := 0
	for s, f := range freq {
		if f > 0 {
			*h = append(*h, &huffNode{freq: f, order: order, symbol: byte(s), leaves: 1})
			order++
		}
	}
	// the decoder needs a root with two children
	for h.Len() < 2 {
		*h = append(*h, &huffNode{order: order, leaves: 1})
		order++
	}
	heap.Init(h)

	for h.Len() > 1 {
		a := heap.Pop(h).(*huffNode)
		b := heap.Pop(h).(*huffNode)
		heap.Push(h, &huffNode{
			freq:   a.freq + b.freq,
			order:  order,
			leaves: a.leaves + b.leaves,
			child:  [2]*huffNode{a, b},
		})
		order++
	}
	return heap.Pop(h).(*huffNode)
}

// layoutTree serializes the tree in the node table format of the BIOS. Table
// index 0 is the size byte and index 1 the root. Child pairs are allocated at
// even indices; the pending node with the smallest subtree is expanded first
// unless the oldest pending node is about to run out of offset range.
func layoutTree(root *huffNode) ([]byte, error) {
	type pending struct {
		node *huffNode
		pos  int
	}
	const maxOffset = 0x3F

	table := []byte{0, 0}
	queue := []pending{{root, 1}}
	next := 2
	for len(queue) > 0 {
		pick := 0
		oldest := queue[0]
		deadline := oldest.pos&^1 + 2 + maxOffset*2
		if (deadline-next)/2 >= len(queue) {
			for i, p := range queue {
				if p.node.leaves < queue[pick].node.leaves {
					pick = i
				}
			}
		}
		p := queue[pick]
		queue = append(queue[:pick], queue[pick+1:]...)

		offset := (next - p.pos&^1 - 2) / 2
		if offset > maxOffset {
			return nil, fmt.Errorf("%w: offset %d at node %d", ErrTreeTooWide, offset, p.pos)
		}
		flags := byte(0)
		table = append(table, 0, 0)
		for i, c := range p.node.child {
			at := next + i
			if c.leaf() {
				flags |= 0x80 >> i
				table[at] = c.symbol
				continue
			}
			queue = append(queue, pending{c, at})
		}
		table[p.pos] = byte(offset) | flags
		next += 2
	}

	// keep the bitstream word aligned
	for len(table)%4 != 0 {
		table = append(table, 0)
	}
	table[0] = byte(len(table)/2 - 1)
	return table, nil
}

type code struct {
	bits   uint32
	length int
}

func assignCodes(n *huffNode, prefix uint32, length int, codes *[256]code) {
	if n.leaf() {
		codes[n.symbol] = code{prefix, length}
		return
	}
	for i, c := range n.child {
		assignCodes(c, prefix<<1|uint32(i), length+1, codes)
	}
}

// Huffman compresses data with 4 or 8-bit symbols. 4-bit symbols are taken
// from the low nibble of each byte first.
func Huffman(data []byte, symbolBits int) ([]byte, error) {
	if symbolBits != 4 && symbolBits != 8 {
		return nil, ErrSymbolSize
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	syms := symbols(data, symbolBits)
	root := buildTree(syms)
	table, err := layoutTree(root)
	if err != nil {
		return nil, err
	}

	var codes [256]code
	for i, c := range root.child {
		assignCodes(c, uint32(i), 1, &codes)
	}

	out := header(bios.TypeHuffman, uint8(symbolBits), len(data))
	out = append(out, table...)

	var word uint32
	used := 0
	for _, s := range syms {
		c := codes[s]
		for i := c.length - 1; i >= 0; i-- {
			word |= (c.bits >> i & 1) << (31 - used)
			used++
			if used == 32 {
				out = binary.LittleEndian.AppendUint32(out, word)
				word, used = 0, 0
			}
		}
	}
	if used > 0 {
		out = binary.LittleEndian.AppendUint32(out, word)
	}
	return out, nil
}
