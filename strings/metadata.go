package strings

import (
	"encoding/json"
	"fmt"

	"github.com/uwconv/toolchain/huffman"
)

// NodeMeta is the JSON-friendly form of a single Huffman tree node.
type NodeMeta struct {
	Symbol byte  `json:"symbol"`
	Parent uint8 `json:"parent"`
	Left   uint8 `json:"left"`
	Right  uint8 `json:"right"`
}

// BlockMeta describes one block's string count, for archives that keep the
// text form separate from the binary layout but still need to record shape.
type BlockMeta struct {
	ID      uint16 `json:"id"`
	Strings int    `json:"strings"`
}

// Metadata is the sidecar JSON document that accompanies a text-form export:
// the Huffman tree (so re-encoding reproduces the original bit codes) and the
// block directory shape (so empty trailing strings aren't lost).
type Metadata struct {
	Nodes  []NodeMeta  `json:"nodes"`
	Blocks []BlockMeta `json:"blocks"`
}

// ExportMetadata captures p's tree shape and block layout.
func ExportMetadata(p *Pak) *Metadata {
	m := &Metadata{Nodes: make([]NodeMeta, len(p.Tree))}
	for i, n := range p.Tree {
		m.Nodes[i] = NodeMeta{Symbol: n.Symbol, Parent: n.Parent, Left: n.Left, Right: n.Right}
	}
	for _, block := range p.Store.Blocks() {
		m.Blocks = append(m.Blocks, BlockMeta{ID: block, Strings: len(p.Store.Strings(block))})
	}
	return m
}

// MarshalJSON-friendly encode/decode wrappers.

// EncodeMetadata renders m as indented JSON.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// DecodeMetadata parses a Metadata document.
func DecodeMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("strings: bad metadata json: %w", err)
	}
	return &m, nil
}

// Tree rebuilds a huffman.Tree from the node metadata.
func (m *Metadata) Tree() huffman.Tree {
	t := make(huffman.Tree, len(m.Nodes))
	for i, n := range m.Nodes {
		t[i] = huffman.Node{Symbol: n.Symbol, Parent: n.Parent, Left: n.Left, Right: n.Right}
	}
	return t
}

// Pad applies the recorded block shape to store, ensuring blocks that ended
// in empty strings (which the text form may compress away) keep their
// original length when reassembled.
func (m *Metadata) Pad(store *Store) error {
	for _, b := range m.Blocks {
		strs := store.Strings(b.ID)
		for len(strs) < b.Strings {
			if err := store.Set(b.ID, len(strs), ""); err != nil {
				return err
			}
			strs = store.Strings(b.ID)
		}
	}
	return nil
}
