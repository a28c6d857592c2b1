package lattice

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Document is the serialised form of a lattice, used for inspection.
// It is not a stable interchange format.
type Document struct {
	Sources int       `yaml:"sources" json:"sources"`
	Nodes   []NodeDoc `yaml:"nodes" json:"nodes"`
}

// NodeDoc describes one node of a Document.
type NodeDoc struct {
	ID       int    `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Children []int  `yaml:"children,flow" json:"children"`
	Parents  []int  `yaml:"parents,flow" json:"parents"`
}

// Export converts the lattice into a Document.
func Export(l *Lattice) Document {
	doc := Document{
		Sources: l.n,
		Nodes:   make([]NodeDoc, 0, len(l.Nodes)),
	}
	for _, node := range l.Nodes {
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:       int(node.ID),
			Label:    node.Label,
			Children: toInts(node.Children),
			Parents:  toInts(node.Parents),
		})
	}
	return doc
}

// YAML renders the document as YAML.
func (d Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// JSON renders the document as indented JSON.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func toInts(ids []NodeID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
