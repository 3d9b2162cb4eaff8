// Package merkle stores conversation transcripts as content-addressed chains:
// each turn is a node whose hash covers its content and its parent hash, so
// identical conversation prefixes share nodes.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Node is a single content-addressed node in a transcript chain.
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash. Nil for root nodes.
	ParentHash *string `json:"parent_hash"`

	Bucket Bucket `json:"bucket"`

	// Model is stored alongside the node but does not affect the hash.
	Model string `json:"model,omitempty"`
}

// NodeMeta carries metadata stored with a node outside of its hash.
type NodeMeta struct {
	Model string
}

// NewNode creates a node with the computed hash for bucket under parent.
func NewNode(bucket Bucket, parent *Node, metas ...NodeMeta) *Node {
	n := &Node{
		Bucket: bucket,
	}

	if parent != nil {
		parentHash := parent.Hash
		n.ParentHash = &parentHash
	}

	if len(metas) > 0 {
		n.Model = metas[0].Model
	}

	n.Hash = n.computeHash()
	return n
}

// computeHash hashes the parent hash and the bucket. encoding/json emits
// struct fields in declaration order, which keeps the input stable.
func (n *Node) computeHash() string {
	parent := ""
	if n.ParentHash != nil {
		parent = *n.ParentHash
	}

	data, err := json.Marshal(struct {
		Parent  string `json:"parent"`
		Content Bucket `json:"content"`
	}{
		Parent:  parent,
		Content: n.Bucket,
	})
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Chain builds the node chain for buckets, root first.
func Chain(buckets []Bucket, meta NodeMeta) []*Node {
	nodes := make([]*Node, 0, len(buckets))

	var parent *Node
	for _, b := range buckets {
		n := NewNode(b, parent, meta)
		nodes = append(nodes, n)
		parent = n
	}

	return nodes
}
