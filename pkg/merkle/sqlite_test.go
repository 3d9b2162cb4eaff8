package merkle_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/merkle"
	testutils "github.com/papercomputeco/plexbot/pkg/utils/test"
)

var _ = Describe("SQLiteStorer", func() {
	var (
		ctx    context.Context
		storer *merkle.SQLiteStorer
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		storer, err = merkle.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(storer.Close()).To(Succeed())
	})

	It("stores and retrieves a node", func() {
		node := merkle.NewNode(merkle.Bucket{
			Type:          merkle.TypeMessage,
			Role:          llm.RoleAssistant,
			Content:       "Paris",
			Citations:     []string{"http://a"},
			SearchResults: []llm.SearchResult{{URL: "http://b", Title: "B"}},
			Provider:      "perplexity",
		}, nil, merkle.NodeMeta{Model: "sonar"})

		isNew, err := storer.Put(ctx, node)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeTrue())

		got, err := storer.Get(ctx, node.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(node))
	})

	It("deduplicates identical nodes", func() {
		node := merkle.NewNode(testutils.NewTestBucket(llm.RoleUser, "q"), nil)

		isNew, err := storer.Put(ctx, node)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeTrue())

		isNew, err = storer.Put(ctx, node)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeFalse())
	})

	It("rejects nil nodes", func() {
		_, err := storer.Put(ctx, nil)
		Expect(err).To(HaveOccurred())
	})

	It("returns ErrNotFound for unknown hashes", func() {
		_, err := storer.Get(ctx, "missing")

		var notFound merkle.ErrNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Hash).To(Equal("missing"))
	})

	It("walks the ancestry back to the root", func() {
		nodes := merkle.Chain([]merkle.Bucket{
			testutils.NewTestBucket(llm.RoleUser, "q1"),
			testutils.NewTestBucket(llm.RoleAssistant, "a1"),
			testutils.NewTestBucket(llm.RoleUser, "q2"),
		}, merkle.NodeMeta{})
		for _, n := range nodes {
			_, err := storer.Put(ctx, n)
			Expect(err).NotTo(HaveOccurred())
		}

		path, err := storer.Ancestry(ctx, nodes[2].Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveLen(3))
		Expect(path[0].Hash).To(Equal(nodes[2].Hash))
		Expect(path[1].Bucket.Content).To(Equal("a1"))
		Expect(path[2].Hash).To(Equal(nodes[0].Hash))
		Expect(path[2].ParentHash).To(BeNil())
	})

	It("returns ErrNotFound for the ancestry of unknown hashes", func() {
		_, err := storer.Ancestry(ctx, "missing")

		var notFound merkle.ErrNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("lists leaves across branches", func() {
		root := merkle.NewNode(testutils.NewTestBucket(llm.RoleUser, "q"), nil)
		a := merkle.NewNode(testutils.NewTestBucket(llm.RoleAssistant, "a"), root)
		b := merkle.NewNode(testutils.NewTestBucket(llm.RoleAssistant, "b"), root)
		for _, n := range []*merkle.Node{root, a, b} {
			_, err := storer.Put(ctx, n)
			Expect(err).NotTo(HaveOccurred())
		}

		leaves, err := storer.Leaves(ctx)
		Expect(err).NotTo(HaveOccurred())

		hashes := []string{}
		for _, l := range leaves {
			hashes = append(hashes, l.Hash)
		}
		Expect(hashes).To(ConsistOf(a.Hash, b.Hash))
	})
})
