package plexbotcmder_test

import (
	"bytes"
	"context"
	"go/format"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	plexbotcmder "github.com/papercomputeco/plexbot/cmd/plexbot"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/merkle"
	testutils "github.com/papercomputeco/plexbot/pkg/utils/test"
)

var _ = Describe("NewPlexbotCmd", func() {
	It("registers the subcommands", func() {
		cmd := plexbotcmder.NewPlexbotCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "serve", "config", "version"))
	})

	It("has persistent --debug and --config-dir flags", func() {
		cmd := plexbotcmder.NewPlexbotCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})

var _ = Describe("command sources", func() {
	It("are gofmt formatted", func() {
		files, err := filepath.Glob("*.go")
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(ContainElement("plexbot.go"))

		for _, name := range files {
			src, err := os.ReadFile(name)
			Expect(err).NotTo(HaveOccurred())

			formatted, err := format.Source(src)
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(string(src)).To(Equal(string(formatted)), name)
		}
	})
})

var _ = Describe("plexbot chat --plain", func() {
	var (
		upstream  *testutils.CompletionServer
		configDir string
		out       *bytes.Buffer
	)

	run := func(input string, args ...string) error {
		cmd := plexbotcmder.NewPlexbotCmd()
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append([]string{"chat", "--plain", "--config-dir", configDir, "--endpoint", upstream.URL}, args...))
		return cmd.Execute()
	}

	BeforeEach(func() {
		upstream = testutils.NewCompletionServer("Paris")
		DeferCleanup(upstream.Close)

		configDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		for _, key := range []string{"PLEXBOT_PERPLEXITY_API_KEY", "PERPLEXITY_API_KEY", "VITE_REACT_PERPLEXITY_API_KEY"} {
			if prev, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, prev)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
		GinkgoT().Setenv("PERPLEXITY_API_KEY", "pplx-test")
	})

	It("sends each line to the configured endpoint", func() {
		Expect(run("Capital of France?\n/exit\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Paris"))

		reqs := upstream.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("sonar"))
		Expect(reqs[0].Messages).To(Equal([]llm.Message{{Role: llm.RoleUser, Content: "Capital of France?"}}))
		Expect(reqs[0].ResponseFormat).NotTo(BeNil())
		Expect(reqs[0].ResponseFormat.Type).To(Equal("text"))
	})

	It("answers upstream failures with the fixed error turn", func() {
		upstream.SetStatus(http.StatusInternalServerError)
		Expect(run("hello\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(llm.ErrorText))
	})

	It("records the conversation when the tap is configured", func() {
		dbPath := filepath.Join(configDir, "tap.db")
		Expect(run("hello\nagain\n", "--tap-sqlite", dbPath)).To(Succeed())

		storer, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer storer.Close()

		leaves, err := storer.Leaves(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(leaves).To(HaveLen(1))

		ancestry, err := storer.Ancestry(context.Background(), leaves[0].Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(ancestry).To(HaveLen(4))
	})
})

var _ = Describe("plexbot version", func() {
	It("prints the version", func() {
		out := &bytes.Buffer{}
		cmd := plexbotcmder.NewPlexbotCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version:"))
	})
})
