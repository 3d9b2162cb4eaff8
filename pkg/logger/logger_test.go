package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("NewLoggerWithWriters", func() {
		It("writes info messages with fields", func() {
			var buf bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf)
			l.Info("hello", zap.String("key", "value"))

			Expect(buf.String()).To(ContainSubstring("hello"))
			Expect(buf.String()).To(ContainSubstring("value"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			logger.NewLoggerWithWriters(false, &buf).Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("emits debug when enabled", func() {
			var buf bytes.Buffer
			logger.NewLoggerWithWriters(true, &buf).Debug("shown")

			Expect(buf.String()).To(ContainSubstring("shown"))
		})

		It("fans out to every writer", func() {
			var a, b bytes.Buffer
			logger.NewLoggerWithWriters(false, &a, &b).Info("twice")

			Expect(a.String()).To(ContainSubstring("twice"))
			Expect(b.String()).To(ContainSubstring("twice"))
		})
	})

	Describe("NewFileLogger", func() {
		It("appends JSON lines to the file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "chat.log")

			l, closeFn, err := logger.NewFileLogger(true, path)
			Expect(err).NotTo(HaveOccurred())
			l.Debug("to file", zap.Int("n", 1))
			Expect(closeFn()).To(Succeed())

			raw, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())

			var line map[string]any
			Expect(json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &line)).To(Succeed())
			Expect(line["msg"]).To(Equal("to file"))
			Expect(line["n"]).To(BeNumerically("==", 1))
		})

		It("fails for an unwritable path", func() {
			_, _, err := logger.NewFileLogger(false, filepath.Join(GinkgoT().TempDir(), "missing", "chat.log"))
			Expect(err).To(HaveOccurred())
		})
	})
})
