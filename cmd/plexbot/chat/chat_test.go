package chatcmder

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("registers the shared model flag", func() {
		flag := NewChatCmd().Flags().Lookup("model")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("m"))
		Expect(flag.DefValue).To(Equal("sonar"))
	})

	It("has a --plain flag", func() {
		flag := NewChatCmd().Flags().Lookup("plain")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("false"))
	})

	It("does not treat buffers as terminals", func() {
		Expect(isTerminal(nil)).To(BeFalse())
	})
})
