package welcome_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/plexbot/pkg/welcome"
)

var _ = Describe("Template", func() {
	It("ships the stock content", func() {
		tmpl := welcome.Default()

		Expect(tmpl.WelcomeMessage).To(Equal("Welcome to the Perplexity Chatbot! How can I assist you today?"))
		Expect(tmpl.DefaultResponses).To(HaveLen(3))
		Expect(tmpl.ErrorMessage).To(Equal("Sorry, I couldn't process your request. Please try again."))
		Expect(tmpl.MaxMessageLength).To(Equal(500))
	})

	Describe("Clamp", func() {
		It("leaves short input alone", func() {
			Expect(welcome.Default().Clamp("hello")).To(Equal("hello"))
		})

		It("cuts input at the limit by characters", func() {
			tmpl := welcome.Template{MaxMessageLength: 3}
			Expect(tmpl.Clamp("héllo")).To(Equal("hél"))
		})

		It("keeps input exactly at the limit", func() {
			long := strings.Repeat("a", 500)
			Expect(welcome.Default().Clamp(long)).To(Equal(long))
		})

		It("ignores a non-positive limit", func() {
			Expect(welcome.Template{}.Clamp("anything")).To(Equal("anything"))
		})
	})
})
