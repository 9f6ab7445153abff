package chat_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

var _ = Describe("Turn", func() {
	Describe("NewTurn", func() {
		It("starts pending with an empty response", func() {
			turn := chat.NewTurn("what is a neural network?")

			Expect(turn.Status).To(Equal(chat.StatusPending))
			Expect(turn.Query).To(Equal("what is a neural network?"))
			Expect(turn.Response).To(BeEmpty())
			Expect(turn.Error).To(BeEmpty())
		})

		It("assigns a message-prefixed id", func() {
			turn := chat.NewTurn("hello")

			Expect(turn.ID).To(HavePrefix("msg_"))
		})

		It("assigns unique ids", func() {
			a := chat.NewTurn("hello")
			b := chat.NewTurn("hello")

			Expect(a.ID).NotTo(Equal(b.ID))
		})

		It("records a creation timestamp", func() {
			turn := chat.NewTurn("hello")

			Expect(turn.Timestamp).To(BeNumerically(">", 0))
		})
	})

	Describe("Resolve", func() {
		It("transitions a pending turn to complete", func() {
			turn := chat.NewTurn("hello")

			Expect(turn.Resolve("hi there")).To(Succeed())
			Expect(turn.Status).To(Equal(chat.StatusComplete))
			Expect(turn.Response).To(Equal("hi there"))
		})

		It("rejects a second resolution", func() {
			turn := chat.NewTurn("hello")
			Expect(turn.Resolve("hi there")).To(Succeed())

			err := turn.Resolve("something else")

			Expect(err).To(MatchError(chat.ErrNotPending))
			Expect(turn.Response).To(Equal("hi there"))
		})

		It("rejects resolving a failed turn", func() {
			turn := chat.NewTurn("hello")
			Expect(turn.Fail("boom")).To(Succeed())

			Expect(turn.Resolve("late reply")).To(MatchError(chat.ErrNotPending))
			Expect(turn.Status).To(Equal(chat.StatusError))
		})
	})

	Describe("Fail", func() {
		It("transitions a pending turn to error and keeps the response empty", func() {
			turn := chat.NewTurn("hello")

			Expect(turn.Fail("service unavailable")).To(Succeed())
			Expect(turn.Status).To(Equal(chat.StatusError))
			Expect(turn.Error).To(Equal("service unavailable"))
			Expect(turn.Response).To(BeEmpty())
		})

		It("rejects failing a completed turn", func() {
			turn := chat.NewTurn("hello")
			Expect(turn.Resolve("hi")).To(Succeed())

			Expect(turn.Fail("too late")).To(MatchError(chat.ErrNotPending))
			Expect(turn.Error).To(BeEmpty())
		})
	})
})

var _ = Describe("Session", func() {
	Describe("NewSessionID", func() {
		It("assigns a session-prefixed id", func() {
			Expect(chat.NewSessionID()).To(HavePrefix("session_"))
		})

		It("assigns unique ids", func() {
			Expect(chat.NewSessionID()).NotTo(Equal(chat.NewSessionID()))
		})
	})

	Describe("TitleFor", func() {
		It("uses the query verbatim when short enough", func() {
			Expect(chat.TitleFor("short question")).To(Equal("short question"))
		})

		It("truncates long queries to fifty runes", func() {
			long := strings.Repeat("x", 80)

			Expect(chat.TitleFor(long)).To(Equal(strings.Repeat("x", 50)))
		})

		It("counts runes, not bytes", func() {
			long := strings.Repeat("ü", 60)

			Expect(chat.TitleFor(long)).To(Equal(strings.Repeat("ü", 50)))
		})

		It("falls back to the default title for an empty query", func() {
			Expect(chat.TitleFor("")).To(Equal(chat.DefaultTitle))
		})
	})
})
