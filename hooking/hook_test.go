package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	name  string
	calls *[]string
}

func (h *recordingHook) Func(ctx HookCtx) {
	*h.calls = append(*h.calls, h.name+":"+ctx.Pos.Name)
}

var _ = Describe("HookableBase", func() {
	var (
		base  *HookableBase
		calls []string
		pos   = &HookPos{Name: "Pos"}
	)

	BeforeEach(func() {
		base = &HookableBase{}
		calls = nil
	})

	It("should invoke hooks in registration order", func() {
		base.AcceptHook(&recordingHook{name: "first", calls: &calls})
		base.AcceptHook(&recordingHook{name: "second", calls: &calls})

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(HaveLen(2))
		Expect(calls).To(Equal([]string{"first:Pos", "second:Pos"}))
	})

	It("should panic on duplicated hooks", func() {
		hook := &recordingHook{name: "h", calls: &calls}
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should stop invoking a removed hook", func() {
		first := &recordingHook{name: "first", calls: &calls}
		second := &recordingHook{name: "second", calls: &calls}
		base.AcceptHook(first)
		base.AcceptHook(second)

		Expect(base.RemoveHook(first)).To(BeTrue())
		Expect(base.RemoveHook(first)).To(BeFalse())
		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(base.NumHooks()).To(Equal(1))
		Expect(calls).To(Equal([]string{"second:Pos"}))
	})

	It("should let a removed hook be attached again", func() {
		hook := &recordingHook{name: "h", calls: &calls}
		base.AcceptHook(hook)
		base.RemoveHook(hook)

		Expect(func() { base.AcceptHook(hook) }).NotTo(Panic())
		Expect(base.NumHooks()).To(Equal(1))
	})

	It("should do nothing without hooks", func() {
		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(calls).To(BeEmpty())
	})
})
