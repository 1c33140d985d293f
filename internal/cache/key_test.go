package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/taskflow/internal/cache"
)

var _ = Describe("Key", func() {
	It("renders entity and scope as a path", func() {
		Expect(cache.NewKey("tasks", int64(42), 7).String()).To(Equal("tasks/42/7"))
		Expect(cache.NewKey("workspaces").String()).To(Equal("workspaces"))
	})

	It("treats keys with the same canonical form as equal", func() {
		Expect(cache.NewKey("tasks", 42).String()).To(Equal(cache.NewKey("tasks", "42").String()))
	})
})

var _ = Describe("Pattern", func() {
	DescribeTable("Matches",
		func(p cache.Pattern, k cache.Key, want bool) {
			Expect(p.Matches(k)).To(Equal(want))
		},
		Entry("entity only matches every key of the entity", cache.Match("tasks"), cache.NewKey("tasks", 1), true),
		Entry("entity only matches an unscoped key", cache.Match("workspaces"), cache.NewKey("workspaces"), true),
		Entry("scope prefix matches the list key", cache.Match("tasks", 1), cache.NewKey("tasks", 1), true),
		Entry("scope prefix matches a single-task key", cache.Match("tasks", 1), cache.NewKey("tasks", 1, 9), true),
		Entry("different scope does not match", cache.Match("tasks", 1), cache.NewKey("tasks", 2), false),
		Entry("different entity does not match", cache.Match("tasks", 1), cache.NewKey("workspace", 1), false),
		Entry("longer pattern does not match a shorter key", cache.Match("tasks", 1, 9), cache.NewKey("tasks", 1), false),
		Entry("exact matches itself", cache.Exact(cache.NewKey("workspace", 3)), cache.NewKey("workspace", 3), true),
	)

	It("renders with a wildcard suffix", func() {
		Expect(cache.Match("tasks", 5).String()).To(Equal("tasks/5/*"))
	})
})
