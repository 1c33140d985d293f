package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/taskflow/core/config"
)

func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		setenv("TASKFLOW_ENV", "test")
		setenv("STORE_DRIVER", "memory")
		setenv("FLAG_STORE", "memory")
		setenv("REDIS_URL", "")
		setenv("NOTIFY_CHANNEL", "")
	})

	It("reads the environment", func() {
		setenv("PORT", "9090")
		setenv("TOUR_AUTOSTART_DELAY", "250ms")

		cfg, err := config.Load(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("9090"))
		Expect(cfg.Store).To(Equal(config.StoreDriverMemory))
		Expect(cfg.Tour.AutoStartDelay).To(Equal(250 * time.Millisecond))
	})

	It("lets flags override the environment", func() {
		setenv("PORT", "9090")

		cfg, err := config.Load([]string{"--port", "7070", "--profile", "work", "--tour-delay", "2s"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("7070"))
		Expect(cfg.Flags.Profile).To(Equal("work"))
		Expect(cfg.Tour.AutoStartDelay).To(Equal(2 * time.Second))
	})

	It("rejects an unknown store driver", func() {
		_, err := config.Load([]string{"--store", "sqlite"})
		Expect(err).To(MatchError(ContainSubstring("STORE_DRIVER")))
	})

	It("requires redis for the redis flag store", func() {
		_, err := config.Load([]string{"--flag-store", "redis"})
		Expect(err).To(MatchError(ContainSubstring("REDIS_URL")))
	})

	It("requires redis for the notification channel", func() {
		setenv("NOTIFY_CHANNEL", "toasts")

		_, err := config.Load(nil)
		Expect(err).To(MatchError(ContainSubstring("NOTIFY_CHANNEL")))
	})

	It("rejects stray arguments", func() {
		_, err := config.Load([]string{"serve"})
		Expect(err).To(MatchError(ContainSubstring("unexpected argument")))
	})
})
