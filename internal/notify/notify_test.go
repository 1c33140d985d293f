package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/taskflow/internal/notify"
)

var _ = Describe("MemorySink", func() {
	ctx := context.Background()

	It("drains oldest first and empties the buffer", func() {
		s := notify.NewMemorySink(10)
		s.Notify(ctx, notify.Success("one"))
		s.Notify(ctx, notify.Error("Oops", "two"))

		got := s.Drain()
		Expect(got).To(HaveLen(2))
		Expect(got[0].Message).To(Equal("one"))
		Expect(got[0].Severity).To(Equal(notify.SeveritySuccess))
		Expect(got[1].Title).To(Equal("Oops"))
		Expect(got[1].Severity).To(Equal(notify.SeverityError))

		Expect(s.Drain()).To(BeEmpty())
	})

	It("drops the oldest toasts beyond its limit", func() {
		s := notify.NewMemorySink(2)
		for _, m := range []string{"a", "b", "c"} {
			s.Notify(ctx, notify.Success(m))
		}
		got := s.Drain()
		Expect(got).To(HaveLen(2))
		Expect(got[0].Message).To(Equal("b"))
		Expect(got[1].Message).To(Equal("c"))
	})
})

var _ = Describe("Error", func() {
	It("falls back to a generic title", func() {
		Expect(notify.Error("", "boom").Title).To(Equal("Error"))
	})
})

var _ = Describe("Fanout", func() {
	It("delivers to every sink and skips nil ones", func() {
		var buf bytes.Buffer
		mem := notify.NewMemorySink(5)
		log := slog.New(slog.NewTextHandler(&buf, nil))

		notify.Fanout{mem, nil, notify.NewLogSink(log)}.Notify(context.Background(), notify.Error("Save failed", "disk full"))

		Expect(mem.Drain()).To(HaveLen(1))
		Expect(buf.String()).To(ContainSubstring("level=WARN"))
		Expect(buf.String()).To(ContainSubstring("disk full"))
	})
})

var _ = Describe("RedisSink", func() {
	It("publishes each toast as JSON on its channel", func() {
		server, err := miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(server.Close)

		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		DeferCleanup(client.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		DeferCleanup(cancel)

		sub := client.Subscribe(ctx, "notifications:default")
		DeferCleanup(sub.Close)
		_, err = sub.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())

		notify.NewRedisSink(client, "notifications:default", nil).Notify(ctx, notify.Error("Could not move task", "position taken"))

		msg, err := sub.ReceiveMessage(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Channel).To(Equal("notifications:default"))

		var got notify.Notice
		Expect(json.Unmarshal([]byte(msg.Payload), &got)).To(Succeed())
		Expect(got.Title).To(Equal("Could not move task"))
		Expect(got.Message).To(Equal("position taken"))
		Expect(got.Severity).To(Equal(notify.SeverityError))
	})

	It("logs instead of failing when redis is down", func() {
		var buf bytes.Buffer
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		DeferCleanup(client.Close)

		sink := notify.NewRedisSink(client, "notifications:default", slog.New(slog.NewTextHandler(&buf, nil)))
		sink.Notify(context.Background(), notify.Success("saved"))

		Expect(buf.String()).To(ContainSubstring("publish notification failed"))
	})
})
