package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
	"github.com/angeloszaimis/healthwatch/internal/store"
)

func behavesLikeAStore(newStore func() store.Store) {
	var (
		s   store.Store
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = newStore()
	})

	Describe("GetByID", func() {
		It("should return entity_not_found for an unknown id", func() {
			inst, err := s.GetByID(ctx, "missing")
			Expect(inst).To(BeNil())
			Expect(apperror.IsEntityNotFoundError(err)).To(BeTrue())
		})

		It("should return a saved instance", func() {
			_, err := s.Save(ctx, instance.Restore("a-1", "http://h", map[string]string{"health": "http://h/health"}, instance.StatusUp))
			Expect(err).NotTo(HaveOccurred())

			inst, err := s.GetByID(ctx, "a-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.ID()).To(Equal("a-1"))
			Expect(inst.URI()).To(Equal("http://h"))
			Expect(inst.Endpoints()).To(Equal(map[string]string{"health": "http://h/health"}))
			Expect(inst.HealthStatus()).To(Equal(instance.StatusUp))
		})
	})

	Describe("GetAll", func() {
		It("should return an empty snapshot for an empty store", func() {
			all, err := s.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("should return every saved instance", func() {
			for _, id := range []string{"a-1", "a-2", "a-3"} {
				_, err := s.Save(ctx, instance.Restore(id, "", nil, instance.StatusUnknown))
				Expect(err).NotTo(HaveOccurred())
			}

			all, err := s.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			ids := make([]string, 0, len(all))
			for _, inst := range all {
				ids = append(ids, inst.ID())
			}
			Expect(ids).To(ConsistOf("a-1", "a-2", "a-3"))
		})
	})

	Describe("Save", func() {
		It("should upsert by id", func() {
			_, err := s.Save(ctx, instance.Restore("a-1", "http://h", nil, instance.StatusUnknown))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Save(ctx, instance.Restore("a-1", "http://h", nil, instance.StatusDown))
			Expect(err).NotTo(HaveOccurred())

			all, err := s.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].HealthStatus()).To(Equal(instance.StatusDown))
		})

		It("should not alias the caller's instance", func() {
			inst := instance.Restore("a-1", "", nil, instance.StatusUnknown)
			_, err := s.Save(ctx, inst)
			Expect(err).NotTo(HaveOccurred())

			inst.UpdateHealthStatus(instance.StatusUp)

			stored, err := s.GetByID(ctx, "a-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.HealthStatus()).To(Equal(instance.StatusUnknown))
		})

		It("should reject an instance without id", func() {
			_, err := s.Save(ctx, instance.Restore("", "", nil, ""))
			Expect(apperror.IsBadParameterError(err)).To(BeTrue())
		})

		It("should tolerate concurrent saves for different ids", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := s.Save(ctx, instance.Restore(fmt.Sprintf("c-%d", i), "", nil, instance.StatusUp))
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			all, err := s.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(20))
		})
	})
}

var _ = Describe("Memory", func() {
	behavesLikeAStore(func() store.Store {
		return store.NewMemory()
	})
})

var _ = Describe("SQLite", func() {
	behavesLikeAStore(func() store.Store {
		dsn := "file:" + filepath.Join(GinkgoT().TempDir(), "instances.db") + "?_busy_timeout=5000"
		s, err := store.OpenSQLite(dsn)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
		return s
	})

	It("should create the schema idempotently", func() {
		dsn := "file:" + filepath.Join(GinkgoT().TempDir(), "instances.db")
		first, err := store.OpenSQLite(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Close()).To(Succeed())

		second, err := store.OpenSQLite(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Close()).To(Succeed())
	})
})

var _ = Describe("Redis", func() {
	behavesLikeAStore(func() store.Store {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "redis://localhost:6379"
		}
		client, err := store.NewRedisUniversalClient(addr)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			Skip("redis not reachable at " + addr)
		}

		prefix := fmt.Sprintf("healthwatch-test-%d", GinkgoRandomSeed())
		DeferCleanup(func() {
			ctx := context.Background()
			keys, _ := client.Keys(ctx, prefix+":*").Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
			client.Close()
		})
		return store.NewRedis(client, prefix)
	})

	It("should reject an invalid address", func() {
		_, err := store.NewRedisUniversalClient("not a url")
		Expect(err).To(HaveOccurred())
	})
})
