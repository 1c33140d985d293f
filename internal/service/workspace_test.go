package service_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/cache"
	"basegraph.app/taskflow/internal/flagstore"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/mutation"
	"basegraph.app/taskflow/internal/notify"
	"basegraph.app/taskflow/internal/service"
	"basegraph.app/taskflow/internal/store"
	"basegraph.app/taskflow/internal/tour"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newMemoryStore() *store.Memory {
	mem := store.NewMemory()
	mem.AddUser(model.User{ID: alice, Name: "Alice", Email: "alice@example.com"})
	mem.AddUser(model.User{ID: bob, Name: "Bob", Email: "bob@example.com"})
	return mem
}

func newServices(provider store.Provider) *service.Services {
	return service.NewServices(service.Deps{
		Stores:  provider,
		Session: auth.NewSession(),
		Tour:    tour.New(flagstore.NewMemory()),
		Notices: notify.NewMemorySink(50),
	})
}

var _ = Describe("WorkspaceSync", func() {
	var (
		ctx        context.Context
		mem        *store.Memory
		members    *mockMemberStore
		svc        *service.Services
		workspaces *service.WorkspaceSync
		listKey    cache.Key
		mustList   func() []model.Workspace
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = newMemoryStore()
		members = &mockMemberStore{MemberStore: mem.Members()}
		svc = newServices(&stubProvider{Provider: mem, members: members})
		workspaces = svc.Workspaces()
		Expect(svc.SignIn(ctx, alice)).To(Succeed())
		listKey = cache.NewKey("workspaces", alice)

		mustList = func() []model.Workspace {
			v := workspaces.List(ctx, service.Wait())
			Expect(v.Err).NotTo(HaveOccurred())
			Expect(v.Loading).To(BeFalse())
			return v.Value
		}
	})

	Describe("List", func() {
		It("fails without an actor and fetches nothing", func() {
			svc.SignOut(ctx)
			v := workspaces.List(ctx)
			Expect(v.Err).To(MatchError(auth.ErrUnauthenticated))
			_, ok := svc.Cache().Peek(listKey)
			Expect(ok).To(BeFalse())
		})

		It("shows loading first, then the actor's workspaces", func() {
			_, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())
			svc.Cache().Clear()

			v := workspaces.List(ctx)
			Expect(v.Loading).To(BeTrue())
			Eventually(func() []model.Workspace { return workspaces.List(ctx).Value }).Should(HaveLen(1))
		})
	})

	Describe("Get", func() {
		It("carries the reader's membership role", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			v := workspaces.Get(ctx, result.Workspace.ID, service.Wait())
			Expect(v.Err).NotTo(HaveOccurred())
			Expect(v.Value.Role).To(Equal(model.RoleOwner))

			_, ok := svc.Cache().Peek(cache.NewKey("workspace", result.Workspace.ID, alice))
			Expect(ok).To(BeTrue())
		})

		It("reads as missing for someone who is not a member", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.SignIn(ctx, bob)).To(Succeed())
			v := workspaces.Get(ctx, result.Workspace.ID, service.Wait())
			Expect(v.Err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("Create", func() {
		It("lets concurrent creates finish independently", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			var calls atomic.Int32
			members.addFn = func(ctx context.Context, m *model.WorkspaceMember) error {
				if calls.Add(1) == 1 {
					close(entered)
					<-release
				}
				return mem.Members().Add(ctx, m)
			}

			var first *service.CreateResult
			var firstErr error
			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				first, firstErr = workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Alpha"})
			}()
			Eventually(entered).Should(BeClosed())

			second, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Beta"})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Status).To(Equal(service.CreateBothSucceeded))

			close(release)
			Eventually(done).Should(BeClosed())
			Expect(firstErr).NotTo(HaveOccurred())
			Expect(first.Status).To(Equal(service.CreateBothSucceeded))
			Expect(mustList()).To(HaveLen(2))
		})

		It("inserts the workspace and the creator as owner", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "  Product Launch ", Description: strPtr("Q3")})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(service.CreateBothSucceeded))
			Expect(result.Workspace.Name).To(Equal("Product Launch"))
			Expect(result.Workspace.Slug).To(Equal("product-launch"))
			Expect(result.Workspace.OwnerID).To(Equal(alice))
			Expect(result.Workspace.Role).To(Equal(model.RoleOwner))

			v := workspaces.Members(ctx, result.Workspace.ID, service.Wait())
			Expect(v.Err).NotTo(HaveOccurred())
			Expect(v.Value).To(HaveLen(1))
			Expect(v.Value[0].UserID).To(Equal(alice))
			Expect(v.Value[0].Role).To(Equal(model.RoleOwner))

			notices := svc.Notices().Drain()
			Expect(notices).To(HaveLen(1))
			Expect(notices[0].Severity).To(Equal(notify.SeveritySuccess))
		})

		It("makes the next list read reflect the new workspace", func() {
			Expect(mustList()).To(BeEmpty())

			_, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			snap, _ := svc.Cache().Peek(listKey)
			Expect(snap.Freshness).To(Equal(cache.Stale))
			Expect(mustList()).To(HaveLen(1))
		})

		It("suffixes a taken slug", func() {
			first, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())
			second, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Workspace.Slug).To(Equal("launch"))
			Expect(second.Workspace.Slug).To(Equal("launch-2"))
		})

		It("reports failed-before-insert and leaves the cache alone", func() {
			Expect(mustList()).To(BeEmpty())

			site := workspaces.NewCreateCallSite()
			result, err := site.Invoke(ctx, service.CreateWorkspaceInput{Name: "   "})
			Expect(err).To(MatchError(service.ErrInvalidInput))
			Expect(result.Status).To(Equal(service.CreateFailedBeforeInsert))
			Expect(result.Workspace).To(BeNil())
			Expect(members.addCalls.Load()).To(BeZero())

			snap, _ := svc.Cache().Peek(listKey)
			Expect(snap.Freshness).To(Equal(cache.Ready))
			Expect(site.State().Status).To(Equal(mutation.StatusError))

			notices := svc.Notices().Drain()
			Expect(notices).To(HaveLen(1))
			Expect(notices[0].Severity).To(Equal(notify.SeverityError))
		})

		It("reports failed-before-insert without an actor", func() {
			svc.SignOut(ctx)
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).To(MatchError(auth.ErrUnauthenticated))
			Expect(result.Status).To(Equal(service.CreateFailedBeforeInsert))
		})

		Context("when the owner membership insert fails", func() {
			BeforeEach(func() {
				members.addFn = func(context.Context, *model.WorkspaceMember) error {
					return errors.New("connection reset")
				}
			})

			It("reports workspace-only and keeps the created workspace", func() {
				site := workspaces.NewCreateCallSite()
				result, err := site.Invoke(ctx, service.CreateWorkspaceInput{Name: "Launch"})
				Expect(err).To(MatchError(service.ErrPartialCreate))
				Expect(err).To(MatchError(ContainSubstring("connection reset")))
				Expect(result.Status).To(Equal(service.CreateWorkspaceOnly))
				Expect(result.Workspace).NotTo(BeNil())

				stored, err := mem.Workspaces().GetByID(ctx, result.Workspace.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Name).To(Equal("Launch"))

				Expect(site.State().Status).To(Equal(mutation.StatusError))
				notices := svc.Notices().Drain()
				Expect(notices).To(HaveLen(1))
				Expect(notices[0].Severity).To(Equal(notify.SeverityError))
				Expect(mustList()).To(BeEmpty())
			})

			It("can be compensated by retrying the membership", func() {
				result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
				Expect(err).To(MatchError(service.ErrPartialCreate))
				Expect(mustList()).To(BeEmpty())

				members.addFn = nil
				member, err := workspaces.RetryOwnerMembership(ctx, result.Workspace.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(member.Role).To(Equal(model.RoleOwner))
				Expect(member.UserID).To(Equal(alice))

				list := mustList()
				Expect(list).To(HaveLen(1))
				Expect(list[0].Role).To(Equal(model.RoleOwner))
			})
		})
	})

	Describe("RetryOwnerMembership", func() {
		It("is a no-op when the membership exists", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			_, err = workspaces.RetryOwnerMembership(ctx, result.Workspace.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members.addCalls.Load()).To(Equal(int32(1)))
		})

		It("refuses anyone but the creator", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.SignIn(ctx, bob)).To(Succeed())
			_, err = workspaces.RetryOwnerMembership(ctx, result.Workspace.ID)
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Update", func() {
		It("changes the name and refreshes the single-workspace view", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())
			wsID := result.Workspace.ID

			v := workspaces.Get(ctx, wsID, service.Wait())
			Expect(v.Value.Name).To(Equal("Launch"))

			updated, err := workspaces.Update(ctx, service.UpdateWorkspaceInput{ID: wsID, Name: strPtr("Relaunch")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Relaunch"))
			Expect(updated.Slug).To(Equal("launch"))

			v = workspaces.Get(ctx, wsID, service.Wait())
			Expect(v.Value.Name).To(Equal("Relaunch"))
			Expect(mustList()[0].Name).To(Equal("Relaunch"))
		})

		It("rejects a blank name", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			_, err = workspaces.Update(ctx, service.UpdateWorkspaceInput{ID: result.Workspace.ID, Name: strPtr(" ")})
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})

		It("reports a missing workspace", func() {
			_, err := workspaces.Update(ctx, service.UpdateWorkspaceInput{ID: 404, Name: strPtr("x")})
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the workspace and invalidates its dependents", func() {
			result, err := workspaces.Create(ctx, service.CreateWorkspaceInput{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())
			wsID := result.Workspace.ID

			Expect(mustList()).To(HaveLen(1))
			Expect(svc.Tasks().List(ctx, wsID, service.Wait()).Err).NotTo(HaveOccurred())

			Expect(workspaces.Delete(ctx, wsID)).To(Succeed())

			snap, _ := svc.Cache().Peek(cache.NewKey("tasks", wsID))
			Expect(snap.Freshness).To(Equal(cache.Stale))
			Expect(mustList()).To(BeEmpty())
			Expect(workspaces.Get(ctx, wsID, service.Wait()).Err).To(MatchError(store.ErrNotFound))
		})
	})
})
