package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/store"
)

var _ = Describe("Memory", func() {
	var (
		ctx context.Context
		m   *store.Memory
		ws  *model.Workspace
	)

	const (
		alice int64 = 1
		bob   int64 = 2
	)

	newTask := func(id int64, position int32) *model.Task {
		return &model.Task{
			ID:          id,
			WorkspaceID: ws.ID,
			CreatorID:   alice,
			Position:    position,
			Title:       "task",
			Status:      model.TaskStatusTodo,
			Priority:    model.TaskPriorityMedium,
		}
	}

	positions := func() []int32 {
		tasks, err := m.Tasks().ListByWorkspace(ctx, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		out := make([]int32, len(tasks))
		for i, t := range tasks {
			out[i] = t.Position
		}
		return out
	}

	BeforeEach(func() {
		ctx = context.Background()
		m = store.NewMemory()
		m.AddUser(model.User{ID: alice, Name: "Alice", Email: "alice@example.com"})
		m.AddUser(model.User{ID: bob, Name: "Bob", Email: "bob@example.com"})

		ws = &model.Workspace{ID: 100, OwnerID: alice, Name: "Launch", Slug: "launch"}
		Expect(m.Workspaces().Create(ctx, ws)).To(Succeed())
		Expect(m.Members().Add(ctx, &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: alice, Role: model.RoleOwner})).To(Succeed())
	})

	Describe("workspaces", func() {
		It("rejects a duplicate slug", func() {
			err := m.Workspaces().Create(ctx, &model.Workspace{ID: 101, OwnerID: alice, Name: "Other", Slug: "launch"})
			Expect(err).To(MatchError(store.ErrConflict))
		})

		It("gets a workspace with the member's role", func() {
			got, err := m.Workspaces().GetForMember(ctx, ws.ID, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Launch"))
			Expect(got.Role).To(Equal(model.RoleOwner))

			_, err = m.Workspaces().GetForMember(ctx, ws.ID, bob)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("lists only the member's workspaces with their role", func() {
			other := &model.Workspace{ID: 101, OwnerID: bob, Name: "Bob's", Slug: "bobs"}
			Expect(m.Workspaces().Create(ctx, other)).To(Succeed())
			Expect(m.Members().Add(ctx, &model.WorkspaceMember{WorkspaceID: other.ID, UserID: bob, Role: model.RoleOwner})).To(Succeed())
			Expect(m.Members().Add(ctx, &model.WorkspaceMember{WorkspaceID: other.ID, UserID: alice, Role: model.RoleMember})).To(Succeed())

			list, err := m.Workspaces().ListByMember(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].ID).To(Equal(ws.ID))
			Expect(list[0].Role).To(Equal(model.RoleOwner))
			Expect(list[1].Role).To(Equal(model.RoleMember))

			list, err = m.Workspaces().ListByMember(ctx, bob)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})

		It("cascades a delete to members and tasks", func() {
			Expect(m.Tasks().Create(ctx, newTask(1, 0))).To(Succeed())
			Expect(m.Workspaces().Delete(ctx, ws.ID)).To(Succeed())

			_, err := m.Members().Get(ctx, ws.ID, alice)
			Expect(err).To(MatchError(store.ErrNotFound))
			_, err = m.Tasks().GetByID(ctx, ws.ID, 1)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("members", func() {
		It("rejects a second membership for the same user", func() {
			err := m.Members().Add(ctx, &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: alice, Role: model.RoleAdmin})
			Expect(err).To(MatchError(store.ErrConflict))
		})

		It("rejects a membership for a missing workspace", func() {
			err := m.Members().Add(ctx, &model.WorkspaceMember{WorkspaceID: 999, UserID: bob, Role: model.RoleMember})
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("expands the user summary", func() {
			members, err := m.Members().ListByWorkspace(ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
			Expect(members[0].User.Name).To(Equal("Alice"))
		})
	})

	Describe("tasks", func() {
		It("appends after the highest position when none is given", func() {
			Expect(m.Tasks().Create(ctx, newTask(1, 5))).To(Succeed())
			t := newTask(2, 0)
			Expect(m.Tasks().Create(ctx, t)).To(Succeed())
			Expect(t.Position).To(Equal(int32(6)))
		})

		It("orders by position regardless of insertion order", func() {
			Expect(m.Tasks().Create(ctx, newTask(1, 3))).To(Succeed())
			Expect(m.Tasks().Create(ctx, newTask(2, 1))).To(Succeed())
			Expect(m.Tasks().Create(ctx, newTask(3, 2))).To(Succeed())
			Expect(positions()).To(Equal([]int32{1, 2, 3}))
		})

		It("rejects a taken position", func() {
			Expect(m.Tasks().Create(ctx, newTask(1, 1))).To(Succeed())
			Expect(m.Tasks().Create(ctx, newTask(2, 1))).To(MatchError(store.ErrConflict))

			Expect(m.Tasks().Create(ctx, newTask(2, 2))).To(Succeed())
			moved := newTask(2, 1)
			Expect(m.Tasks().Update(ctx, moved)).To(MatchError(store.ErrConflict))
		})

		It("leaves gaps on delete", func() {
			for i := int64(1); i <= 3; i++ {
				Expect(m.Tasks().Create(ctx, newTask(i, 0))).To(Succeed())
			}
			Expect(m.Tasks().Delete(ctx, ws.ID, 2)).To(Succeed())
			Expect(positions()).To(Equal([]int32{1, 3}))
		})

		It("expands category, assignee and creator", func() {
			color := "#ff0000"
			m.AddCategory(model.Category{ID: 9, WorkspaceID: ws.ID, Name: "Bugs", Color: &color})
			t := newTask(1, 0)
			t.CategoryID = ptr(int64(9))
			t.AssigneeID = ptr(bob)
			Expect(m.Tasks().Create(ctx, t)).To(Succeed())

			got, err := m.Tasks().GetByID(ctx, ws.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Category.Name).To(Equal("Bugs"))
			Expect(got.Assignee.Name).To(Equal("Bob"))
			Expect(got.Creator.Name).To(Equal("Alice"))
		})

		It("scopes lookups to the workspace", func() {
			Expect(m.Tasks().Create(ctx, newTask(1, 0))).To(Succeed())
			_, err := m.Tasks().GetByID(ctx, 999, 1)
			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(m.Tasks().Delete(ctx, 999, 1)).To(MatchError(store.ErrNotFound))
		})
	})
})

func ptr[T any](v T) *T { return &v }
