package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("mapErr", func() {
	It("passes nil through", func() {
		Expect(mapErr(nil)).To(BeNil())
	})

	It("maps no rows to ErrNotFound", func() {
		Expect(mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows))).To(MatchError(ErrNotFound))
	})

	It("maps unique violations to ErrConflict with the constraint", func() {
		err := mapErr(&pgconn.PgError{Code: "23505", ConstraintName: "tasks_workspace_id_position_key"})
		Expect(err).To(MatchError(ErrConflict))
		Expect(err.Error()).To(ContainSubstring("tasks_workspace_id_position_key"))
	})

	It("leaves other errors alone", func() {
		boom := errors.New("connection reset")
		Expect(mapErr(boom)).To(Equal(boom))

		fk := &pgconn.PgError{Code: "23503"}
		Expect(mapErr(fk)).To(Equal(error(fk)))
	})
})
