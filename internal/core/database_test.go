// AngelaMos | 2026
// database_test.go

package core

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslatePgError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "uq_ticket_executor"},
			want: ErrDuplicateKey,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "fk_executor_membership"},
			want: ErrForeignKey,
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "tickets_priority_check"},
			want: ErrInvalidInput,
		},
		{
			name: "wrapped foreign key violation",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}),
			want: ErrForeignKey,
		},
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			want: ErrNotFound,
		},
		{
			name: "other postgres error",
			err:  &pgconn.PgError{Code: "40001"},
			want: nil,
		},
		{
			name: "non postgres error",
			err:  plain,
			want: plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslatePgError(tt.err)
			if tt.want == nil {
				if got != tt.err {
					t.Errorf("TranslatePgError() = %v, want unchanged %v", got, tt.err)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("TranslatePgError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslatePgErrorKeepsConstraintName(t *testing.T) {
	err := TranslatePgError(&pgconn.PgError{
		Code:           "23503",
		ConstraintName: "fk_executor_membership",
	})
	if got := err.Error(); got != "foreign key violation: fk_executor_membership" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTranslatePgErrorNil(t *testing.T) {
	if err := TranslatePgError(nil); err != nil {
		t.Errorf("TranslatePgError(nil) = %v", err)
	}
}
