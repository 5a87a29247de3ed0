package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// setList collects the columns of a partial UPDATE. Column names come from
// code, never from input; every value is bound as a parameter.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col)
	s.args = append(s.args, v)
}

// setIf adds col when v is non-nil.
func setIf[T any](s *setList, col string, v *T) {
	if v != nil {
		s.add(col, *v)
	}
}

func (s *setList) empty() bool {
	return len(s.cols) == 0
}

// cond is an equality predicate of the WHERE clause.
type cond struct {
	col string
	val any
}

func where(col string, val any) cond {
	return cond{col: col, val: val}
}

// build renders the statement and its arguments.
func (s *setList) build(table string, conds ...cond) (string, []any) {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, c := range s.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(" = $")
		b.WriteString(strconv.Itoa(i + 1))
	}

	args := make([]any, 0, len(s.args)+len(conds))
	args = append(args, s.args...)
	for i, c := range conds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, c.val)
		b.WriteString(c.col)
		b.WriteString(" = $")
		b.WriteString(strconv.Itoa(len(args)))
	}
	return b.String(), args
}

// exec runs the update. An empty set is rejected and zero affected rows are
// reported as notFound.
func (s *setList) exec(ctx context.Context, q querier, table string, notFound error, conds ...cond) error {
	if s.empty() {
		return apperr.ErrNothingToUpdate
	}
	sql, args := s.build(table, conds...)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
