package postgres

import (
	"fmt"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// appendListOpts adds the time window, newest-first ordering and pagination
// of opts to a query that already ends in a WHERE clause.
func appendListOpts(query string, args []any, column string, opts domain.ListOpts) (string, []any) {
	argIdx := len(args) + 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND %s >= $%d", column, argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND %s <= $%d", column, argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY %s DESC", column)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}
	return query, args
}
