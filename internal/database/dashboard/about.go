package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unipress/publishing/internal/database"
)

// AboutStats are the public headline numbers of the press.
type AboutStats struct {
	BooksPublished   int64 `json:"booksPublished"`
	AuthorsPublished int64 `json:"authorsPublished"`
	StudentsTrained  int64 `json:"studentsTrained"`
}

type About struct {
	Stats AboutStats     `json:"stats"`
	Team  []database.Row `json:"team"`
}

// About loads the public statistics and up to five active admins and
// editors with their faculty details.
func (r *Repository) About(ctx context.Context) (*About, error) {
	var a About

	counters := []counter{
		{&a.Stats.BooksPublished, "count", "SELECT COUNT(*) as count FROM books WHERE status = 'published'"},
		{&a.Stats.AuthorsPublished, "count", "SELECT COUNT(*) as count FROM authors a JOIN users u ON a.user_id = u.id WHERE u.status = 'active'"},
		{&a.Stats.StudentsTrained, "count", "SELECT COUNT(*) as count FROM training_registrations WHERE status = 'completed'"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			n, err := r.db.ScalarInt(gctx, c.column, c.query)
			*c.dst = n
			return err
		})
	}
	g.Go(func() error {
		rows, err := r.db.QueryRows(gctx, `SELECT u.full_name, a.faculty, a.department, a.qualifications
			FROM users u
			LEFT JOIN authors a ON u.id = a.user_id
			WHERE u.role IN ('admin', 'editor') AND u.status = 'active'
			ORDER BY u.id
			LIMIT 5`)
		a.Team = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load about statistics: %w", err)
	}
	return &a, nil
}
