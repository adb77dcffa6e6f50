package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// TagRegistry manages tag definitions.
type TagRegistry struct {
	base
}

// List returns all tags ordered by name.
func (r *TagRegistry) List(ctx context.Context) ([]models.Tag, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, storeErr("scan tag", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate tags", err)
	}

	return tags, nil
}

// Get returns a single tag.
func (r *TagRegistry) Get(ctx context.Context, id string) (*models.Tag, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return getTag(ctx, r.db, id)
}

// Create persists a new tag. The color defaults to db.DefaultTagColor.
func (r *TagRegistry) Create(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "tag name is required")
	}
	color := db.DefaultTagColor
	if req.Color != nil && strings.TrimSpace(*req.Color) != "" {
		color = strings.TrimSpace(*req.Color)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag := &models.Tag{
		ID:        newID(),
		Name:      name,
		Color:     color,
		CreatedAt: r.stamp(),
	}

	err := r.db.Transaction(ctx, func(q db.Querier) error {
		var existing string
		err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&existing)
		switch {
		case err == nil:
			return &ConflictError{Entity: "tag", ID: existing, Reason: "name " + name + " already exists"}
		case !errors.Is(err, sql.ErrNoRows):
			return storeErr("look up tag name", err)
		}

		_, err = q.ExecContext(ctx,
			`INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
			tag.ID, tag.Name, tag.Color, tag.CreatedAt,
		)
		if isUniqueViolation(err) {
			return &ConflictError{Entity: "tag", ID: name, Reason: "name already exists"}
		}
		return storeErr("insert tag", err)
	})
	if err != nil {
		return nil, storeErr("create tag", err)
	}

	r.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

// Delete removes a tag together with every account and transaction
// association that references it.
func (r *TagRegistry) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var removed int64
	err := r.db.Transaction(ctx, func(q db.Querier) error {
		if _, err := getTag(ctx, q, id); err != nil {
			return err
		}

		for _, owner := range []ownerType{ownerAccount, ownerTransaction} {
			res, err := q.ExecContext(ctx, `DELETE FROM `+owner.table()+` WHERE tag_id = ?`, id)
			if err != nil {
				return storeErr("delete tag associations", err)
			}
			n, _ := res.RowsAffected()
			removed += n
		}

		_, err := q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		return storeErr("delete tag", err)
	})
	if err != nil {
		return storeErr("delete tag", err)
	}

	r.logger.Info("tag deleted", "tag_id", id, "associations_removed", removed)
	return nil
}

func getTag(ctx context.Context, q db.Querier, id string) (*models.Tag, error) {
	var tag models.Tag
	err := q.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM tags WHERE id = ?`, id).
		Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tag", id)
	}
	if err != nil {
		return nil, storeErr("get tag", err)
	}
	return &tag, nil
}
