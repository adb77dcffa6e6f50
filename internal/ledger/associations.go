package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// ownerType selects which association table a tagged entity uses.
type ownerType int

// maxBatch keeps IN lists well under SQLite's bound-parameter limit.
const maxBatch = 500

const (
	ownerAccount ownerType = iota
	ownerTransaction
)

func (o ownerType) table() string {
	if o == ownerTransaction {
		return "transaction_tags"
	}
	return "account_tags"
}

func (o ownerType) column() string {
	if o == ownerTransaction {
		return "transaction_id"
	}
	return "account_id"
}

// associations links owners to tags. It never opens its own atomic unit:
// callers pass the Querier of the unit the owner write belongs to.
type associations struct{}

// replaceTags removes every association of the owner and inserts one per
// tag id. An empty list leaves the owner with no tags. Duplicate ids collapse
// to a single association; an unknown id is a NotFoundError.
func (a *associations) replaceTags(ctx context.Context, q db.Querier, owner ownerType, ownerID string, tagIDs []string) error {
	ids, err := normalizeTagIDs(tagIDs)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := requireTags(ctx, q, ids); err != nil {
			return err
		}
	}

	del := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, owner.table(), owner.column())
	if _, err := q.ExecContext(ctx, del, ownerID); err != nil {
		return storeErr("clear tag associations", err)
	}

	ins := fmt.Sprintf(`INSERT INTO %s (%s, tag_id) VALUES (?, ?)`, owner.table(), owner.column())
	for _, tagID := range ids {
		if _, err := q.ExecContext(ctx, ins, ownerID, tagID); err != nil {
			return storeErr("insert tag association", err)
		}
	}

	return nil
}

// getTags returns the owner's tags ordered by name.
func (a *associations) getTags(ctx context.Context, q db.Querier, owner ownerType, ownerID string) ([]models.Tag, error) {
	byOwner, err := a.getTagsMany(ctx, q, owner, []string{ownerID})
	if err != nil {
		return nil, err
	}
	return byOwner[ownerID], nil
}

// getTagsMany resolves the tags of several owners in one query. Owners
// without tags get an empty, non-nil slice.
func (a *associations) getTagsMany(ctx context.Context, q db.Querier, owner ownerType, ownerIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}
	for _, id := range ownerIDs {
		result[id] = []models.Tag{}
	}

	for start := 0; start < len(ownerIDs); start += maxBatch {
		end := min(start+maxBatch, len(ownerIDs))
		if err := a.loadTags(ctx, q, owner, ownerIDs[start:end], result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (a *associations) loadTags(ctx context.Context, q db.Querier, owner ownerType, ownerIDs []string, into map[string][]models.Tag) error {
	query := fmt.Sprintf(`
		SELECT o.%[2]s, t.id, t.name, t.color, t.created_at
		FROM %[1]s o
		JOIN tags t ON t.id = o.tag_id
		WHERE o.%[2]s IN (%[3]s)
		ORDER BY t.name ASC
	`, owner.table(), owner.column(), placeholders(len(ownerIDs)))

	rows, err := q.QueryContext(ctx, query, toArgs(ownerIDs)...)
	if err != nil {
		return storeErr("query tag associations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID string
		var tag models.Tag
		if err := rows.Scan(&ownerID, &tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return storeErr("scan tag association", err)
		}
		into[ownerID] = append(into[ownerID], tag)
	}
	if err := rows.Err(); err != nil {
		return storeErr("iterate tag associations", err)
	}
	return nil
}

// normalizeTagIDs trims ids, rejects blanks and drops duplicates while
// keeping the first occurrence order.
func normalizeTagIDs(tagIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(tagIDs))
	ids := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalid("tagIds", "tag id must not be empty")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// requireTags fails with a NotFoundError naming the first unknown tag id.
func requireTags(ctx context.Context, q db.Querier, ids []string) error {
	query := fmt.Sprintf(`SELECT id FROM tags WHERE id IN (%s)`, placeholders(len(ids)))
	rows, err := q.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return storeErr("look up tags", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return storeErr("scan tag id", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return storeErr("iterate tag ids", err)
	}

	for _, id := range ids {
		if !found[id] {
			return notFound("tag", id)
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
