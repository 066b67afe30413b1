package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
)

const (
	lookupChunk = 500
	insertBatch = 100
)

// upsertByKey inserts the rows whose natural key is not already stored and skips the
// rest, preserving input order. Existing rows are never updated. Rows sharing a key
// inside one batch are both staged, so the unique index rejects the batch.
func upsertByKey[T any](dbc dbctx.Context, db *gorm.DB, keyCol string, rows []*T, key func(*T) string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	t := dbc.DB(db)

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, key(r))
	}
	existing := make(map[string]struct{}, len(keys))
	for start := 0; start < len(keys); start += lookupChunk {
		end := start + lookupChunk
		if end > len(keys) {
			end = len(keys)
		}
		var found []string
		if err := t.Model(new(T)).
			Where(keyCol+" IN ?", keys[start:end]).
			Pluck(keyCol, &found).Error; err != nil {
			return 0, err
		}
		for _, k := range found {
			existing[k] = struct{}{}
		}
	}

	staged := make([]*T, 0, len(rows))
	for _, r := range rows {
		if _, ok := existing[key(r)]; ok {
			continue
		}
		staged = append(staged, r)
	}
	if len(staged) == 0 {
		return 0, nil
	}
	if err := t.CreateInBatches(staged, insertBatch).Error; err != nil {
		return 0, err
	}
	return len(staged), nil
}

func page(q *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func byID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// likePattern builds a case-insensitive substring pattern that matches term literally.
// It pairs with ESCAPE '!'.
func likePattern(term string) string {
	out := make([]rune, 0, len(term)+2)
	out = append(out, '%')
	for _, r := range term {
		switch r {
		case '!', '%', '_':
			out = append(out, '!')
		}
		out = append(out, r)
	}
	out = append(out, '%')
	return string(out)
}

func pluckIDs(dbc dbctx.Context, db *gorm.DB, model any) ([]uint, error) {
	var ids []uint
	if err := dbc.DB(db).Model(model).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
