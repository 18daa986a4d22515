package tags

import (
	"errors"
	"strings"

	"github.com/daybox-app/daybox/pkg/daybox/models"
	"gorm.io/gorm"
)

// Resolve maps free-text tag names to Tag rows for one owner, creating any
// that do not exist yet. Names are trimmed of surrounding whitespace and
// de-duplicated within the call; matching is otherwise case-sensitive, so
// "Work" and "work" are distinct tags.
//
// Resolve runs on the caller's session and stages inserts without committing;
// transaction scope belongs to the caller. An empty input yields an empty
// slice and no error.
func Resolve(tx *gorm.DB, ownerID uint, names []string) ([]models.Tag, error) {
	resolved := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := getOrCreate(tx, ownerID, name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, tag)
	}

	return resolved, nil
}

// getOrCreate looks up a tag by (owner, name) and creates it when missing.
// The unique index on (owner_id, name) backs this up: if a concurrent insert
// wins the race, the constraint violation is recovered by retrying the lookup.
func getOrCreate(tx *gorm.DB, ownerID uint, name string) (models.Tag, error) {
	var tag models.Tag
	err := tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tag{}, err
	}

	tag = models.Tag{OwnerID: ownerID, Name: name}
	if createErr := tx.Create(&tag).Error; createErr != nil {
		// Lost the race to a concurrent insert; the row must exist now.
		if lookupErr := tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&tag).Error; lookupErr != nil {
			return models.Tag{}, createErr
		}
	}
	return tag, nil
}
