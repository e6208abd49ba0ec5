package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/memecataloger/memecataloger-web/internal/domain"
)

const mediaInfoPrefix = "mediainfo:"

func mediaInfoKey(imageID uuid.UUID) []byte {
	return []byte(mediaInfoPrefix + imageID.String())
}

// GetMediaInfo returns the derived media info for one image.
func (s *Store) GetMediaInfo(imageID uuid.UUID) (*domain.MediaInfo, error) {
	var info domain.MediaInfo
	if err := s.get(mediaInfoKey(imageID), &info); err != nil {
		return nil, fmt.Errorf("get media info %s: %w", imageID, err)
	}
	return &info, nil
}

// PutMediaInfo stores derived media info, replacing any previous value.
func (s *Store) PutMediaInfo(info *domain.MediaInfo) error {
	if info == nil || info.ImageID == uuid.Nil {
		return errors.New("media info needs an image id")
	}
	if err := s.set(mediaInfoKey(info.ImageID), info); err != nil {
		return fmt.Errorf("put media info %s: %w", info.ImageID, err)
	}
	return nil
}

// DeleteMediaInfo forgets the media info for an image.
func (s *Store) DeleteMediaInfo(imageID uuid.UUID) error {
	return s.delete(mediaInfoKey(imageID))
}

// MediaInfoBatch returns the stored media info for each of ids that has one,
// keyed by image ID, in a single read transaction.
func (s *Store) MediaInfoBatch(ids []uuid.UUID) (map[uuid.UUID]*domain.MediaInfo, error) {
	out := make(map[uuid.UUID]*domain.MediaInfo, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, imageID := range ids {
			item, err := txn.Get(mediaInfoKey(imageID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var info domain.MediaInfo
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			}); err != nil {
				return fmt.Errorf("decode media info %s: %w", imageID, err)
			}
			out[imageID] = &info
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountMediaInfo returns how many images have media info recorded.
func (s *Store) CountMediaInfo() (int, error) {
	return s.countPrefix([]byte(mediaInfoPrefix))
}
