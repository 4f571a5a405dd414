package listing

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

type ExcludedListings struct {
	Items []*ExcludedListing
}

type ExcludedListing struct {
	ID         string
	Title      string
	Platform   string
	URL        string
	ExcludedAt time.Time
}

func (v *Listings) ToExcluded() *ExcludedListings {
	excluded := &ExcludedListings{}
	now := time.Now().UTC()
	for _, l := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedListing{
			ID:         l.ID,
			Title:      l.Title,
			Platform:   l.Platform,
			URL:        l.ApplicationURL,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedListings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedListings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedListings{}, nil
	}

	var excluded ExcludedListings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (v *ExcludedListings) Append(s *ExcludedListings) {
	v.Items = append(v.Items, s.Items...)
}

func (v *ExcludedListings) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, l := range v.Items {
		ids = append(ids, l.ID)
	}
	return ids
}

func (v *ExcludedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
