// Package backup defines where backup documents are kept and their JSON
// layout. A Sink stores named blobs; FileSink keeps them in a directory and
// S3Sink in an S3 (or S3-compatible) bucket.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

// Sink stores backup documents by name. Get returns common.ErrorNotFound
// for a name that was never stored.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// FormatVersion is written to every document and checked on restore.
const FormatVersion = 1

// Default document names.
const (
	ArticlesName = "articles.json"
	GroupsName   = "groups.json"
)

// Articles holds the article table in id order. Bodies are kept in stored
// (possibly transformed) form.
type Articles struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	Articles  []models.Article `json:"articles"`
}

// GroupRecord is a group with its members and linked article ids.
type GroupRecord struct {
	models.Group
	Members    []models.Membership `json:"members"`
	ArticleIDs []int64             `json:"article_ids"`
}

type Groups struct {
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	Groups    []GroupRecord `json:"groups"`
}

func Encode(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func DecodeArticles(data []byte) (*Articles, error) {
	var doc Articles
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid articles backup: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported articles backup version %d", doc.Version)
	}
	return &doc, nil
}

func DecodeGroups(data []byte) (*Groups, error) {
	var doc Groups
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid groups backup: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported groups backup version %d", doc.Version)
	}
	return &doc, nil
}
