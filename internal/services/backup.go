package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/backup"
	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
)

const MsgBackupNotFound = "Backup not found."

// BackupService writes articles and groups to a backup.Sink and restores
// them. A restore replaces the current contents in one transaction.
type BackupService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	sink        backup.Sink
	log         logging.Logger
	now         func() time.Time
}

func NewBackupService(db *dbx.DB, m repomanager.RepositoryManager, sink backup.Sink, log logging.Logger) *BackupService {
	return &BackupService{db: db, repomanager: m, sink: sink, log: log.With("service", "backup"), now: time.Now}
}

func (s *BackupService) load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.sink.Get(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(MsgBackupNotFound)
		}
		return nil, common.Persistence("Failed to read backup", err)
	}
	return data, nil
}

// BackupArticles stores every article under name and returns the count.
func (s *BackupService) BackupArticles(ctx context.Context, name string) (int, error) {
	list, err := s.repomanager.Articles(s.db).List(ctx)
	if err != nil {
		return 0, common.Persistence("Failed to list articles", err)
	}

	data, err := backup.Encode(backup.Articles{Version: backup.FormatVersion, CreatedAt: s.now().UTC(), Articles: list})
	if err != nil {
		return 0, common.Persistence("Failed to encode backup", err)
	}
	if err := s.sink.Put(ctx, name, data); err != nil {
		return 0, common.Persistence("Failed to write backup", err)
	}
	s.log.Info(ctx, "articles backed up", "name", name, "count", len(list))
	return len(list), nil
}

// RestoreArticles replaces all articles with the backup. Articles are
// inserted in their original order, so display ids are preserved; group
// links of the replaced articles are dropped.
func (s *BackupService) RestoreArticles(ctx context.Context, name string) (int, error) {
	data, err := s.load(ctx, name)
	if err != nil {
		return 0, err
	}
	doc, err := backup.DecodeArticles(data)
	if err != nil {
		return 0, common.Validation(err.Error())
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)
		groupsRepo := s.repomanager.Groups(tx)

		ids, err := repo.IDs(ctx)
		if err != nil {
			return common.Persistence("Failed to list articles", err)
		}
		for _, id := range ids {
			if err := groupsRepo.DeleteLinksByArticle(ctx, id); err != nil {
				return common.Persistence("Failed to unlink article", err)
			}
		}
		if err := repo.DeleteArticleRights(ctx); err != nil {
			return common.Persistence("Failed to clear article rights", err)
		}
		if err := repo.DeleteAll(ctx); err != nil {
			return common.Persistence("Failed to clear articles", err)
		}

		for i := range doc.Articles {
			a := doc.Articles[i]
			id, err := repo.Create(ctx, &a)
			if err != nil {
				return common.Persistence("Failed to restore article", err)
			}
			if err := repo.UpsertRights(ctx, models.ArticleScope(id), models.DefaultRights(a.Encrypted)); err != nil {
				return common.Persistence("Failed to restore article rights", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "articles restored", "name", name, "count", len(doc.Articles))
	return len(doc.Articles), nil
}

// BackupGroups stores every group with its members and article links.
func (s *BackupService) BackupGroups(ctx context.Context, name string) (int, error) {
	repo := s.repomanager.Groups(s.db)
	list, err := repo.List(ctx)
	if err != nil {
		return 0, common.Persistence("Failed to list groups", err)
	}

	records := make([]backup.GroupRecord, 0, len(list))
	for _, g := range list {
		members, err := repo.ListMembers(ctx, g.ID)
		if err != nil {
			return 0, common.Persistence("Failed to list members", err)
		}
		ids, err := repo.ArticleIDs(ctx, g.ID)
		if err != nil {
			return 0, common.Persistence("Failed to list group articles", err)
		}
		records = append(records, backup.GroupRecord{Group: g, Members: members, ArticleIDs: ids})
	}

	data, err := backup.Encode(backup.Groups{Version: backup.FormatVersion, CreatedAt: s.now().UTC(), Groups: records})
	if err != nil {
		return 0, common.Persistence("Failed to encode backup", err)
	}
	if err := s.sink.Put(ctx, name, data); err != nil {
		return 0, common.Persistence("Failed to write backup", err)
	}
	s.log.Info(ctx, "groups backed up", "name", name, "count", len(records))
	return len(records), nil
}

// RestoreGroups replaces all groups, memberships and links with the backup.
// Links to articles that no longer exist are skipped.
func (s *BackupService) RestoreGroups(ctx context.Context, name string) (int, error) {
	data, err := s.load(ctx, name)
	if err != nil {
		return 0, err
	}
	doc, err := backup.DecodeGroups(data)
	if err != nil {
		return 0, common.Validation(err.Error())
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		articlesRepo := s.repomanager.Articles(tx)

		existing, err := repo.List(ctx)
		if err != nil {
			return common.Persistence("Failed to list groups", err)
		}
		for _, g := range existing {
			if err := repo.DeleteLinksByGroup(ctx, g.ID); err != nil {
				return common.Persistence("Failed to clear group articles", err)
			}
			if err := repo.DeleteMembers(ctx, g.ID); err != nil {
				return common.Persistence("Failed to clear group members", err)
			}
			if err := repo.Delete(ctx, g.ID); err != nil {
				return common.Persistence("Failed to clear groups", err)
			}
		}

		for _, rec := range doc.Groups {
			g := rec.Group
			if err := repo.Create(ctx, &g); err != nil {
				return common.Persistence("Failed to restore group", err)
			}
			for i := range rec.Members {
				m := rec.Members[i]
				m.GroupID = g.ID
				if err := repo.AddMember(ctx, &m); err != nil {
					return common.Persistence("Failed to restore member", err)
				}
			}
			for _, id := range rec.ArticleIDs {
				if _, err := articlesRepo.Get(ctx, id); err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						continue
					}
					return common.Persistence("Failed to load article", err)
				}
				if err := repo.LinkArticle(ctx, g.ID, id); err != nil {
					return common.Persistence("Failed to restore group article", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "groups restored", "name", name, "count", len(doc.Groups))
	return len(doc.Groups), nil
}
