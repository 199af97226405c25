// Package store implements the durable message store on SQLite via GORM.
// All failures are returned to the caller; nothing here terminates the
// process, a store that could not be opened keeps serving errors instead.
package store

import (
	"errors"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned by lookups for messages that do not exist.
	ErrNotFound = errors.New("message not found")
	// ErrUnavailable is returned by every operation when the database
	// could not be opened at startup.
	ErrUnavailable = errors.New("message store unavailable")
)

type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// Open opens (or creates) the SQLite database at path. An open failure is
// logged and leaves the store in a degraded state where every operation
// returns ErrUnavailable.
func Open(path string, log *zap.SugaredLogger) *Store {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Errorw("open database", "path", path, "error", err)
		return &Store{log: log}
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &Store{db: db, log: log}
}

// Init idempotently ensures the schema exists. Failure is logged, not fatal:
// the process keeps serving and every later operation fails on its own.
func (s *Store) Init() {
	if s.db == nil {
		s.log.Error("schema init skipped: database not open")
		return
	}
	if err := s.db.AutoMigrate(&Message{}, &Reaction{}); err != nil {
		s.log.Errorw("schema init failed", "error", err)
		return
	}
	s.log.Info("database initialized")
}

// Append inserts a new message and returns its assigned id.
func (s *Store) Append(content, author string, replyTo *uint) (uint, error) {
	if s.db == nil {
		return 0, ErrUnavailable
	}
	m := Message{Content: content, Author: author, ReplyTo: replyTo}
	if err := s.db.Create(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

// FindAuthor returns the stored author of a message, for the deletion
// authorization check.
func (s *Store) FindAuthor(id uint) (string, error) {
	if s.db == nil {
		return "", ErrUnavailable
	}
	var m Message
	if err := s.db.Select("author").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return m.Author, nil
}

// Delete removes the message and its reactions in one transaction, so a
// failure cannot strip reactions off a surviving message. The authorization
// check is the caller's job; deletion here is unconditional and physical.
func (s *Store) Delete(id uint) error {
	if s.db == nil {
		return ErrUnavailable
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&Reaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Message{}).Error
	})
}

// RenameAuthor rewrites the author field of every message posted under
// oldName. Not transactional with the presence rename.
func (s *Store) RenameAuthor(oldName, newName string) error {
	if s.db == nil {
		return ErrUnavailable
	}
	return s.db.Model(&Message{}).
		Where("author = ?", oldName).
		Update("author", newName).Error
}

// UpsertReaction inserts or replaces the reaction keyed by (messageID, author).
func (s *Store) UpsertReaction(messageID uint, author, reaction string) error {
	if s.db == nil {
		return ErrUnavailable
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "author"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction"}),
	}).Create(&Reaction{MessageID: messageID, Author: author, Reaction: reaction}).Error
}

// RecentHistory returns the most recent limit messages with id greater than
// afterID, oldest first, each annotated with its reactions.
func (s *Store) RecentHistory(limit int, afterID uint) ([]HistoryEntry, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var msgs []Message
	q := s.db.Order("created_at DESC, id DESC")
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	// chronological order for replay
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	var reactions []Reaction
	if err := s.db.Where("message_id IN ?", ids).Find(&reactions).Error; err != nil {
		return nil, err
	}
	byMsg := make(map[uint][]Reaction, len(msgs))
	for _, r := range reactions {
		byMsg[r.MessageID] = append(byMsg[r.MessageID], r)
	}

	out := make([]HistoryEntry, len(msgs))
	for i, m := range msgs {
		out[i] = HistoryEntry{Message: m, Reactions: byMsg[m.ID]}
	}
	return out, nil
}
