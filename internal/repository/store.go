package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories behind one handle so that services can run
// several of them inside a single transaction.
type Store interface {
	Users() UserRepository
	Proponents() ProponentRepository
	Notices() NoticeRepository
	Projects() ProjectRepository
	Evaluations() EvaluationRepository
	Documents() DocumentRepository

	// WithTx runs fn in a database transaction. The Store passed to fn is
	// bound to that transaction; fn returning an error rolls it back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB

	users       UserRepository
	proponents  ProponentRepository
	notices     NoticeRepository
	projects    ProjectRepository
	evaluations EvaluationRepository
	documents   DocumentRepository
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:          db,
		users:       NewUserRepository(db),
		proponents:  NewProponentRepository(db),
		notices:     NewNoticeRepository(db),
		projects:    NewProjectRepository(db),
		evaluations: NewEvaluationRepository(db),
		documents:   NewDocumentRepository(db),
	}
}

var _ Store = (*gormStore)(nil)

func (s *gormStore) Users() UserRepository             { return s.users }
func (s *gormStore) Proponents() ProponentRepository   { return s.proponents }
func (s *gormStore) Notices() NoticeRepository         { return s.notices }
func (s *gormStore) Projects() ProjectRepository       { return s.projects }
func (s *gormStore) Evaluations() EvaluationRepository { return s.evaluations }
func (s *gormStore) Documents() DocumentRepository     { return s.documents }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
