package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/repository"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// memStore is an in-memory repository.Store. WithTx serialises
// transactions and rolls back on error, which mirrors the row locks the
// gorm store takes closely enough for service tests.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    *memData
}

type memData struct {
	users       map[uuid.UUID]models.User
	proponents  map[uuid.UUID]models.Proponent
	notices     map[uuid.UUID]models.Notice
	projects    map[uuid.UUID]models.Project
	details     map[uuid.UUID]models.Project
	evaluations map[uuid.UUID]models.Evaluation
	documents   map[uuid.UUID]models.HabilitacaoDocument
}

func newMemStore() *memStore {
	return &memStore{d: &memData{
		users:       map[uuid.UUID]models.User{},
		proponents:  map[uuid.UUID]models.Proponent{},
		notices:     map[uuid.UUID]models.Notice{},
		projects:    map[uuid.UUID]models.Project{},
		details:     map[uuid.UUID]models.Project{},
		evaluations: map[uuid.UUID]models.Evaluation{},
		documents:   map[uuid.UUID]models.HabilitacaoDocument{},
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		users:       cloneMap(d.users),
		proponents:  cloneMap(d.proponents),
		notices:     cloneMap(d.notices),
		projects:    cloneMap(d.projects),
		details:     cloneMap(d.details),
		evaluations: cloneMap(d.evaluations),
		documents:   cloneMap(d.documents),
	}
}

func (s *memStore) Users() repository.UserRepository { return memUsers{s, table(s, usersTable)} }
func (s *memStore) Proponents() repository.ProponentRepository {
	return memProponents{s, table(s, proponentsTable)}
}
func (s *memStore) Notices() repository.NoticeRepository {
	return memNotices{s, table(s, noticesTable)}
}
func (s *memStore) Projects() repository.ProjectRepository {
	return memProjects{s, table(s, projectsTable)}
}
func (s *memStore) Evaluations() repository.EvaluationRepository {
	return memEvaluations{s, table(s, evaluationsTable)}
}
func (s *memStore) Documents() repository.DocumentRepository {
	return memDocuments{s, table(s, documentsTable)}
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.Store = (*memStore)(nil)

// tableDef describes how a generic table reaches its rows.
type tableDef[T any] struct {
	entity string
	rows   func(d *memData) map[uuid.UUID]T
	id     func(*T) *uuid.UUID
	// unique reports whether a and b collide on a unique index.
	unique func(a, b *T) bool
	// strip removes associations before storing.
	strip func(T) T
}

type memTable[T any] struct {
	s   *memStore
	def tableDef[T]
}

func table[T any](s *memStore, def tableDef[T]) memTable[T] { return memTable[T]{s: s, def: def} }

func (t memTable[T]) Create(ctx context.Context, obj *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	rows := t.def.rows(t.s.d)
	id := t.def.id(obj)
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if err := t.checkUnique(rows, obj); err != nil {
		return err
	}
	rows[*id] = t.stored(*obj)
	return nil
}

func (t memTable[T]) GetByID(ctx context.Context, id any, dest *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	key, _ := id.(uuid.UUID)
	v, ok := t.def.rows(t.s.d)[key]
	if !ok {
		return appErr.New(appErr.CodeNotFound, t.def.entity+" not found")
	}
	*dest = v
	return nil
}

func (t memTable[T]) Update(ctx context.Context, obj *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	rows := t.def.rows(t.s.d)
	if err := t.checkUnique(rows, obj); err != nil {
		return err
	}
	rows[*t.def.id(obj)] = t.stored(*obj)
	return nil
}

func (t memTable[T]) Delete(ctx context.Context, id any) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	key, _ := id.(uuid.UUID)
	rows := t.def.rows(t.s.d)
	if _, ok := rows[key]; !ok {
		return appErr.New(appErr.CodeNotFound, t.def.entity+" not found")
	}
	delete(rows, key)
	return nil
}

func (t memTable[T]) checkUnique(rows map[uuid.UUID]T, obj *T) error {
	if t.def.unique == nil {
		return nil
	}
	id := *t.def.id(obj)
	for k, v := range rows {
		if k != id && t.def.unique(&v, obj) {
			return appErr.New(appErr.CodeConflict, "create "+t.def.entity+" failed: duplicate")
		}
	}
	return nil
}

func (t memTable[T]) stored(v T) T {
	if t.def.strip != nil {
		return t.def.strip(v)
	}
	return v
}

// filter returns the rows matching keep, unordered. Caller holds no lock.
func (t memTable[T]) filter(keep func(*T) bool) []T {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []T
	for _, v := range t.def.rows(t.s.d) {
		if keep(&v) {
			out = append(out, v)
		}
	}
	return out
}

var (
	usersTable = tableDef[models.User]{
		entity: "user",
		rows:   func(d *memData) map[uuid.UUID]models.User { return d.users },
		id:     func(u *models.User) *uuid.UUID { return &u.ID },
		unique: func(a, b *models.User) bool { return a.Email == b.Email },
	}
	proponentsTable = tableDef[models.Proponent]{
		entity: "proponent",
		rows:   func(d *memData) map[uuid.UUID]models.Proponent { return d.proponents },
		id:     func(p *models.Proponent) *uuid.UUID { return &p.ID },
	}
	noticesTable = tableDef[models.Notice]{
		entity: "notice",
		rows:   func(d *memData) map[uuid.UUID]models.Notice { return d.notices },
		id:     func(n *models.Notice) *uuid.UUID { return &n.ID },
		unique: func(a, b *models.Notice) bool { return a.Code == b.Code },
	}
	projectsTable = tableDef[models.Project]{
		entity: "project",
		rows:   func(d *memData) map[uuid.UUID]models.Project { return d.projects },
		id:     func(p *models.Project) *uuid.UUID { return &p.ID },
		unique: func(a, b *models.Project) bool {
			return a.RegistrationNumber != nil && b.RegistrationNumber != nil && *a.RegistrationNumber == *b.RegistrationNumber
		},
		strip: func(p models.Project) models.Project {
			p.BudgetItems, p.TeamMembers, p.Activities, p.Goals = nil, nil, nil, nil
			return p
		},
	}
	evaluationsTable = tableDef[models.Evaluation]{
		entity: "evaluation",
		rows:   func(d *memData) map[uuid.UUID]models.Evaluation { return d.evaluations },
		id:     func(e *models.Evaluation) *uuid.UUID { return &e.ID },
		unique: func(a, b *models.Evaluation) bool {
			return a.ProjectID == b.ProjectID && a.EvaluatorID == b.EvaluatorID
		},
	}
	documentsTable = tableDef[models.HabilitacaoDocument]{
		entity: "document",
		rows:   func(d *memData) map[uuid.UUID]models.HabilitacaoDocument { return d.documents },
		id:     func(d *models.HabilitacaoDocument) *uuid.UUID { return &d.ID },
		unique: func(a, b *models.HabilitacaoDocument) bool { return a.ProjectID == b.ProjectID && a.Key == b.Key },
	}
)

type memUsers struct {
	s *memStore
	memTable[models.User]
}

func (r memUsers) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	found := r.filter(func(u *models.User) bool { return u.Email == strings.ToLower(email) })
	if len(found) == 0 {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	*dest = found[0]
	return nil
}

type memProponents struct {
	s *memStore
	memTable[models.Proponent]
}

func (r memProponents) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Proponent, error) {
	return r.filter(func(p *models.Proponent) bool { return p.UserID == userID }), nil
}

type memNotices struct {
	s *memStore
	memTable[models.Notice]
}

func (r memNotices) GetByCode(ctx context.Context, code string, dest *models.Notice) error {
	found := r.filter(func(n *models.Notice) bool { return n.Code == code })
	if len(found) == 0 {
		return appErr.New(appErr.CodeNotFound, "notice not found")
	}
	*dest = found[0]
	return nil
}

func (r memNotices) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Notice) error {
	return r.GetByID(ctx, id, dest)
}

func (r memNotices) List(ctx context.Context) ([]models.Notice, error) {
	return r.filter(func(*models.Notice) bool { return true }), nil
}

func (r memNotices) Upsert(ctx context.Context, n *models.Notice) error {
	var existing models.Notice
	if err := r.GetByCode(ctx, n.Code, &existing); err == nil {
		n.ID = existing.ID
		return r.Update(ctx, n)
	}
	return r.Create(ctx, n)
}

type memProjects struct {
	s *memStore
	memTable[models.Project]
}

func (r memProjects) GetWithDetails(ctx context.Context, id uuid.UUID, dest *models.Project) error {
	if err := r.GetByID(ctx, id, dest); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := r.s.d.details[id]
	dest.BudgetItems = append([]models.BudgetItem(nil), d.BudgetItems...)
	dest.TeamMembers = append([]models.TeamMember(nil), d.TeamMembers...)
	dest.Activities = append([]models.Activity(nil), d.Activities...)
	dest.Goals = append([]models.Goal(nil), d.Goals...)
	return nil
}

func (r memProjects) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Project) error {
	return r.GetWithDetails(ctx, id, dest)
}

func (r memProjects) ReplaceDetails(ctx context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range p.BudgetItems {
		p.BudgetItems[i].ID, p.BudgetItems[i].ProjectID, p.BudgetItems[i].Position = uuid.New(), p.ID, i
	}
	r.s.d.details[p.ID] = models.Project{
		BudgetItems: append([]models.BudgetItem(nil), p.BudgetItems...),
		TeamMembers: append([]models.TeamMember(nil), p.TeamMembers...),
		Activities:  append([]models.Activity(nil), p.Activities...),
		Goals:       append([]models.Goal(nil), p.Goals...),
	}
	return nil
}

func (r memProjects) Delete(ctx context.Context, id any) error {
	if err := r.memTable.Delete(ctx, id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.d.details, id.(uuid.UUID))
	return nil
}

func (r memProjects) CountNumbered(ctx context.Context, noticeID uuid.UUID) (int64, error) {
	found := r.filter(func(p *models.Project) bool { return p.NoticeID == noticeID && p.RegistrationNumber != nil })
	return int64(len(found)), nil
}

func (r memProjects) List(ctx context.Context, f repository.ProjectFilter) ([]models.Project, int64, error) {
	var assigned map[uuid.UUID]bool
	if f.EvaluatorID != uuid.Nil {
		assigned = map[uuid.UUID]bool{}
		for _, e := range (memEvaluations{r.s, table(r.s, evaluationsTable)}).filter(func(e *models.Evaluation) bool { return e.EvaluatorID == f.EvaluatorID }) {
			assigned[e.ProjectID] = true
		}
	}
	out := r.filter(func(p *models.Project) bool {
		if len(f.ProponentIDs) > 0 {
			match := false
			for _, id := range f.ProponentIDs {
				match = match || p.ProponentID == id
			}
			if !match {
				return false
			}
		}
		if f.NoticeID != uuid.Nil && p.NoticeID != f.NoticeID {
			return false
		}
		if assigned != nil && !assigned[p.ID] {
			return false
		}
		return f.Status == "" || p.Status == f.Status
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = nil
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

type memEvaluations struct {
	s *memStore
	memTable[models.Evaluation]
}

func (r memEvaluations) GetForUpdate(ctx context.Context, id uuid.UUID, dest *models.Evaluation) error {
	return r.GetByID(ctx, id, dest)
}

func (r memEvaluations) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Evaluation, error) {
	return r.filter(func(e *models.Evaluation) bool { return e.ProjectID == projectID }), nil
}

func (r memEvaluations) ListByEvaluator(ctx context.Context, evaluatorID uuid.UUID) ([]models.Evaluation, error) {
	return r.filter(func(e *models.Evaluation) bool { return e.EvaluatorID == evaluatorID }), nil
}

type memDocuments struct {
	s *memStore
	memTable[models.HabilitacaoDocument]
}

func (r memDocuments) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error) {
	out := r.filter(func(d *models.HabilitacaoDocument) bool { return d.ProjectID == projectID })
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}
