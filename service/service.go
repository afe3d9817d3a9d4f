package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fulldump/inceptionpersist/persistence"
	"github.com/fulldump/inceptionpersist/snapshot"
)

var ErrCollectionNotFound = persistence.ErrCollectionNotFound

type Service struct {
	persister *persistence.Persister
	logger    *zap.Logger

	mutex sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	sync.Mutex
	users int
}

func NewService(p *persistence.Persister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		persister: p,
		logger:    logger.Named("service"),
		locks:     map[string]*nameLock{},
	}
}

// lock serializes operations over the same database name. Entries are
// dropped once nobody holds or waits for them.
func (s *Service) lock(name string) func() {
	s.mutex.Lock()
	l, exists := s.locks[name]
	if !exists {
		l = &nameLock{}
		s.locks[name] = l
	}
	l.users++
	s.mutex.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		s.mutex.Lock()
		l.users--
		if l.users == 0 {
			delete(s.locks, name)
		}
		s.mutex.Unlock()
	}
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.persister.Databases(ctx)
}

func (s *Service) Export(ctx context.Context, name string, snap *snapshot.Snapshot) error {
	defer s.lock(name)()
	return s.persister.Export(ctx, name, snap)
}

func (s *Service) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	defer s.lock(name)()
	return s.persister.Load(ctx, name)
}

func (s *Service) LoadCollection(ctx context.Context, name string, index int) (*snapshot.Collection, error) {
	defer s.lock(name)()
	return s.persister.LoadCollection(ctx, name, index)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	defer s.lock(name)()
	return s.persister.Delete(ctx, name)
}

type CollectionSummary struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

type Summary struct {
	Name          string               `json:"name"`
	SchemaVersion int                  `json:"schemaVersion"`
	Collections   []*CollectionSummary `json:"collections"`
	Errors        []string             `json:"errors,omitempty"`
}

// Summary loads the database and counts its documents. Collections that
// failed to load are reported in Errors instead of failing the whole call.
func (s *Service) Summary(ctx context.Context, name string) (*Summary, error) {

	snap, err := s.Load(ctx, name)
	if snap == nil {
		return nil, err
	}

	result := &Summary{
		Name:          snap.Name,
		SchemaVersion: snap.SchemaVersion,
		Collections:   []*CollectionSummary{},
	}
	if err != nil {
		s.logger.Warn("partial load", zap.String("database", name), zap.Error(err))
		result.Errors = append(result.Errors, err.Error())
	}

	for i, col := range snap.Collections {
		result.Collections = append(result.Collections, &CollectionSummary{
			Index:     i,
			Name:      col.Name,
			Documents: col.Len(),
		})
	}

	return result, nil
}
