package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/yourname/fittrack/internal"
)

// MemoryStore keeps every record in maps. With a data file configured it
// loads a JSON snapshot on start and rewrites it shortly after each change.
type MemoryStore struct {
	users     map[string]*internal.User // id -> User
	calories  *table[internal.CalorieEntry]
	weights   *table[internal.WeightEntry]
	workouts  *table[internal.WorkoutEntry]
	mu        sync.RWMutex
	dataFile  string
	saveChan  chan struct{}
	shutdown  chan struct{}
	done      chan struct{}
	saveDelay time.Duration
	closeOnce sync.Once
	now       func() time.Time
	logger    internal.Logger
}

// storedUser carries the password hash the API representation hides.
type storedUser struct {
	internal.User
	PasswordHash string `json:"passwordHash"`
}

type snapshot struct {
	Users    []storedUser            `json:"users"`
	Calories []internal.CalorieEntry `json:"calories"`
	Weights  []internal.WeightEntry  `json:"weights"`
	Workouts []internal.WorkoutEntry `json:"workouts"`
}

// NewMemoryStore returns a store that lives only as long as the process.
func NewMemoryStore(logger internal.Logger) *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*internal.User),
		calories: newTable(func(e *internal.CalorieEntry) *internal.Record { return &e.Record }),
		weights:  newTable(func(e *internal.WeightEntry) *internal.Record { return &e.Record }),
		workouts: newTable(func(e *internal.WorkoutEntry) *internal.Record { return &e.Record }),
		now:      time.Now,
		logger:   logger,
	}
}

// NewFileStore is a MemoryStore persisted to dataFile.
func NewFileStore(dataFile string, logger internal.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(logger)
	s.dataFile = dataFile
	s.saveChan = make(chan struct{}, 1)
	s.shutdown = make(chan struct{})
	s.done = make(chan struct{})
	s.saveDelay = 500 * time.Millisecond

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load %s: %v", dataFile, err)
		return nil, err
	}

	go s.saveWorker()
	return s, nil
}

func (s *MemoryStore) load() error {
	file, err := os.Open(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, su := range snap.Users {
		u := su.User
		u.PasswordHash = su.PasswordHash
		s.users[u.ID] = &u
	}
	for _, e := range snap.Calories {
		s.calories.load(e)
	}
	for _, e := range snap.Weights {
		s.weights.load(e)
	}
	for _, e := range snap.Workouts {
		s.workouts.load(e)
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *MemoryStore) save() error {
	s.mu.RLock()
	snap := snapshot{
		Users:    make([]storedUser, 0, len(s.users)),
		Calories: s.calories.all(),
		Weights:  s.weights.all(),
		Workouts: s.workouts.all(),
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, storedUser{User: *u, PasswordHash: u.PasswordHash})
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.dataFile, snap)
}

func (s *MemoryStore) saveWorker() {
	defer close(s.done)
	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", s.dataFile, err)
			}
		case <-s.shutdown:
			return
		}
	}
}

// changed schedules a snapshot write; a no-op without a data file.
func (s *MemoryStore) changed() {
	if s.saveChan == nil {
		return
	}
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *MemoryStore) Close() error {
	if s.dataFile == "" {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdown)
		<-s.done
		// Save pending data synchronously on shutdown
		err = s.save()
	})
	return err
}

// --- UserRepository ---
func (s *MemoryStore) CreateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrConflict
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	u := *user
	s.users[u.ID] = &u
	s.changed()
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return s.findUser(func(u *internal.User) bool { return u.Email == email })
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	return s.findUser(func(u *internal.User) bool { return u.Username == username })
}

func (s *MemoryStore) findUser(match func(*internal.User) bool) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// --- CalorieRepository ---
func (s *MemoryStore) CreateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calories.insert(e, s.now())
	s.changed()
	return nil
}

func (s *MemoryStore) GetCalorie(ctx context.Context, id int64) (*internal.CalorieEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calories.get(id)
}

func (s *MemoryStore) ListCalories(ctx context.Context, userID string) ([]internal.CalorieEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calories.list(userID, nil, nil, false), nil
}

func (s *MemoryStore) ListCaloriesInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.CalorieEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calories.list(userID, &from, &to, true), nil
}

func (s *MemoryStore) UpdateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.calories.update(e); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *MemoryStore) DeleteCalorie(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.calories.delete(id); err != nil {
		return err
	}
	s.changed()
	return nil
}

// --- WeightRepository ---

// CreateWeight rejects a second entry for the same user and date.
func (s *MemoryStore) CreateWeight(ctx context.Context, e *internal.WeightEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weightOn(e.UserID, e.Date, 0) {
		return ErrConflict
	}
	s.weights.insert(e, s.now())
	s.changed()
	return nil
}

func (s *MemoryStore) weightOn(userID string, date internal.Date, exceptID int64) bool {
	return s.weights.find(func(r *internal.Record) bool {
		return r.UserID == userID && r.Date.Equal(date) && r.ID != exceptID
	}) != nil
}

func (s *MemoryStore) GetWeight(ctx context.Context, id int64) (*internal.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights.get(id)
}

func (s *MemoryStore) FindWeightByDate(ctx context.Context, userID string, date internal.Date) (*internal.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.weights.find(func(r *internal.Record) bool {
		return r.UserID == userID && r.Date.Equal(date)
	})
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) ListWeights(ctx context.Context, userID string) ([]internal.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights.list(userID, nil, nil, false), nil
}

func (s *MemoryStore) ListWeightsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WeightEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights.list(userID, &from, &to, true), nil
}

func (s *MemoryStore) UpdateWeight(ctx context.Context, e *internal.WeightEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.weights.get(e.ID)
	if err != nil {
		return err
	}
	if s.weightOn(existing.UserID, e.Date, e.ID) {
		return ErrConflict
	}
	if err := s.weights.update(e); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *MemoryStore) DeleteWeight(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.weights.delete(id); err != nil {
		return err
	}
	s.changed()
	return nil
}

// --- WorkoutRepository ---
func (s *MemoryStore) CreateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts.insert(e, s.now())
	s.changed()
	return nil
}

func (s *MemoryStore) GetWorkout(ctx context.Context, id int64) (*internal.WorkoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workouts.get(id)
}

func (s *MemoryStore) ListWorkouts(ctx context.Context, userID string) ([]internal.WorkoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workouts.list(userID, nil, nil, false), nil
}

func (s *MemoryStore) ListWorkoutsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WorkoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workouts.list(userID, &from, &to, true), nil
}

func (s *MemoryStore) UpdateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.workouts.update(e); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *MemoryStore) DeleteWorkout(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.workouts.delete(id); err != nil {
		return err
	}
	s.changed()
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*MemoryStore)(nil)
