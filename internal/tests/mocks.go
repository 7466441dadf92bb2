package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError        error
	GetByUsernameError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameError != nil {
		return nil, m.GetByUsernameError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// CountUsers returns the number of users.
func (m *MockUserRepository) CountUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
	order []string

	// Counters for verification
	CreateCallCount     int32
	GetByIDCallCount    int32
	TransitionCallCount int32

	// Error injection
	CreateError     error
	GetByIDError    error
	TransitionError error

	// BeforeTransition runs before the status check inside Transition.
	// Tests use it to simulate a competing writer.
	BeforeTransition func(ride *domain.Ride)
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	m.order = append(m.order, ride.ID)
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; ok {
		return repository.ErrDuplicate
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	m.order = append(m.order, ride.ID)
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	return m.filter(func(r *domain.Ride) bool { return r.Status == status }), nil
}

func (m *MockRideRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Ride, error) {
	return m.filter(func(r *domain.Ride) bool { return r.UserID == userID }), nil
}

func (m *MockRideRepository) Transition(ctx context.Context, id string, from, to domain.RideStatus, driverID string) (*domain.Ride, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return nil, m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.BeforeTransition != nil {
		m.BeforeTransition(ride)
	}
	if ride.Status != from {
		return nil, repository.ErrStatusConflict
	}
	ride.Status = to
	if driverID != "" {
		ride.DriverID = driverID
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) filter(match func(*domain.Ride) bool) []*domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0)
	for _, id := range m.order {
		if r := m.rides[id]; match(r) {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK TOKEN ISSUER
// ──────────────────────────────────────────────

// MockTokenIssuer returns a predictable token per user.
type MockTokenIssuer struct {
	IssueCallCount int32
	IssueError     error
}

// NewMockTokenIssuer creates a new mock token issuer.
func NewMockTokenIssuer() *MockTokenIssuer {
	return &MockTokenIssuer{}
}

func (m *MockTokenIssuer) Issue(username string, role domain.Role) (string, error) {
	atomic.AddInt32(&m.IssueCallCount, 1)
	if m.IssueError != nil {
		return "", m.IssueError
	}
	return "token-" + username + "-" + string(role), nil
}

// ──────────────────────────────────────────────
// MOCK RIDE CACHE
// ──────────────────────────────────────────────

// MockRideCache is a mock implementation of RideCacheInterface.
type MockRideCache struct {
	mu    sync.Mutex
	rides map[string]domain.Ride

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
	SetError error
}

var _ redis.RideCacheInterface = (*MockRideCache)(nil)

// NewMockRideCache creates a new mock ride cache.
func NewMockRideCache() *MockRideCache {
	return &MockRideCache{
		rides: make(map[string]domain.Ride),
	}
}

func (m *MockRideCache) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return nil, nil
	}
	return &ride, nil
}

func (m *MockRideCache) SetRide(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = *ride
	return nil
}

func (m *MockRideCache) InvalidateRide(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rides, rideID)
	return nil
}

// Has reports whether the ride is cached.
func (m *MockRideCache) Has(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rides[rideID]
	return ok
}
