package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"solitaire/internal/service/account/domain"
)

type memProfiles struct {
	mu      sync.Mutex
	rows    map[string]domain.Profile
	creates int
}

func (m *memProfiles) Get(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memProfiles) Create(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.rows[p.UserID]; !ok {
		m.rows[p.UserID] = *p
	}
	return nil
}

func (m *memProfiles) Update(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.UserID] = *p
	return nil
}

type memWishlist struct {
	mu   sync.Mutex
	rows []domain.WishlistItem
}

func (m *memWishlist) List(_ context.Context, userID string) ([]domain.WishlistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WishlistItem
	for _, it := range m.rows {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memWishlist) Add(_ context.Context, item *domain.WishlistItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.rows {
		if it.UserID == item.UserID && it.ProductID == item.ProductID {
			return false, nil
		}
	}
	m.rows = append(m.rows, *item)
	return true, nil
}

func (m *memWishlist) Remove(_ context.Context, userID string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.rows {
		if it.UserID == userID && it.ProductID == productID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

type memMessages struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]domain.Message
}

func (m *memMessages) Create(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	msg.ID = m.seq
	m.rows[msg.ID] = *msg
	return nil
}

func (m *memMessages) Get(_ context.Context, id int64) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return &msg, nil
}

func (m *memMessages) List(context.Context) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.rows {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memMessages) Update(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[msg.ID]; !ok {
		return domain.ErrMessageNotFound
	}
	m.rows[msg.ID] = *msg
	return nil
}

func (m *memMessages) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(m.rows, id)
	return nil
}

type knownProducts map[int64]bool

func (k knownProducts) Exists(_ context.Context, id int64) (bool, error) {
	if id < 0 {
		return false, errors.New("catalog unavailable")
	}
	return k[id], nil
}

var clock = time.Date(2024, 5, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	profiles *memProfiles
	wishlist *memWishlist
	messages *memMessages
	svc      *AccountService
}

func newFixture() *fixture {
	f := &fixture{
		profiles: &memProfiles{rows: map[string]domain.Profile{}},
		wishlist: &memWishlist{},
		messages: &memMessages{rows: map[int64]domain.Message{}},
	}
	f.svc = NewAccountService(f.profiles, f.wishlist, f.messages, knownProducts{1: true, 2: true},
		noop.NewTracerProvider().Tracer("test")).WithClock(func() time.Time { return clock })
	return f
}

func TestProfileCreatedOnFirstRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.GetProfile(ctx, "u1", "u1@example.com")
	require.NoError(t, err)
	want := &domain.Profile{UserID: "u1", Email: "u1@example.com", CreatedAt: clock, UpdatedAt: clock}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	_, err = f.svc.GetProfile(ctx, "u1", "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, f.profiles.creates)

	p, err = f.svc.UpdateProfile(ctx, "u1", "", &ProfileRequest{Name: "Ada", Address: "London", Phone: "2025550143"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	stored, _ := f.profiles.Get(ctx, "u1")
	assert.Equal(t, "2025550143", stored.Phone)

	_, err = f.svc.UpdateProfile(ctx, "u1", "", &ProfileRequest{Phone: "n/a"})
	assert.True(t, errors.Is(err, domain.ErrInvalidProfile))
}

func TestWishlistIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	items, err := f.svc.ListWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = f.svc.AddToWishlist(ctx, "u1", 1)
	require.NoError(t, err)
	items, err = f.svc.AddToWishlist(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = f.svc.AddToWishlist(ctx, "u1", 42)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	_, err = f.svc.AddToWishlist(ctx, "u1", -1)
	assert.Error(t, err)

	items, err = f.svc.RemoveFromWishlist(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = f.svc.RemoveFromWishlist(ctx, "u1", 1)
	assert.NoError(t, err)
}

func TestContactMessages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	m, err := f.svc.SubmitMessage(ctx, &ContactRequest{Name: "Grace", Email: "grace@example.com", Message: "Do you ship to Canada?"})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageUnread, m.Status)

	_, err = f.svc.SubmitMessage(ctx, &ContactRequest{Name: "Grace", Email: "nope", Message: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidMessage))

	m, err = f.svc.SetMessageStatus(ctx, m.ID, "read")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRead, m.Status)
	_, err = f.svc.SetMessageStatus(ctx, m.ID, "spam")
	assert.True(t, errors.Is(err, domain.ErrInvalidMsgStatus))

	m, err = f.svc.ReplyMessage(ctx, m.ID, "Yes, we do.")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageResponded, m.Status)
	assert.Equal(t, clock, *m.RepliedAt)

	msgs, err := f.svc.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Yes, we do.", msgs[0].Reply)

	require.NoError(t, f.svc.DeleteMessage(ctx, m.ID))
	assert.True(t, errors.Is(f.svc.DeleteMessage(ctx, m.ID), domain.ErrMessageNotFound))
	_, err = f.svc.ReplyMessage(ctx, m.ID, "late")
	assert.True(t, errors.Is(err, domain.ErrMessageNotFound))
}
