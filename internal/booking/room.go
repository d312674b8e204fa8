package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/hackgods/peer-support-platform/internal/random"
	"github.com/hackgods/peer-support-platform/internal/video"
)

const roomIssueAttempts = 5

var ErrRoomUnavailable = errors.New("could not reserve a unique room id")

// RoomRegistry reserves room ids so two confirmations never share a room.
type RoomRegistry interface {
	// Reserve returns ok=false when the id is already held. The token
	// proves ownership for Release.
	Reserve(ctx context.Context, roomID string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees roomID only while token still holds it.
	Release(ctx context.Context, roomID, token string) (bool, error)
}

// Reservation is a claimed room id and the token that frees it.
type Reservation struct {
	RoomID string
	Token  string
}

// RoomIssuer generates random room ids and reserves them in a registry.
type RoomIssuer struct {
	registry RoomRegistry
	rand     random.Source
	label    string
	ttl      time.Duration
}

func NewRoomIssuer(registry RoomRegistry, src random.Source, label string, ttl time.Duration) *RoomIssuer {
	return &RoomIssuer{
		registry: registry,
		rand:     src,
		label:    sanitizeLabel(label),
		ttl:      ttl,
	}
}

// Issue reserves a fresh room id. Ids the embed would reject are never
// reserved.
func (r *RoomIssuer) Issue(ctx context.Context) (Reservation, error) {
	for attempt := 0; attempt < roomIssueAttempts; attempt++ {
		id := r.generate()
		if err := video.ValidateRoom(id); err != nil {
			return Reservation{}, fmt.Errorf("%w: %w", ErrRoomUnavailable, err)
		}
		token, ok, err := r.registry.Reserve(ctx, id, r.ttl)
		if err != nil {
			return Reservation{}, fmt.Errorf("%w: %w", ErrRoomUnavailable, err)
		}
		if ok {
			return Reservation{RoomID: id, Token: token}, nil
		}
	}
	return Reservation{}, ErrRoomUnavailable
}

// Release hands a reservation back before its ttl runs out.
func (r *RoomIssuer) Release(ctx context.Context, res Reservation) error {
	if _, err := r.registry.Release(ctx, res.RoomID, res.Token); err != nil {
		return fmt.Errorf("release room %s: %w", res.RoomID, err)
	}
	return nil
}

func (r *RoomIssuer) generate() string {
	// Two draws keep the id within int range on 32 bit platforms.
	hi := r.rand.Number(1, 999_999_999)
	lo := r.rand.Number(0, 999_999_999)
	n := fmt.Sprintf("%d%09d", hi, lo)
	if r.label == "" {
		return n
	}
	return r.label + "-" + n
}

func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, c := range label {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		}
	}
	return b.String()
}

// MemoryRoomRegistry keeps reservations in process memory.
type MemoryRoomRegistry struct {
	mu    sync.Mutex
	clock clockwork.Clock
	rooms map[string]memoryHold
}

type memoryHold struct {
	token   string
	expires time.Time
}

func NewMemoryRoomRegistry(clk clockwork.Clock) *MemoryRoomRegistry {
	return &MemoryRoomRegistry{clock: clk, rooms: make(map[string]memoryHold)}
}

func (m *MemoryRoomRegistry) Reserve(_ context.Context, roomID string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if h, ok := m.rooms[roomID]; ok && h.expires.After(now) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.rooms[roomID] = memoryHold{token: token, expires: now.Add(ttl)}

	for id, h := range m.rooms {
		if !h.expires.After(now) {
			delete(m.rooms, id)
		}
	}
	return token, true, nil
}

func (m *MemoryRoomRegistry) Release(_ context.Context, roomID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.rooms[roomID]
	if !ok || h.token != token || !h.expires.After(m.clock.Now()) {
		return false, nil
	}
	delete(m.rooms, roomID)
	return true, nil
}
