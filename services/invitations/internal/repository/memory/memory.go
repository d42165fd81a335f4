// Package memory implements the repository interfaces in process memory.
// Tests use it in place of PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
)

// Store backs every repository with one set of maps so that joins such as
// photo to invitation behave like the SQL ones.
type Store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	invitations map[int64]*domain.Invitation
	guests      map[int64]*domain.Guest
	rsvps       []domain.RSVP
	albums      map[int64]*domain.Album // by invitation id
	photos      map[int64]*domain.Photo
	users       map[int64]*domain.User
	limits      map[string]*window
}

type window struct {
	count   int
	start   time.Time
	expires time.Time
}

func New() *Store {
	return &Store{
		now:         time.Now,
		invitations: map[int64]*domain.Invitation{},
		guests:      map[int64]*domain.Guest{},
		albums:      map[int64]*domain.Album{},
		photos:      map[int64]*domain.Photo{},
		users:       map[int64]*domain.User{},
		limits:      map[string]*window{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Invitations() repository.InvitationRepository { return invitations{s} }
func (s *Store) Guests() repository.GuestRepository           { return guests{s} }
func (s *Store) RSVPs() repository.RSVPRepository             { return rsvps{s} }
func (s *Store) Albums() repository.AlbumRepository           { return albums{s} }
func (s *Store) Users() repository.UserRepository             { return users{s} }
func (s *Store) RateLimits() repository.RateLimitRepository   { return rateLimits{s} }

// SetClock replaces the time source used for timestamps and rate limit windows.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, constraint)
}

func page(n, limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

type invitations struct{ s *Store }

func (r invitations) Create(_ context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.invitations {
		if existing.Slug == inv.Slug {
			return nil, duplicate("invitations_slug_key")
		}
	}
	c := *inv
	c.ID = r.s.id()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.invitations[c.ID] = &c
	out := c
	return &out, nil
}

func (r invitations) GetByID(_ context.Context, id int64) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, nil
	}
	out := *inv
	return &out, nil
}

func (r invitations) GetBySlug(_ context.Context, slug string) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.Slug == slug {
			out := *inv
			return &out, nil
		}
	}
	return nil, nil
}

func (r invitations) SlugExists(ctx context.Context, slug string) (bool, error) {
	inv, err := r.GetBySlug(ctx, slug)
	return inv != nil, err
}

func (r invitations) List(_ context.Context, ownerID *int64, limit, offset int) ([]domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.Invitation
	for _, inv := range r.s.invitations {
		if ownerID != nil && (inv.OwnerID == nil || *inv.OwnerID != *ownerID) {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	from, to := page(len(out), limit, offset)
	return out[from:to], nil
}

func (r invitations) Update(_ context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.invitations[inv.ID]
	if !ok {
		return nil, nil
	}
	c := *inv
	c.Slug = existing.Slug
	c.OwnerID = existing.OwnerID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.s.now()
	r.s.invitations[c.ID] = &c
	out := c
	return &out, nil
}

type guests struct{ s *Store }

func (r guests) Create(_ context.Context, invitationID int64, in *domain.GuestInput, token string) (*domain.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, g := range r.s.guests {
		if g.Token == token {
			return nil, duplicate("guests_token_key")
		}
	}
	now := r.s.now()
	g := domain.Guest{
		ID:            r.s.id(),
		InvitationID:  invitationID,
		Name:          in.Name,
		Type:          in.Type,
		ExpectedCount: in.Expected(),
		Token:         token,
		Status:        domain.GuestPending,
		Message:       in.Message,
		Email:         in.Email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.guests[g.ID] = &g
	out := g
	return &out, nil
}

func (r guests) GetByID(_ context.Context, id int64) (*domain.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guests[id]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (r guests) GetByToken(_ context.Context, token string) (*domain.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.guests {
		if g.Token == token {
			out := *g
			return &out, nil
		}
	}
	return nil, nil
}

func (r guests) ListByInvitation(_ context.Context, invitationID int64) ([]domain.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Guest{}
	for _, g := range r.s.guests {
		if g.InvitationID == invitationID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (r guests) Update(_ context.Context, id int64, p domain.GuestPatch) (*domain.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guests[id]
	if !ok {
		return nil, nil
	}
	set(&g.Name, p.Name)
	set(&g.Type, p.Type)
	set(&g.ExpectedCount, p.ExpectedCount)
	set(&g.AttendingCount, p.AttendingCount)
	set(&g.Status, p.Status)
	set(&g.Message, p.Message)
	set(&g.Email, p.Email)
	g.UpdatedAt = r.s.now()
	out := *g
	return &out, nil
}

func (r guests) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guests[id]; !ok {
		return false, nil
	}
	delete(r.s.guests, id)
	return true, nil
}

func (r guests) Counts(_ context.Context, invitationID int64) (domain.GuestCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c domain.GuestCounts
	for _, g := range r.s.guests {
		if g.InvitationID != invitationID {
			continue
		}
		c.Total++
		switch g.Status {
		case domain.GuestPending:
			c.Pending++
		case domain.GuestConfirmed:
			c.Confirmed++
		case domain.GuestDeclined:
			c.Declined++
		}
		c.Expected += g.ExpectedCount
		c.Attending += g.AttendingCount
	}
	return c, nil
}

type rsvps struct{ s *Store }

func (r rsvps) Create(_ context.Context, in *domain.RSVPInput, guestID *int64) (*domain.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v := domain.RSVP{
		ID:           r.s.id(),
		InvitationID: in.InvitationID,
		GuestID:      guestID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Attendance:   in.Attendance,
		Companions:   in.CompanionCount(),
		Message:      in.Message,
		CreatedAt:    r.s.now(),
	}
	r.s.rsvps = append(r.s.rsvps, v)
	return &v, nil
}

func (r rsvps) List(_ context.Context, invitationID int64, filter domain.RSVPFilter) ([]domain.RSVP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.RSVP
	for i := len(r.s.rsvps) - 1; i >= 0; i-- {
		v := r.s.rsvps[i]
		if v.InvitationID != invitationID {
			continue
		}
		if filter.Attendance != nil && v.Attendance != *filter.Attendance {
			continue
		}
		out = append(out, v)
	}
	from, to := page(len(out), filter.Limit, filter.Offset)
	return out[from:to], nil
}

func (r rsvps) Counts(_ context.Context, invitationID int64) (domain.RSVPCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c domain.RSVPCounts
	for _, v := range r.s.rsvps {
		if v.InvitationID != invitationID {
			continue
		}
		c.Total++
		switch v.Attendance {
		case domain.AttendanceConfirms:
			c.Confirmed++
			c.ConfirmedAttendees += 1 + v.Companions
		case domain.AttendanceDeclines:
			c.Declined++
		}
	}
	return c, nil
}

type albums struct{ s *Store }

func (r albums) GetByInvitation(_ context.Context, invitationID int64) (*domain.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.albums[invitationID]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (r albums) ensureLocked(invitationID int64, title string) *domain.Album {
	a, ok := r.s.albums[invitationID]
	if !ok {
		a = &domain.Album{ID: r.s.id(), InvitationID: invitationID, Title: title, CreatedAt: r.s.now()}
		r.s.albums[invitationID] = a
	}
	return a
}

func (r albums) Ensure(_ context.Context, invitationID int64, title string) (*domain.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *r.ensureLocked(invitationID, title)
	return &out, nil
}

func (r albums) SetModeration(_ context.Context, invitationID int64, title string, enabled bool) (*domain.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.ensureLocked(invitationID, title)
	a.ModerationEnabled = enabled
	out := *a
	return &out, nil
}

func (r albums) CreatePhoto(_ context.Context, albumID int64, url string, in domain.PhotoInput, approved bool) (*domain.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var invitationID int64
	for _, a := range r.s.albums {
		if a.ID == albumID {
			invitationID = a.InvitationID
		}
	}
	if invitationID == 0 {
		return nil, fmt.Errorf("album %d does not exist", albumID)
	}
	p := domain.Photo{
		ID:           r.s.id(),
		AlbumID:      albumID,
		InvitationID: invitationID,
		URL:          url,
		UploaderName: in.UploaderName,
		Caption:      in.Caption,
		Approved:     approved,
		CreatedAt:    r.s.now(),
	}
	r.s.photos[p.ID] = &p
	out := p
	return &out, nil
}

func (r albums) GetPhoto(_ context.Context, id int64) (*domain.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.photos[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (r albums) ListPhotos(_ context.Context, albumID int64, approved bool) ([]domain.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Photo{}
	for _, p := range r.s.photos {
		if p.AlbumID == albumID && p.Approved == approved {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r albums) SetPhotoApproved(_ context.Context, id int64, approved bool) (*domain.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.photos[id]
	if !ok {
		return nil, nil
	}
	p.Approved = approved
	out := *p
	return &out, nil
}

func (r albums) DeletePhoto(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.photos[id]; !ok {
		return false, nil
	}
	delete(r.s.photos, id)
	return true, nil
}

func (r albums) CountPending(_ context.Context, invitationID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.photos {
		if p.InvitationID == invitationID && !p.Approved {
			n++
		}
	}
	return n, nil
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == req.Email {
			return nil, duplicate("users_email_key")
		}
	}
	now := r.s.now()
	u := domain.User{
		ID:           r.s.id(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = &u
	out := u
	return &out, nil
}

func (r users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r users) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

type rateLimits struct{ s *Store }

func (r rateLimits) CheckRateLimit(_ context.Context, key string, requests int, win time.Duration) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	k := repository.HashKey(key)
	w, ok := r.s.limits[k]
	if !ok || w.start.Before(now.Add(-win)) {
		w = &window{start: now}
		r.s.limits[k] = w
	}
	w.count++
	w.expires = now.Add(win)
	return w.count <= requests, nil
}

func (r rateLimits) CleanupExpired(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var n int64
	for k, w := range r.s.limits {
		if w.expires.Before(now) {
			delete(r.s.limits, k)
			n++
		}
	}
	return n, nil
}
