// Package servicetest provides in-memory stores for service and handler
// tests. They enforce the same uniqueness rules as the database schema.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/models"
	"beautybook/internal/repository"
)

type Store struct {
	mu sync.Mutex

	packages  map[int64]models.ServicePackage
	locations map[int64]models.Location
	blocks    map[int64]models.CalendarBlock
	bookings  map[int64]models.Booking
	orders    map[int64]models.Order
	users     map[int64]models.User
	nextID    int64

	err          error
	createErrors []error
}

func NewStore() *Store {
	return &Store{
		packages:  make(map[int64]models.ServicePackage),
		locations: make(map[int64]models.Location),
		blocks:    make(map[int64]models.CalendarBlock),
		bookings:  make(map[int64]models.Booking),
		orders:    make(map[int64]models.Order),
		users:     make(map[int64]models.User),
	}
}

// FailWith makes every store call return err until called with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// InjectCreateErrors queues errors returned by the next booking inserts.
func (s *Store) InjectCreateErrors(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErrors = append(s.createErrors, errs...)
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddPackage(pkg models.ServicePackage) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pkg.ID == 0 {
		pkg.ID = s.id()
	}
	s.packages[pkg.ID] = pkg
	return pkg.ID
}

func (s *Store) AddLocation(loc models.Location) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.ID == 0 {
		loc.ID = s.id()
	}
	s.locations[loc.ID] = loc
	return loc.ID
}

func (s *Store) AddBlock(date time.Time, timeSlot string, reason *string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	block := models.CalendarBlock{ID: s.id(), Date: calendar.DateOf(date), TimeSlot: timeSlot, Reason: reason}
	s.blocks[block.ID] = block
	return block.ID
}

// AddBooking stores b as is, bypassing the slot constraint.
func (s *Store) AddBooking(b models.Booking) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	b.Date = calendar.DateOf(b.Date)
	s.bookings[b.ID] = b
	return b.ID
}

func (s *Store) AddOrder(o models.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	s.orders[o.ID] = o
	return o.ID
}

func (s *Store) AddUser(u models.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.UserID == 0 {
		u.UserID = s.id()
	}
	s.users[u.UserID] = u
	return u.UserID
}

// Booking returns a copy of the stored booking.
func (s *Store) Booking(id int64) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

func (s *Store) Order(id int64) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *Store) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// BookingCount counts stored bookings.
func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) Catalog() *Catalog           { return &Catalog{s} }
func (s *Store) Blocks() *Blocks             { return &Blocks{s} }
func (s *Store) Bookings() *Bookings         { return &Bookings{s} }
func (s *Store) GuestRecords() *GuestRecords { return &GuestRecords{s} }
func (s *Store) Users() *Users               { return &Users{s} }

type Catalog struct{ s *Store }

func (c *Catalog) GetPackage(_ context.Context, id int64) (*models.ServicePackage, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.err != nil {
		return nil, c.s.err
	}
	pkg, ok := c.s.packages[id]
	if !ok {
		return nil, nil
	}
	return &pkg, nil
}

func (c *Catalog) GetLocation(_ context.Context, id int64) (*models.Location, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.err != nil {
		return nil, c.s.err
	}
	loc, ok := c.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

type Blocks struct{ s *Store }

func (b *Blocks) Get(_ context.Context, date time.Time, timeSlot string) (*models.CalendarBlock, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	date = calendar.DateOf(date)
	for _, block := range b.s.blocks {
		if block.Date.Equal(date) && block.TimeSlot == timeSlot {
			return &block, nil
		}
	}
	return nil, nil
}

func (b *Blocks) ListInRange(_ context.Context, start, end time.Time) ([]models.CalendarBlock, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	var out []models.CalendarBlock
	for _, block := range b.s.blocks {
		if !block.Date.Before(calendar.DateOf(start)) && !block.Date.After(calendar.DateOf(end)) {
			out = append(out, block)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (b *Blocks) Create(_ context.Context, block *models.CalendarBlock) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return b.s.err
	}
	for _, existing := range b.s.blocks {
		if existing.Date.Equal(calendar.DateOf(block.Date)) && existing.TimeSlot == block.TimeSlot {
			return repository.ErrBlockExists
		}
	}
	block.ID = b.s.id()
	block.Date = calendar.DateOf(block.Date)
	block.CreatedAt = time.Now()
	b.s.blocks[block.ID] = *block
	return nil
}

func (b *Blocks) Delete(_ context.Context, id int64) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return false, b.s.err
	}
	if _, ok := b.s.blocks[id]; !ok {
		return false, nil
	}
	delete(b.s.blocks, id)
	return true, nil
}

type Bookings struct{ s *Store }

// slotTaken must be called with the lock held.
func (b *Bookings) slotTaken(booking *models.Booking) bool {
	if !booking.Status.HoldsSlot() {
		return false
	}
	date := calendar.DateOf(booking.Date)
	for _, other := range b.s.bookings {
		if other.ID != booking.ID && other.Status.HoldsSlot() &&
			other.Date.Equal(date) && other.TimeSlot == booking.TimeSlot {
			return true
		}
	}
	return false
}

func (b *Bookings) Create(_ context.Context, booking *models.Booking) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return b.s.err
	}
	if len(b.s.createErrors) > 0 {
		err := b.s.createErrors[0]
		b.s.createErrors = b.s.createErrors[1:]
		return err
	}
	for _, other := range b.s.bookings {
		if other.Reference == booking.Reference {
			return repository.ErrDuplicateReference
		}
	}
	if b.slotTaken(booking) {
		return repository.ErrSlotTaken
	}
	booking.ID = b.s.id()
	booking.Date = calendar.DateOf(booking.Date)
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	booking.Version = 1
	b.s.bookings[booking.ID] = *booking
	return nil
}

func (b *Bookings) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	booking, ok := b.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (b *Bookings) Update(_ context.Context, booking *models.Booking) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return b.s.err
	}
	current, ok := b.s.bookings[booking.ID]
	if !ok || current.Version != booking.Version {
		return repository.ErrStaleBooking
	}
	if b.slotTaken(booking) {
		return repository.ErrSlotTaken
	}
	updated := *booking
	updated.UserID = current.UserID
	updated.UpdatedAt = time.Now()
	updated.Version = current.Version + 1
	b.s.bookings[booking.ID] = updated
	booking.UpdatedAt = updated.UpdatedAt
	booking.Version = updated.Version
	return nil
}

func (b *Bookings) ListByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	var out []models.Booking
	for _, booking := range b.s.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			out = append(out, booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (b *Bookings) IsSlotOccupied(_ context.Context, date time.Time, timeSlot string, excludeID int64) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return false, b.s.err
	}
	probe := models.Booking{ID: excludeID, Date: date, TimeSlot: timeSlot, Status: models.StatusPending}
	return b.slotTaken(&probe), nil
}

func (b *Bookings) ListOccupiedSlots(_ context.Context, start, end time.Time) ([]models.SlotKey, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return nil, b.s.err
	}
	var out []models.SlotKey
	for _, booking := range b.s.bookings {
		if booking.Status.HoldsSlot() &&
			!booking.Date.Before(calendar.DateOf(start)) && !booking.Date.After(calendar.DateOf(end)) {
			out = append(out, models.SlotKey{Date: booking.Date, TimeSlot: booking.TimeSlot})
		}
	}
	return out, nil
}

func (b *Bookings) CountReferences(_ context.Context, prefix string) (int, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return 0, b.s.err
	}
	count := 0
	for _, booking := range b.s.bookings {
		if strings.HasPrefix(booking.Reference, prefix) {
			count++
		}
	}
	return count, nil
}

func (b *Bookings) ReferenceExists(_ context.Context, reference string) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.err != nil {
		return false, b.s.err
	}
	for _, booking := range b.s.bookings {
		if booking.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

type GuestRecords struct{ s *Store }

func (g *GuestRecords) LinkByEmail(_ context.Context, userID int64, email string) (models.LinkResult, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	var result models.LinkResult
	if g.s.err != nil {
		return result, g.s.err
	}
	for id, order := range g.s.orders {
		if order.UserID == nil && order.Guest.Email != nil && *order.Guest.Email == email {
			uid := userID
			order.UserID = &uid
			g.s.orders[id] = order
			result.OrdersLinked++
		}
	}
	for id, booking := range g.s.bookings {
		if booking.UserID == nil && booking.Guest.Email != nil && *booking.Guest.Email == email {
			uid := userID
			booking.UserID = &uid
			g.s.bookings[id] = booking
			result.BookingsLinked++
		}
	}
	return result, nil
}

type Users struct{ s *Store }

func (u *Users) GetByID(_ context.Context, id int64) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.err != nil {
		return nil, u.s.err
	}
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.err != nil {
		return nil, u.s.err
	}
	for _, user := range u.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.err != nil {
		return u.s.err
	}
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.UserID = u.s.id()
	user.RegisteredAt = time.Now()
	u.s.users[user.UserID] = *user
	return nil
}

func (u *Users) TouchLastLogin(_ context.Context, id int64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.err != nil {
		return u.s.err
	}
	user, ok := u.s.users[id]
	if !ok {
		return nil
	}
	now := time.Now()
	user.LastLoggedIn = &now
	u.s.users[id] = user
	return nil
}
