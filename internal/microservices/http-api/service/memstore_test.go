package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"booklease/internal/events"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// memStore is an in-memory RepositoryFactory and TransactionManager.
// Transactions are serialized and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *memData

	failPaymentCreate error
	txCount           int
}

type memData struct {
	seq      int64
	users    map[int64]models.User
	books    map[int64]models.Book
	rentals  map[int64]models.Rental
	payments []models.Payment
	reviews  []models.Review
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		users:   map[int64]models.User{},
		books:   map[int64]models.Book{},
		rentals: map[int64]models.Rental{},
	}}
}

func (d *memData) clone() *memData {
	cp := &memData{
		seq:      d.seq,
		users:    make(map[int64]models.User, len(d.users)),
		books:    make(map[int64]models.Book, len(d.books)),
		rentals:  make(map[int64]models.Rental, len(d.rentals)),
		payments: append([]models.Payment(nil), d.payments...),
		reviews:  append([]models.Review(nil), d.reviews...),
	}
	for k, v := range d.users {
		cp.users[k] = v
	}
	for k, v := range d.books {
		cp.books[k] = v
	}
	for k, v := range d.rentals {
		cp.rentals[k] = v
	}
	return cp
}

func (d *memData) nextID() int64 {
	d.seq++
	return d.seq
}

func (s *memStore) Execute(ctx context.Context, fn func(repos repository.RepositoryFactory) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	snapshot := s.data.clone()
	s.mu.Unlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err := fn(s); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *memStore) Books() repository.BookRepository       { return memBooks{s} }
func (s *memStore) Rentals() repository.RentalRepository   { return memRentals{s} }
func (s *memStore) Payments() repository.PaymentRepository { return memPayments{s} }
func (s *memStore) Reviews() repository.ReviewRepository   { return memReviews{s} }
func (s *memStore) Users() repository.UserRepository       { return memUsers{s} }

// test helpers

func (s *memStore) addBook(b models.Book) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.data.nextID()
	s.data.books[b.ID] = b
	return b
}

func (s *memStore) addUser(email, fullName string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: s.data.nextID(), Email: email, FullName: fullName}
	s.data.users[u.ID] = u
	return u
}

func (s *memStore) addRental(r models.Rental) models.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.data.nextID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.RentalStart
	}
	s.data.rentals[r.ID] = r
	return r
}

func (s *memStore) book(id int64) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.books[id]
}

func (s *memStore) setBookPrices(id int64, p7, p14, p30 float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.data.books[id]
	b.RentalPrice7Days, b.RentalPrice14Days, b.RentalPrice30Days = p7, p14, p30
	s.data.books[id] = b
}

func (s *memStore) rental(id int64) models.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.rentals[id]
}

func (s *memStore) counts() (rentals, payments, reviews int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.rentals), len(s.data.payments), len(s.data.reviews)
}

func (s *memStore) paymentsFor(rentalID int64) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.data.payments {
		if p.RentalID == rentalID {
			out = append(out, p)
		}
	}
	return out
}

// books

type memBooks struct{ s *memStore }

func (r memBooks) Create(ctx context.Context, book *models.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	book.ID = r.s.data.nextID()
	r.s.data.books[book.ID] = *book
	return nil
}

func (r memBooks) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBooks) GetByIDForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	return r.GetByID(ctx, id)
}

func (r memBooks) all() []models.Book {
	out := make([]models.Book, 0, len(r.s.data.books))
	for _, b := range r.s.data.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memBooks) List(ctx context.Context, f repository.BookFilter) ([]models.Book, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Book
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, b := range r.all() {
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(b.Title), search) && !strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		matched = append(matched, b)
	}

	less := map[string]func(a, b models.Book) bool{
		repository.SortRating:    func(a, b models.Book) bool { return a.Rating > b.Rating },
		repository.SortPriceLow:  func(a, b models.Book) bool { return a.RentalPrice7Days < b.RentalPrice7Days },
		repository.SortPriceHigh: func(a, b models.Book) bool { return a.RentalPrice7Days > b.RentalPrice7Days },
		repository.SortNewest:    func(a, b models.Book) bool { return a.CreatedAt.After(b.CreatedAt) },
	}[f.Sort]
	if less == nil {
		less = func(a, b models.Book) bool { return a.TotalRentals > b.TotalRentals }
	}
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r memBooks) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, b := range r.s.data.books {
		counts[b.Category]++
	}
	out := make([]repository.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, repository.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r memBooks) Popular(ctx context.Context, limit int) ([]models.Book, error) {
	list, _, err := r.List(ctx, repository.BookFilter{Sort: repository.SortPopular, Page: 1, Limit: limit})
	return list, err
}

func (r memBooks) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.data.books)), nil
}

func (r memBooks) IncrementTotalRentals(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.TotalRentals++
	r.s.data.books[id] = b
	return nil
}

func (r memBooks) UpdateRating(ctx context.Context, id int64, rating float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.s.data.books[id]
	b.Rating = rating
	r.s.data.books[id] = b
	return nil
}

// rentals

type memRentals struct{ s *memStore }

func (r memRentals) Create(ctx context.Context, rental *models.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental.ID = r.s.data.nextID()
	if rental.CreatedAt.IsZero() {
		rental.CreatedAt = rental.RentalStart
	}
	r.s.data.rentals[rental.ID] = *rental
	return nil
}

func (r memRentals) GetOwned(ctx context.Context, rentalID, userID int64) (*models.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental, ok := r.s.data.rentals[rentalID]
	if !ok || rental.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &rental, nil
}

func (r memRentals) GetOwnedForUpdate(ctx context.Context, rentalID, userID int64) (*models.Rental, error) {
	return r.GetOwned(ctx, rentalID, userID)
}

func (r memRentals) ApplyExtension(ctx context.Context, rentalID int64, ext repository.Extension) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rental, ok := r.s.data.rentals[rentalID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rental.RentalEnd = ext.NewEnd
	rental.RentalDays += ext.ExtendDays
	rental.PricePaid += ext.Price
	rental.Status = models.RentalStatusExtended
	rental.ExtensionCount++
	r.s.data.rentals[rentalID] = rental
	return nil
}

func (r memRentals) detail(rental models.Rental) repository.RentalDetail {
	b := r.s.data.books[rental.BookID]
	return repository.RentalDetail{
		RentalID:       rental.ID,
		UserID:         rental.UserID,
		BookID:         rental.BookID,
		RentalStart:    rental.RentalStart,
		RentalEnd:      rental.RentalEnd,
		RentalDays:     rental.RentalDays,
		PricePaid:      rental.PricePaid,
		Status:         rental.Status,
		ExtensionCount: rental.ExtensionCount,
		CreatedAt:      rental.CreatedAt,
		Title:          b.Title,
		Author:         b.Author,
		CoverImage:     b.CoverImage,
		Category:       b.Category,
	}
}

func isLive(rental models.Rental, since time.Time) bool {
	return (rental.Status == models.RentalStatusActive || rental.Status == models.RentalStatusExtended) &&
		!rental.RentalEnd.Before(since)
}

func (r memRentals) ListActive(ctx context.Context, userID int64, since time.Time) ([]repository.RentalDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []repository.RentalDetail{}
	for _, rental := range r.s.data.rentals {
		if rental.UserID == userID && isLive(rental, since) {
			out = append(out, r.detail(rental))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RentalEnd.Before(out[j].RentalEnd) })
	return out, nil
}

func (r memRentals) ListByUser(ctx context.Context, userID int64, page, limit int) ([]repository.RentalDetail, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []repository.RentalDetail{}
	for _, rental := range r.s.data.rentals {
		if rental.UserID == userID {
			all = append(all, r.detail(rental))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].RentalID > all[j].RentalID
	})
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r memRentals) Stats(ctx context.Context, userID int64, since time.Time) (*repository.RentalStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &repository.RentalStats{}
	for _, rental := range r.s.data.rentals {
		if rental.UserID != userID {
			continue
		}
		stats.TotalRentals++
		stats.TotalSpent += rental.PricePaid
		if isLive(rental, since) {
			stats.ActiveRentals++
		}
	}
	return stats, nil
}

// payments

type memPayments struct{ s *memStore }

func (r memPayments) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failPaymentCreate != nil {
		return r.s.failPaymentCreate
	}
	payment.ID = r.s.data.nextID()
	r.s.data.payments = append(r.s.data.payments, *payment)
	return nil
}

func (r memPayments) ListByRental(ctx context.Context, rentalID int64) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Payment{}
	for _, p := range r.s.data.payments {
		if p.RentalID == rentalID {
			out = append(out, p)
		}
	}
	return out, nil
}

// reviews

type memReviews struct{ s *memStore }

func (r memReviews) Create(ctx context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.reviews {
		if existing.UserID == review.UserID && existing.BookID == review.BookID {
			return gorm.ErrDuplicatedKey
		}
	}
	review.ID = r.s.data.nextID()
	r.s.data.reviews = append(r.s.data.reviews, *review)
	return nil
}

func (r memReviews) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum, n := 0, 0
	for _, rv := range r.s.data.reviews {
		if rv.BookID == bookID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (r memReviews) ListByBook(ctx context.Context, bookID int64) ([]repository.ReviewDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []repository.ReviewDetail{}
	for i := len(r.s.data.reviews) - 1; i >= 0; i-- {
		rv := r.s.data.reviews[i]
		if rv.BookID != bookID {
			continue
		}
		out = append(out, repository.ReviewDetail{
			ReviewID:  rv.ID,
			UserID:    rv.UserID,
			BookID:    rv.BookID,
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
			FullName:  r.s.data.users[rv.UserID].FullName,
		})
	}
	return out, nil
}

// users

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.data.nextID()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RentalEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.RentalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.RentalEvent(nil), p.events...)
}

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
	cleared []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, prefix)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}
