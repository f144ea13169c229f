package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	"github.com/participa-df/ouvidoria-service/internal/storage"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByCPF(_ context.Context, cpf string) (*domain.User, error) {
	for _, user := range r.users {
		if user.CPF != nil && *user.CPF == cpf {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	return nil
}

func (r *stubUserRepo) TouchNotificationsSeen(_ context.Context, id string, at time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.NotificationsSeenAt = &at
	return nil
}

type stubSubjectRepo struct {
	subjects   map[string]*domain.Subject
	complaints map[string]int
}

func newStubSubjectRepo() *stubSubjectRepo {
	return &stubSubjectRepo{subjects: make(map[string]*domain.Subject), complaints: make(map[string]int)}
}

func (r *stubSubjectRepo) Create(_ context.Context, subject *domain.Subject) error {
	subject.CreatedAt = time.Now()
	subject.UpdatedAt = subject.CreatedAt
	clone := *subject
	r.subjects[subject.ID] = &clone
	return nil
}

func (r *stubSubjectRepo) Update(_ context.Context, subject *domain.Subject) error {
	if _, ok := r.subjects[subject.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *subject
	r.subjects[subject.ID] = &clone
	return nil
}

func (r *stubSubjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.subjects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.subjects, id)
	return nil
}

func (r *stubSubjectRepo) GetByID(_ context.Context, id string) (*domain.Subject, error) {
	if subject, ok := r.subjects[id]; ok {
		clone := *subject
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubSubjectRepo) GetByName(_ context.Context, name string) (*domain.Subject, error) {
	for _, subject := range r.subjects {
		if subject.Name == name {
			clone := *subject
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubSubjectRepo) List(_ context.Context, activeOnly bool) ([]domain.Subject, error) {
	var result []domain.Subject
	for _, subject := range r.subjects {
		if activeOnly && !subject.Active {
			continue
		}
		result = append(result, *subject)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *stubSubjectRepo) CountComplaints(_ context.Context, id string) (int, error) {
	return r.complaints[id], nil
}

type stubComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*domain.Complaint
	entries    map[string]*domain.ProtocolEntry
	createErr  error
}

func newStubComplaintRepo() *stubComplaintRepo {
	return &stubComplaintRepo{
		complaints: make(map[string]*domain.Complaint),
		entries:    make(map[string]*domain.ProtocolEntry),
	}
}

func (r *stubComplaintRepo) CreateWithProtocol(_ context.Context, complaint *domain.Complaint, entry *domain.ProtocolEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seq := 1
	day := entry.IssuedAt.UTC().Format("20060102")
	for _, existing := range r.entries {
		if existing.IssuedAt.UTC().Format("20060102") == day {
			seq++
		}
	}
	entry.DailySequence = seq

	complaintClone := *complaint
	entryClone := *entry
	r.complaints[complaint.ID] = &complaintClone
	r.entries[entry.Number] = &entryClone
	return nil
}

func (r *stubComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	if complaint, ok := r.complaints[id]; ok {
		clone := *complaint
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubComplaintRepo) GetByProtocol(_ context.Context, protocol string) (*domain.Complaint, error) {
	for _, complaint := range r.complaints {
		if complaint.Protocol == protocol {
			clone := *complaint
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubComplaintRepo) List(_ context.Context, skip, limit int, ownerID *string) ([]domain.Complaint, int, error) {
	var all []domain.Complaint
	for _, complaint := range r.complaints {
		if ownerID != nil && (complaint.UserID == nil || *complaint.UserID != *ownerID) {
			continue
		}
		all = append(all, *complaint)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if skip >= len(all) {
		return nil, total, nil
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *stubComplaintRepo) UpdateStatus(_ context.Context, id string, status domain.ComplaintStatus, at time.Time) error {
	complaint, ok := r.complaints[id]
	if !ok {
		return pgx.ErrNoRows
	}
	complaint.Status = status
	complaint.UpdatedAt = &at
	if status.IsTerminal() {
		complaint.CompletedAt = &at
	}
	return nil
}

func (r *stubComplaintRepo) CountCreatedAfter(_ context.Context, after time.Time) (int, error) {
	count := 0
	for _, complaint := range r.complaints {
		if complaint.CreatedAt.After(after) {
			count++
		}
	}
	return count, nil
}

func (r *stubComplaintRepo) ListCreatedAfter(_ context.Context, after time.Time, limit int) ([]repository.NewComplaintRow, error) {
	var rows []repository.NewComplaintRow
	for _, complaint := range r.complaints {
		if !complaint.CreatedAt.After(after) {
			continue
		}
		name := ""
		if complaint.Subject != nil {
			name = complaint.Subject.Name
		}
		rows = append(rows, repository.NewComplaintRow{
			ID:          complaint.ID,
			Protocol:    complaint.Protocol,
			SubjectName: name,
			CreatedAt:   complaint.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

type stubMessageRepo struct {
	messages   []domain.Message
	complaints *stubComplaintRepo
}

func newStubMessageRepo(complaints *stubComplaintRepo) *stubMessageRepo {
	return &stubMessageRepo{complaints: complaints}
}

func (r *stubMessageRepo) Create(ctx context.Context, msg *domain.Message, statusChange *domain.ComplaintStatus) error {
	r.messages = append(r.messages, *msg)
	if statusChange != nil && r.complaints != nil {
		return r.complaints.UpdateStatus(ctx, msg.ComplaintID, *statusChange, msg.CreatedAt)
	}
	return nil
}

func (r *stubMessageRepo) ListByComplaint(_ context.Context, complaintID string, includeInternal bool) ([]domain.Message, error) {
	var result []domain.Message
	for _, msg := range r.messages {
		if msg.ComplaintID != complaintID {
			continue
		}
		if msg.Internal && !includeInternal {
			continue
		}
		result = append(result, msg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *stubMessageRepo) CountUnreadSince(ctx context.Context, userID string, since time.Time, admin bool) (int, error) {
	rows, err := r.ListUnreadSince(ctx, userID, since, admin, 0)
	return len(rows), err
}

func (r *stubMessageRepo) ListUnreadSince(_ context.Context, userID string, since time.Time, admin bool, limit int) ([]repository.UnreadMessageRow, error) {
	var rows []repository.UnreadMessageRow
	for _, msg := range r.messages {
		if !msg.CreatedAt.After(since) || msg.AuthorID == userID {
			continue
		}
		complaint := r.complaints.complaints[msg.ComplaintID]
		if complaint == nil {
			continue
		}
		if !admin {
			if complaint.UserID == nil || *complaint.UserID != userID || msg.Internal {
				continue
			}
		}
		rows = append(rows, repository.UnreadMessageRow{
			ID:        msg.ID,
			Protocol:  complaint.Protocol,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

type stubProtocolRepo struct {
	complaints *stubComplaintRepo
}

func (r *stubProtocolRepo) GetByNumber(_ context.Context, number string) (*domain.ProtocolEntry, error) {
	if entry, ok := r.complaints.entries[number]; ok {
		clone := *entry
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubProtocolRepo) Track(_ context.Context, number string) (*repository.TrackingRow, error) {
	entry, ok := r.complaints.entries[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	complaint := r.complaints.complaints[entry.ComplaintID]
	if complaint == nil {
		return nil, pgx.ErrNoRows
	}
	return &repository.TrackingRow{
		Number:        entry.Number,
		Status:        complaint.Status,
		DailySequence: entry.DailySequence,
		IssuedAt:      entry.IssuedAt,
		ExpiresAt:     entry.ExpiresAt,
		UpdatedAt:     complaint.UpdatedAt,
		CompletedAt:   complaint.CompletedAt,
	}, nil
}

type stubFileStore struct {
	saved []storage.UploadInput
	err   error
}

func (s *stubFileStore) Save(_ context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved = append(s.saved, input)
	return &storage.UploadResult{
		URL:       "/uploads/" + input.FileName,
		SizeBytes: int64(len(input.Body)),
	}, nil
}

type stubResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func newStubResetRepo() *stubResetRepo {
	return &stubResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *stubResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *stubResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	if token, ok := r.tokens[tokenStr]; ok {
		clone := *token
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubResetRepo) MarkUsed(_ context.Context, id string) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}
