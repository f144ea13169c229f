package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/participa-df/ouvidoria-service/internal/api/http/handlers"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/config"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/observability"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	"github.com/participa-df/ouvidoria-service/internal/service"
	"github.com/participa-df/ouvidoria-service/internal/storage"
)

// Fixed fixtures served by the fake repositories below.
var (
	fixtureOwnerID   = "11111111-1111-1111-1111-111111111111"
	fixtureProtocol  = "OUVIDORIA-20260830-AB12CD"
	fixtureComplaint = domain.Complaint{
		ID:             "22222222-2222-2222-2222-222222222222",
		Protocol:       fixtureProtocol,
		Narrative:      "Poste quebrado",
		Classification: domain.ClassificationComplaint,
		Status:         domain.StatusInProgress,
		SubjectID:      "33333333-3333-3333-3333-333333333333",
		UserID:         &fixtureOwnerID,
		CreatedAt:      time.Now().Add(-48 * time.Hour),
	}
)

type fakeUserRepo struct{ users map[string]*domain.User }

func (r *fakeUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *fakeUserRepo) Update(context.Context, *domain.User) error { return nil }
func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) GetByCPF(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeUserRepo) TouchLastLogin(context.Context, string, time.Time) error { return nil }
func (r *fakeUserRepo) TouchNotificationsSeen(_ context.Context, id string, at time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.NotificationsSeenAt = &at
	return nil
}

type fakeComplaintRepo struct{}

func (r *fakeComplaintRepo) CreateWithProtocol(context.Context, *domain.Complaint, *domain.ProtocolEntry) error {
	return nil
}
func (r *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	if id == fixtureComplaint.ID {
		clone := fixtureComplaint
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *fakeComplaintRepo) GetByProtocol(_ context.Context, protocol string) (*domain.Complaint, error) {
	if protocol == fixtureProtocol {
		clone := fixtureComplaint
		return &clone, nil
	}
	return nil, nil
}
func (r *fakeComplaintRepo) List(context.Context, int, int, *string) ([]domain.Complaint, int, error) {
	return []domain.Complaint{fixtureComplaint}, 1, nil
}
func (r *fakeComplaintRepo) UpdateStatus(context.Context, string, domain.ComplaintStatus, time.Time) error {
	return nil
}
func (r *fakeComplaintRepo) CountCreatedAfter(context.Context, time.Time) (int, error) {
	return 0, nil
}
func (r *fakeComplaintRepo) ListCreatedAfter(context.Context, time.Time, int) ([]repository.NewComplaintRow, error) {
	return nil, nil
}

type fakeProtocolRepo struct{}

func (r *fakeProtocolRepo) GetByNumber(_ context.Context, number string) (*domain.ProtocolEntry, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeProtocolRepo) Track(_ context.Context, number string) (*repository.TrackingRow, error) {
	if number != fixtureProtocol {
		return nil, pgx.ErrNoRows
	}
	return &repository.TrackingRow{
		Number:        number,
		Status:        fixtureComplaint.Status,
		DailySequence: 1,
		IssuedAt:      fixtureComplaint.CreatedAt,
		ExpiresAt:     fixtureComplaint.CreatedAt.Add(30 * 24 * time.Hour),
	}, nil
}

type fakeMessageRepo struct{ unread []repository.UnreadMessageRow }

func (r *fakeMessageRepo) Create(context.Context, *domain.Message, *domain.ComplaintStatus) error {
	return nil
}
func (r *fakeMessageRepo) ListByComplaint(context.Context, string, bool) ([]domain.Message, error) {
	return nil, nil
}
func (r *fakeMessageRepo) CountUnreadSince(_ context.Context, _ string, since time.Time, _ bool) (int, error) {
	count := 0
	for _, row := range r.unread {
		if row.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}
func (r *fakeMessageRepo) ListUnreadSince(_ context.Context, _ string, since time.Time, _ bool, _ int) ([]repository.UnreadMessageRow, error) {
	var rows []repository.UnreadMessageRow
	for _, row := range r.unread {
		if row.CreatedAt.After(since) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeSubjectRepo struct{}

func (r *fakeSubjectRepo) Create(context.Context, *domain.Subject) error { return nil }
func (r *fakeSubjectRepo) Update(context.Context, *domain.Subject) error { return nil }
func (r *fakeSubjectRepo) Delete(context.Context, string) error          { return nil }
func (r *fakeSubjectRepo) GetByID(context.Context, string) (*domain.Subject, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeSubjectRepo) GetByName(context.Context, string) (*domain.Subject, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeSubjectRepo) List(context.Context, bool) ([]domain.Subject, error) { return nil, nil }
func (r *fakeSubjectRepo) CountComplaints(context.Context, string) (int, error) { return 0, nil }

type fakeResetRepo struct{}

func (r *fakeResetRepo) Create(context.Context, *repository.PasswordResetToken) error { return nil }
func (r *fakeResetRepo) GetByToken(context.Context, string) (*repository.PasswordResetToken, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeResetRepo) MarkUsed(context.Context, string) error { return nil }

type fakeFileStore struct{}

func (s *fakeFileStore) Save(_ context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	return &storage.UploadResult{URL: "/uploads/" + input.FileName, SizeBytes: int64(len(input.Body))}, nil
}

func newRouterTestApp(t *testing.T, users *fakeUserRepo, messages *fakeMessageRepo) *fiber.App {
	t.Helper()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "router-test-secret",
			AccessTokenTTLMinutes:   30,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
		Protocol: config.ProtocolConfig{Prefix: "OUVIDORIA", DeadlineDays: 30},
	}

	complaintRepo := &fakeComplaintRepo{}
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: &fakeResetRepo{},
	})
	subjectService := service.NewSubjectService(&fakeSubjectRepo{}, nil, 0, zap.NewNop())
	complaintService := service.NewComplaintService(cfg, service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		SubjectRepo:   &fakeSubjectRepo{},
		ProtocolRepo:  &fakeProtocolRepo{},
		FileStore:     &fakeFileStore{},
	})
	conversationService := service.NewConversationService(complaintRepo, messages, nil)
	notificationService := service.NewNotificationService(users, messages, complaintRepo)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ouvidoria-service", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService, notificationService),
		Subjects:       handlers.NewSubjectsHandler(subjectService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Protocols:      handlers.NewProtocolsHandler(complaintService),
		Messages:       handlers.NewMessagesHandler(conversationService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app
}

func ownerFixtures() (*fakeUserRepo, *fakeMessageRepo) {
	watermark := time.Now().Add(-time.Hour)
	users := &fakeUserRepo{users: map[string]*domain.User{
		fixtureOwnerID: {
			ID:                  fixtureOwnerID,
			Name:                "Dona",
			Email:               "dona@example.com",
			Active:              true,
			NotificationsSeenAt: &watermark,
		},
	}}
	messages := &fakeMessageRepo{unread: []repository.UnreadMessageRow{
		{ID: "m1", Protocol: fixtureProtocol, Text: "Resposta da ouvidoria", CreatedAt: time.Now().Add(-time.Minute)},
	}}
	return users, messages
}

func TestTrackRouteIsPublic(t *testing.T) {
	users, messages := ownerFixtures()
	app := newRouterTestApp(t, users, messages)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/protocolos/"+fixtureProtocol, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Number string `json:"number"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Data.Number != fixtureProtocol {
		t.Errorf("unexpected number %q", body.Data.Number)
	}
	if body.Data.Status != string(domain.StatusInProgress) {
		t.Errorf("unexpected status %q", body.Data.Status)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/protocolos/OUVIDORIA-20260101-ZZZZZZ", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for unknown protocol, got %d", resp.StatusCode)
	}
}

func TestComplaintRoutesRequireAuth(t *testing.T) {
	users, messages := ownerFixtures()
	app := newRouterTestApp(t, users, messages)

	for _, path := range []string{"/api/manifestacoes", "/api/manifestacoes/" + fixtureProtocol, "/api/notificacoes"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, resp.StatusCode)
		}
	}

	resp, _ := app.Test(httptest.NewRequest("POST", "/api/manifestacoes", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("submission must require a session, got %d", resp.StatusCode)
	}
}

func TestNotificationsFlow(t *testing.T) {
	users, messages := ownerFixtures()
	app := newRouterTestApp(t, users, messages)

	tm := auth.NewTokenManager("router-test-secret", 30)
	token, _, err := tm.GenerateToken(fixtureOwnerID, false)
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	get := func(path string) map[string]json.RawMessage {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		return body
	}

	var summary struct {
		Unread int `json:"unread"`
		Items  []struct {
			Protocol string `json:"protocol"`
			Title    string `json:"title"`
		} `json:"items"`
	}
	if err := json.Unmarshal(get("/api/notificacoes")["data"], &summary); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if summary.Unread != 1 || len(summary.Items) != 1 {
		t.Fatalf("expected 1 unread item, got %+v", summary)
	}
	if summary.Items[0].Protocol != fixtureProtocol {
		t.Errorf("item protocol mismatch: %q", summary.Items[0].Protocol)
	}

	// mark seen, badge resets
	req := httptest.NewRequest("POST", "/api/auth/notificacoes/visto", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("mark seen failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on mark seen, got %d", resp.StatusCode)
	}

	if err := json.Unmarshal(get("/api/notificacoes")["data"], &summary); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if summary.Unread != 0 {
		t.Errorf("expected 0 unread after mark seen, got %d", summary.Unread)
	}
}
