package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/config"
	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/repository"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a DomainError", err)
	}
	if de.HTTPStatus != status {
		t.Fatalf("status = %d, want %d (%v)", de.HTTPStatus, status, err)
	}
}

var admin = Actor{UserID: "admin-1", Role: domain.RoleAdmin}

func TestUserService_Create(t *testing.T) {
	store := repository.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	svc := NewUserService(store.Users(), dispatcher, 4)
	ctx := context.Background()

	user, err := svc.Create(ctx, admin, UserCreateInput{
		Name:     " Ada ",
		Email:    "ada@example.com",
		Phone:    "(555) 123-4567",
		Role:     domain.RoleSupport,
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Phone != "+15551234567" {
		t.Errorf("Phone = %q, want E.164", user.Phone)
	}
	if user.Name != "Ada" || user.ID == "" || !user.Active {
		t.Errorf("user = %+v", user)
	}
	if err := auth.ComparePassword(user.PasswordHash, "pw"); err != nil {
		t.Errorf("password not hashed correctly: %v", err)
	}
	if got := dispatcher.types(); len(got) != 1 || got[0] != events.EventUserCreated {
		t.Errorf("events = %v", got)
	}

	_, err = svc.Create(ctx, admin, UserCreateInput{Name: "Dup", Email: "ADA@example.com", Role: domain.RoleAdmin, Password: "pw"})
	wantStatus(t, err, http.StatusConflict)
}

func TestUserService_CreateValidation(t *testing.T) {
	svc := NewUserService(repository.NewMemoryStore().Users(), nil, 4)

	tests := map[string]UserCreateInput{
		"missing name":  {Email: "a@b.co", Role: domain.RoleAdmin, Password: "pw"},
		"bad email":     {Name: "A", Email: "nope", Role: domain.RoleAdmin, Password: "pw"},
		"no password":   {Name: "A", Email: "a@b.co", Role: domain.RoleAdmin},
		"unknown role":  {Name: "A", Email: "a@b.co", Role: "owner", Password: "pw"},
		"short phone":   {Name: "A", Email: "a@b.co", Role: domain.RoleAdmin, Password: "pw", Phone: "555-1234"},
		"letters phone": {Name: "A", Email: "a@b.co", Role: domain.RoleAdmin, Password: "pw", Phone: "call me"},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), admin, input)
			wantStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestUserService_ListAndDelete(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewUserService(store.Users(), nil, 4)
	ctx := context.Background()

	user, err := svc.Create(ctx, admin, UserCreateInput{Name: "A", Email: "a@b.co", Role: domain.RoleAdmin, Password: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	users, err := svc.List(ctx, 0, -5)
	if err != nil || len(users) != 1 {
		t.Fatalf("List = %v, %v", users, err)
	}

	wantStatus(t, svc.Delete(ctx, Actor{UserID: user.ID}, user.ID), http.StatusConflict)
	if err := svc.Delete(ctx, admin, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantStatus(t, svc.Delete(ctx, admin, user.ID), http.StatusNotFound)
	wantStatus(t, svc.Delete(ctx, admin, "not-a-uuid"), http.StatusNotFound)
}

// staleEmailLookup misses on every email lookup, so a duplicate is only
// caught when the store rejects the insert.
type staleEmailLookup struct {
	repository.UserRepository
}

func (staleEmailLookup) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	input := UserCreateInput{Name: "A", Email: "dup@example.com", Role: domain.RoleSupport, Password: "pw"}

	svc := NewUserService(store.Users(), nil, 4)
	if _, err := svc.Create(ctx, admin, input); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, admin, input)
	wantStatus(t, err, http.StatusConflict)

	racing := NewUserService(staleEmailLookup{store.Users()}, nil, 4)
	input.Email = "DUP@example.com"
	_, err = racing.Create(ctx, admin, input)
	wantStatus(t, err, http.StatusConflict)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc := NewUserService(repository.NewMemoryStore().Users(), nil, 4)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "pw")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin first = %v, %v", created, err)
	}
	created, err = svc.EnsureAdmin(ctx, "root@example.com", "pw")
	if err != nil || created {
		t.Fatalf("EnsureAdmin second = %v, %v", created, err)
	}
}

func TestAuthService_Login(t *testing.T) {
	store := repository.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	users := NewUserService(store.Users(), nil, 4)
	svc := NewAuthService(config.AuthConfig{JWTSecret: "s", AccessTokenTTLMinutes: 10}, store.Users(), dispatcher)
	ctx := context.Background()

	if _, err := users.Create(ctx, admin, UserCreateInput{Name: "S", Email: "s@example.com", Role: domain.RoleSupport, Password: "pw"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, token, _, err := svc.Login(ctx, "s@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "s@example.com" {
		t.Errorf("user = %+v", user)
	}
	if !auth.IsSupport(token) || auth.IsAdmin(token) || !auth.IsAuthenticated(token) {
		t.Error("login token does not carry the support scope")
	}
	if got := dispatcher.types(); len(got) != 1 || got[0] != events.EventOperatorLoggedIn {
		t.Errorf("events = %v", got)
	}

	_, _, _, err = svc.Login(ctx, "s@example.com", "wrong")
	wantStatus(t, err, http.StatusUnauthorized)
	_, _, _, err = svc.Login(ctx, "ghost@example.com", "pw")
	wantStatus(t, err, http.StatusUnauthorized)
	_, _, _, err = svc.Login(ctx, "", "")
	wantStatus(t, err, http.StatusBadRequest)
}

func TestCampaignService_Create(t *testing.T) {
	store := repository.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	svc := NewCampaignService(store.Campaigns(), dispatcher)
	ctx := context.Background()

	campaign, err := svc.Create(ctx, admin, CampaignCreateInput{Name: "Spring", Keyword: " join "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if campaign.Keyword != "JOIN" || campaign.Status != domain.CampaignStatusDraft || campaign.CreatedBy != admin.UserID {
		t.Errorf("campaign = %+v", campaign)
	}

	_, err = svc.Create(ctx, admin, CampaignCreateInput{Name: "Autumn", Keyword: "Join"})
	wantStatus(t, err, http.StatusConflict)

	_, err = svc.Create(ctx, admin, CampaignCreateInput{Name: "x"})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Create(ctx, admin, CampaignCreateInput{Name: "x", Keyword: "two words"})
	wantStatus(t, err, http.StatusBadRequest)

	list, err := svc.List(ctx, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if got := dispatcher.types(); len(got) != 1 || got[0] != events.EventCampaignCreated {
		t.Errorf("events = %v", got)
	}
}

func TestProviderService_Flow(t *testing.T) {
	store := repository.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	svc := NewProviderService(store.ProviderSettings(), store.ProviderStatus(), dispatcher)
	ctx := context.Background()

	status, err := svc.Status(ctx, domain.ProviderSMTP)
	if err != nil || status.Configured || status.Tested {
		t.Fatalf("initial status = %+v, %v", status, err)
	}

	_, err = svc.MarkTested(ctx, admin, domain.ProviderSMTP)
	wantStatus(t, err, http.StatusConflict)

	_, err = svc.SaveCredentials(ctx, admin, domain.ProviderSMTP, map[string]string{" ": "x"})
	wantStatus(t, err, http.StatusBadRequest)

	status, err = svc.SaveCredentials(ctx, admin, domain.ProviderSMTP, map[string]string{"host": "smtp.example.com", "password": "p"})
	if err != nil || !status.Configured || status.Tested {
		t.Fatalf("after save = %+v, %v", status, err)
	}

	status, err = svc.MarkTested(ctx, admin, domain.ProviderSMTP)
	if err != nil || !status.Tested {
		t.Fatalf("after test = %+v, %v", status, err)
	}

	status, err = svc.SaveCredentials(ctx, admin, domain.ProviderSMTP, map[string]string{"host": "smtp2.example.com"})
	if err != nil || status.Tested {
		t.Fatalf("saving again should clear tested: %+v, %v", status, err)
	}

	_, err = svc.Status(ctx, domain.Provider("fax"))
	wantStatus(t, err, http.StatusNotFound)

	want := []events.EventType{events.EventProviderConfigured, events.EventProviderTested, events.EventProviderConfigured}
	got := dispatcher.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
