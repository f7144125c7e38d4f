package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"bizgifts-bot/internal/model"
	"bizgifts-bot/internal/repository"
	"bizgifts-bot/internal/service"
	"bizgifts-bot/internal/telegram"
)

const operatorID int64 = 1000

// sentMessage is one message captured by the fake sender.
type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeSender records outbound messages instead of calling the platform.
type fakeSender struct {
	sent []sentMessage
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (s *fakeSender) lastTo(chatID int64) string {
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].ChatID == chatID {
			return s.sent[i].Text
		}
	}
	return ""
}

// fakeGateway records asset calls and returns scripted results.
type fakeGateway struct {
	gifts       []model.OwnedGift
	listErr     error
	balance     int64
	convertErrs map[string]error

	calls int // total gateway invocations of any kind
}

func (g *fakeGateway) ListOwnedGifts(ctx context.Context, connectionID string) ([]model.OwnedGift, error) {
	g.calls++
	return g.gifts, g.listErr
}

func (g *fakeGateway) StarBalance(ctx context.Context, connectionID string) (int64, error) {
	g.calls++
	return g.balance, nil
}

func (g *fakeGateway) TransferGift(ctx context.Context, connectionID, ownedGiftID string, newOwnerChatID int64) error {
	g.calls++
	return nil
}

func (g *fakeGateway) ConvertGiftToStars(ctx context.Context, connectionID, ownedGiftID string) error {
	g.calls++
	if err, ok := g.convertErrs[ownedGiftID]; ok {
		return err
	}
	return nil
}

// testEnv wires handlers over a real registry (file-backed) and fake edges.
type testEnv struct {
	handlers    *Handlers
	sender      *fakeSender
	gateway     *fakeGateway
	connections *service.ConnectionService
}

func newTestEnv(t *testing.T, gateway *fakeGateway) *testEnv {
	t.Helper()

	repo := repository.NewFileConnectionRepository(filepath.Join(t.TempDir(), "connections.json"))
	connections := service.NewConnectionService(repo, nil)
	assets := service.NewAssetService(gateway, connections)
	gate := service.NewAdminGate(operatorID)
	sender := &fakeSender{}

	return &testEnv{
		handlers:    NewHandlers(sender, connections, assets, gate),
		sender:      sender,
		gateway:     gateway,
		connections: connections,
	}
}

// connect seeds the registry with a connection for userID.
func (e *testEnv) connect(t *testing.T, userID int64, connectionID string) {
	t.Helper()
	err := e.connections.Record(context.Background(), model.ConnectionRecord{
		UserID:       userID,
		ConnectionID: connectionID,
	})
	if err != nil {
		t.Fatalf("seed connection: %v", err)
	}
}

func message(userID int64, text string) *telegram.Message {
	return &telegram.Message{
		From: &telegram.User{ID: userID},
		Chat: telegram.Chat{ID: userID},
		Text: text,
	}
}

func TestGiftsNoneOwned(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/gifts"))

	if got := env.sender.lastTo(1); got != msgNoGifts {
		t.Fatalf("reply = %q, want %q", got, msgNoGifts)
	}
}

func TestGiftsListsOwnedGift(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{
		gifts: []model.OwnedGift{{OwnedID: "g1", Name: "Desk Calendar"}},
	})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/gifts"))

	got := env.sender.lastTo(1)
	if !strings.Contains(got, "g1") || !strings.Contains(got, "Desk Calendar") {
		t.Fatalf("reply = %q, want gift g1 / Desk Calendar listed", got)
	}
}

func TestGiftsNotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})

	env.handlers.HandleMessage(context.Background(), message(1, "/gifts"))

	if got := env.sender.lastTo(1); got != msgNotConnected {
		t.Fatalf("reply = %q, want %q", got, msgNotConnected)
	}
	if env.gateway.calls != 0 {
		t.Fatalf("gateway calls = %d, want 0", env.gateway.calls)
	}
}

func TestStarsReportsBalance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{balance: 125})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/stars"))

	if got := env.sender.lastTo(1); !strings.Contains(got, "125") {
		t.Fatalf("reply = %q, want balance 125", got)
	}
}

func TestTransferDeniedForNonOperator(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/transfer g1 555"))

	if got := env.sender.lastTo(1); got != msgOperatorOnly {
		t.Fatalf("reply = %q, want %q", got, msgOperatorOnly)
	}
	if env.gateway.calls != 0 {
		t.Fatalf("gateway calls = %d, want 0", env.gateway.calls)
	}
}

func TestTransferRejectsNonIntegerChatID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, operatorID, "op-conn")

	env.handlers.HandleMessage(context.Background(), message(operatorID, "/transfer g1 not-a-number"))

	if got := env.sender.lastTo(operatorID); got != msgChatIDInvalid {
		t.Fatalf("reply = %q, want %q", got, msgChatIDInvalid)
	}
	if env.gateway.calls != 0 {
		t.Fatalf("gateway calls = %d, want 0", env.gateway.calls)
	}
}

func TestTransferUsageOnWrongArgCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})

	env.handlers.HandleMessage(context.Background(), message(operatorID, "/transfer g1"))

	if got := env.sender.lastTo(operatorID); got != msgTransferUsage {
		t.Fatalf("reply = %q, want %q", got, msgTransferUsage)
	}
	if env.gateway.calls != 0 {
		t.Fatalf("gateway calls = %d, want 0", env.gateway.calls)
	}
}

func TestTransferSucceeds(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, operatorID, "op-conn")

	env.handlers.HandleMessage(context.Background(), message(operatorID, "/transfer g1 555"))

	got := env.sender.lastTo(operatorID)
	if !strings.Contains(got, "g1") || !strings.Contains(got, "555") {
		t.Fatalf("reply = %q, want transfer confirmation", got)
	}
	if env.gateway.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", env.gateway.calls)
	}
}

func TestConvertReportsPartialSuccess(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{
		gifts: []model.OwnedGift{{OwnedID: "g1"}, {OwnedID: "g2"}, {OwnedID: "g3"}},
		convertErrs: map[string]error{
			"g2": &telegram.APIError{Method: "convertGiftToStars", Code: 400, Description: "refused"},
		},
	})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/convert"))

	if got := env.sender.lastTo(1); !strings.Contains(got, "converted 2 gift(s)") {
		t.Fatalf("reply = %q, want 2 conversions reported", got)
	}
}

func TestConvertDistinguishesEmptyFromAllFailed(t *testing.T) {
	t.Parallel()

	// Account owns nothing.
	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")
	env.handlers.HandleMessage(context.Background(), message(1, "/convert"))
	if got := env.sender.lastTo(1); got != msgNothingConvert {
		t.Fatalf("empty reply = %q, want %q", got, msgNothingConvert)
	}

	// Account owns gifts but every attempt fails.
	failing := newTestEnv(t, &fakeGateway{
		gifts: []model.OwnedGift{{OwnedID: "g1"}},
		convertErrs: map[string]error{
			"g1": errors.New("transport failure"),
		},
	})
	failing.connect(t, 1, "abc")
	failing.handlers.HandleMessage(context.Background(), message(1, "/convert"))
	got := failing.sender.lastTo(1)
	if got == msgNothingConvert || !strings.Contains(got, "No gifts were converted") {
		t.Fatalf("all-failed reply = %q, want distinct zero-converted message", got)
	}
}

func TestClearConnectionsDeniedForNonOperator(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")

	env.handlers.HandleMessage(context.Background(), message(1, "/clear_connections"))

	if got := env.sender.lastTo(1); got != msgOperatorOnly {
		t.Fatalf("reply = %q, want %q", got, msgOperatorOnly)
	}

	// Registry unchanged.
	count, err := env.connections.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestClearConnectionsByOperator(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")
	env.connect(t, 2, "def")

	env.handlers.HandleMessage(context.Background(), message(operatorID, "/clear_connections"))

	if got := env.sender.lastTo(operatorID); got != msgCleared {
		t.Fatalf("reply = %q, want %q", got, msgCleared)
	}

	count, err := env.connections.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestStartShowsConnectionCountToOperator(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})
	env.connect(t, 1, "abc")
	env.connect(t, 2, "def")

	env.handlers.HandleMessage(context.Background(), message(operatorID, "/start"))

	got := env.sender.lastTo(operatorID)
	if !strings.Contains(got, "Connections: 2") {
		t.Fatalf("reply = %q, want connection count 2", got)
	}
	if !strings.Contains(got, "/clear_connections") {
		t.Fatalf("reply = %q, want command reference", got)
	}
}

func TestStartWelcomesUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})

	env.handlers.HandleMessage(context.Background(), message(1, "/start"))

	if got := env.sender.lastTo(1); got != msgWelcome {
		t.Fatalf("reply = %q, want welcome text", got)
	}
}

func TestBusinessConnectionRecordedAndAnnounced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})

	env.handlers.HandleBusinessConnection(context.Background(), &telegram.BusinessConnection{
		ID:   "conn-7",
		User: telegram.User{ID: 7, Username: "alice"},
	})

	got, err := env.connections.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve after connect: %v", err)
	}
	if got != "conn-7" {
		t.Fatalf("connection_id = %q, want conn-7", got)
	}

	if op := env.sender.lastTo(operatorID); !strings.Contains(op, "#7") {
		t.Fatalf("operator notification = %q, want user #7 mentioned", op)
	}
	if user := env.sender.lastTo(7); user != msgConnected {
		t.Fatalf("user confirmation = %q, want %q", user, msgConnected)
	}
}

func TestUnknownCommandGetsUsage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeGateway{})

	env.handlers.HandleMessage(context.Background(), message(1, "/bogus"))

	if got := env.sender.lastTo(1); !strings.Contains(got, "Unknown command") {
		t.Fatalf("reply = %q, want unknown-command usage", got)
	}

	// Plain text is ignored entirely.
	before := len(env.sender.sent)
	env.handlers.HandleMessage(context.Background(), message(1, "hello there"))
	if len(env.sender.sent) != before {
		t.Fatalf("plain text produced %d replies", len(env.sender.sent)-before)
	}
}
