package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

func TestEndToEndChatAndMessages(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u-bob", "Bob", "200")
	f.signUp(t, "ann", "100")

	state := f.svc.Snapshot()
	if !state.SignedIn || state.Profile == nil || state.Profile.Number != "100" {
		t.Fatalf("expected signed-in profile with number 100, got %+v", state)
	}

	if err := f.svc.AddChat(ctx, "200"); err != nil {
		t.Fatalf("add chat: %v", err)
	}
	if err := f.svc.AddChat(ctx, "200"); !errors.Is(err, domain.ErrDuplicateChat) {
		t.Fatalf("expected ErrDuplicateChat on retry, got %v", err)
	}
	if f.repos.Chats.Size() != 1 {
		t.Fatalf("expected exactly one stored chat, got %d", f.repos.Chats.Size())
	}
	if msg := f.svc.ConsumeNotification(); msg != domain.ErrDuplicateChat.Error() {
		t.Fatalf("expected duplicate notification, got %q", msg)
	}
	if msg := f.svc.ConsumeNotification(); msg != "" {
		t.Fatalf("expected notification to be consumed once, got %q", msg)
	}

	state = f.svc.Snapshot()
	if len(state.Chats) != 1 || state.Chats[0].Partner.UserID != "u-bob" {
		t.Fatalf("expected one chat with bob, got %+v", state.Chats)
	}
	chatID := state.Chats[0].Chat.ChatID

	if err := f.svc.OpenChat(ctx, chatID); err != nil {
		t.Fatalf("open chat: %v", err)
	}
	for _, text := range []string{"one", "two", "three"} {
		f.clock.Advance(time.Second)
		if err := f.svc.SendMessage(ctx, chatID, text); err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
	}

	state = f.svc.Snapshot()
	if state.InProcess {
		t.Fatalf("expected InProcess to be cleared")
	}
	if state.MessagesLoading {
		t.Fatalf("expected messages to be loaded")
	}
	if len(state.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(state.Messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if state.Messages[i].Text != want || state.Messages[i].SenderID != "u-ann@example.com" {
			t.Fatalf("message %d: unexpected %+v", i, state.Messages[i])
		}
	}
}

func TestAddChatRejectsExistingPairInEitherOrder(t *testing.T) {
	t.Parallel()

	for _, reversed := range []bool{false, true} {
		f := newFixture(t)
		ctx := context.Background()
		bob := f.seedProfile(t, "u-bob", "Bob", "555")
		f.signUp(t, "ann", "100")
		ann := f.svc.Snapshot().Profile

		p1, p2 := ann.Participant(), bob.Participant()
		if reversed {
			p1, p2 = p2, p1
		}
		if err := f.repos.Chats.Create(ctx, domain.Chat{ChatID: "existing", Participant1: p1, Participant2: p2}); err != nil {
			t.Fatalf("seed chat: %v", err)
		}

		if err := f.svc.AddChat(ctx, "555"); !errors.Is(err, domain.ErrDuplicateChat) {
			t.Fatalf("reversed=%v: expected ErrDuplicateChat, got %v", reversed, err)
		}
		if f.repos.Chats.Size() != 1 {
			t.Fatalf("reversed=%v: expected no write, got %d chats", reversed, f.repos.Chats.Size())
		}
	}
}

func TestAddChatValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "ann", "100")

	if err := f.svc.AddChat(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty number, got %v", err)
	}
	if err := f.svc.AddChat(ctx, "55a"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-digit number, got %v", err)
	}
	if err := f.svc.AddChat(ctx, "100"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for own number, got %v", err)
	}
	if err := f.svc.AddChat(ctx, "999"); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
	if f.repos.Chats.Size() != 0 {
		t.Fatalf("expected no chats to be written")
	}
}

func TestSignUpRejectsNonDigitNumberBeforeBackend(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	err := f.svc.SignUp(context.Background(), "Ann", "12a4", "ann@example.com", "secret")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if f.auth.callCount() != 0 || f.profiles.callCount() != 0 {
		t.Fatalf("expected no backend calls, got auth=%d profiles=%d", f.auth.callCount(), f.profiles.callCount())
	}
	state := f.svc.Snapshot()
	if state.InProcess || state.SignedIn || state.Notification == "" {
		t.Fatalf("expected failure notification without a session, got %+v", state)
	}
}

func TestSignUpRejectsTakenNumber(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedProfile(t, "u-bob", "Bob", "200")
	err := f.svc.SignUp(context.Background(), "Ann", "200", "ann@example.com", "secret")
	if !errors.Is(err, domain.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
	if f.auth.callCount() != 0 {
		t.Fatalf("expected the identity not to be created")
	}
}

func TestOpenChatReleasesPreviousStream(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u-bob", "Bob", "200")
	f.seedProfile(t, "u-cat", "Cat", "300")
	f.signUp(t, "ann", "100")
	for _, number := range []string{"200", "300"} {
		if err := f.svc.AddChat(ctx, number); err != nil {
			t.Fatalf("add chat %s: %v", number, err)
		}
	}
	chats := f.svc.Snapshot().Chats
	chatA, chatB := chats[0].Chat.ChatID, chats[1].Chat.ChatID

	if err := f.svc.OpenChat(ctx, chatA); err != nil {
		t.Fatalf("open A: %v", err)
	}
	lateA := f.messages.listenerFor(chatA)
	if err := f.svc.OpenChat(ctx, chatB); err != nil {
		t.Fatalf("open B: %v", err)
	}
	if n := f.repos.Messages.Listeners(); n != 1 {
		t.Fatalf("expected exactly one message stream, got %d", n)
	}

	lateA([]domain.Message{{MessageID: "ghost", ChatID: chatA, Text: "late"}}, nil)

	state := f.svc.Snapshot()
	if state.ActiveChatID != chatB {
		t.Fatalf("expected chat B to be active, got %s", state.ActiveChatID)
	}
	for _, msg := range state.Messages {
		if msg.MessageID == "ghost" {
			t.Fatalf("late event from the released stream leaked into state")
		}
	}

	f.svc.CloseChat()
	f.svc.CloseChat()
	state = f.svc.Snapshot()
	if state.ActiveChatID != "" || len(state.Messages) != 0 || f.repos.Messages.Listeners() != 0 {
		t.Fatalf("expected close to detach and clear, got %+v", state)
	}
}

func TestStatusStageTwoIsReplacedNotStacked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	for _, number := range []string{"200", "300", "400"} {
		f.seedProfile(t, "u-"+number, "user", number)
	}
	f.signUp(t, "ann", "100")
	for _, number := range []string{"200", "300", "400"} {
		if err := f.svc.AddChat(ctx, number); err != nil {
			t.Fatalf("add chat %s: %v", number, err)
		}
	}

	active, maxActive, opened := f.statuses.counts()
	if opened < 4 {
		t.Fatalf("expected a stage-two rebind per stage-one delivery, got %d", opened)
	}
	if active != 1 || maxActive != 1 {
		t.Fatalf("expected one live stage-two subscription, got active=%d max=%d", active, maxActive)
	}
}

func TestStatusVisibilityFollowsClock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	bob := f.seedProfile(t, "u-bob", "Bob", "200")
	stranger := f.seedProfile(t, "u-eve", "Eve", "900")
	f.signUp(t, "ann", "100")
	if err := f.svc.AddChat(ctx, "200"); err != nil {
		t.Fatalf("add chat: %v", err)
	}

	now := f.clock.Now()
	for _, st := range []domain.Status{
		{StatusID: "s-old", Poster: bob.Participant(), Timestamp: now.Add(-2 * time.Hour)},
		{StatusID: "s-new", Poster: bob.Participant(), Timestamp: now.Add(-time.Hour)},
		{StatusID: "s-eve", Poster: stranger.Participant(), Timestamp: now},
	} {
		if _, err := f.repos.Statuses.Create(ctx, st); err != nil {
			t.Fatalf("create status: %v", err)
		}
	}
	if err := f.svc.UploadStatus(ctx, "image/png", []byte{0x89, 0x50}); err != nil {
		t.Fatalf("upload status: %v", err)
	}

	state := f.svc.Snapshot()
	if len(state.OwnStatuses) != 1 || state.OwnStatuses[0].Poster.UserID != state.UserID {
		t.Fatalf("expected one own status, got %+v", state.OwnStatuses)
	}
	if len(state.OtherStatuses) != 1 || state.OtherStatuses[0].StatusID != "s-new" {
		t.Fatalf("expected bob's latest status only, got %+v", state.OtherStatuses)
	}
	if got := f.svc.StatusesOf("u-bob"); len(got) != 2 || got[0].StatusID != "s-old" {
		t.Fatalf("expected bob's statuses oldest first, got %+v", got)
	}

	// s-new turns exactly 24h old.
	f.clock.Advance(23 * time.Hour)
	state = f.svc.Snapshot()
	if len(state.OtherStatuses) != 0 {
		t.Fatalf("expected statuses at the cutoff to be hidden, got %+v", state.OtherStatuses)
	}
	if len(state.OwnStatuses) != 1 {
		t.Fatalf("expected own status to remain visible, got %+v", state.OwnStatuses)
	}
}

func TestLogOutReleasesEverySubscription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u-bob", "Bob", "200")
	f.signUp(t, "ann", "100")
	if err := f.svc.AddChat(ctx, "200"); err != nil {
		t.Fatalf("add chat: %v", err)
	}
	if err := f.svc.OpenChat(ctx, f.svc.Snapshot().Chats[0].Chat.ChatID); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	if err := f.svc.LogOut(ctx); err != nil {
		t.Fatalf("log out: %v", err)
	}

	if n := f.repos.Profiles.Listeners(); n != 0 {
		t.Fatalf("expected profile watch released, got %d", n)
	}
	if n := f.repos.Chats.Listeners(); n != 0 {
		t.Fatalf("expected chat watches released, got %d", n)
	}
	if n := f.repos.Messages.Listeners(); n != 0 {
		t.Fatalf("expected message stream released, got %d", n)
	}
	if n := f.repos.Statuses.Listeners(); n != 0 {
		t.Fatalf("expected status watch released, got %d", n)
	}
	state := f.svc.Snapshot()
	if state.SignedIn || len(state.Chats) != 0 || state.Profile != nil {
		t.Fatalf("expected cleared session, got %+v", state)
	}
	if msg := f.svc.ConsumeNotification(); msg != "logged out" {
		t.Fatalf("expected logged out notice, got %q", msg)
	}
	if err := f.svc.SendMessage(ctx, "any", "hi"); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn after logout, got %v", err)
	}
}

func TestLoginAndInitializeRestoreSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "ann", "100")
	if err := f.svc.LogOut(ctx); err != nil {
		t.Fatalf("log out: %v", err)
	}

	if err := f.svc.Login(ctx, "ann@example.com", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
	if err := f.svc.Login(ctx, "ann@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.svc.Login(ctx, "ann@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if state := f.svc.Snapshot(); !state.SignedIn || state.Profile == nil {
		t.Fatalf("expected live profile after login, got %+v", state)
	}

	// A second coordinator picks up the stored identity.
	other := NewService(Dependencies{
		Auth:     f.auth,
		Profiles: f.repos.Profiles,
		Chats:    f.repos.Chats,
		Messages: f.repos.Messages,
		Statuses: f.repos.Statuses,
		Blobs:    f.repos.Blobs,
		Clock:    f.clock.Now,
	})
	defer other.Close()
	if err := other.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if state := other.Snapshot(); !state.SignedIn || state.Profile == nil || state.Profile.Number != "100" {
		t.Fatalf("expected restored session, got %+v", state)
	}
}

func TestUpdateProfileMergesFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u-bob", "Bob", "200")
	f.signUp(t, "ann", "100")

	name := "Annie"
	if err := f.svc.UpdateProfile(ctx, ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	profile := f.svc.Snapshot().Profile
	if profile.Name != "Annie" || profile.Number != "100" {
		t.Fatalf("expected merged profile, got %+v", profile)
	}

	taken := "200"
	if err := f.svc.UpdateProfile(ctx, ProfileUpdate{Number: &taken}); !errors.Is(err, domain.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	if err := f.svc.UploadProfileImage(ctx, "image/jpeg", []byte{0xff, 0xd8}); err != nil {
		t.Fatalf("upload image: %v", err)
	}
	profile = f.svc.Snapshot().Profile
	if profile.ImageURL == "" || profile.Name != "Annie" {
		t.Fatalf("expected image url to be set, got %+v", profile)
	}
}

func TestDeleteChatClosesActiveStream(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u-bob", "Bob", "200")
	f.signUp(t, "ann", "100")
	if err := f.svc.AddChat(ctx, "200"); err != nil {
		t.Fatalf("add chat: %v", err)
	}
	chatID := f.svc.Snapshot().Chats[0].Chat.ChatID
	if err := f.svc.OpenChat(ctx, chatID); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	if err := f.svc.DeleteChat(ctx, chatID); err != nil {
		t.Fatalf("delete chat: %v", err)
	}
	state := f.svc.Snapshot()
	if len(state.Chats) != 0 || state.ActiveChatID != "" {
		t.Fatalf("expected chat list and stream to be cleared, got %+v", state)
	}
	if f.repos.Messages.Listeners() != 0 {
		t.Fatalf("expected message stream to be released")
	}
}

func TestBackendFailureIsWrapped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "ann", "100")

	err := f.svc.DeleteChat(ctx, "missing")
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if state := f.svc.Snapshot(); state.InProcess || state.Notification == "" {
		t.Fatalf("expected cleared InProcess and a notification, got %+v", state)
	}
}

func TestWatchSignalsChanges(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	changes, cancel := f.svc.Watch()
	defer cancel()

	f.signUp(t, "ann", "100")
	select {
	case <-changes:
	default:
		t.Fatalf("expected a change signal after sign up")
	}
}

func TestOtherParticipantThroughService(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	chat := domain.Chat{
		ChatID:       "c1",
		Participant1: domain.ChatParticipant{UserID: "a"},
		Participant2: domain.ChatParticipant{UserID: "b"},
	}
	if p, err := f.svc.OtherParticipant(chat, "b"); err != nil || p.UserID != "a" {
		t.Fatalf("expected a, got %+v err=%v", p, err)
	}
	if _, err := f.svc.OtherParticipant(chat, "z"); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}
