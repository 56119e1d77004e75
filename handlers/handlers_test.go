package handlers

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"giscus-autogen/models"
	"giscus-autogen/reconciler"
	"giscus-autogen/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups chan *discordgo.WebhookParams
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{followups: make(chan *discordgo.WebhookParams, 1)}
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups <- data
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) lastContent(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.responses)
	return f.responses[len(f.responses)-1].Data.Content
}

func (f *fakeResponder) followup(t *testing.T) string {
	t.Helper()
	select {
	case p := <-f.followups:
		return p.Content
	case <-time.After(2 * time.Second):
		t.Fatal("no followup message")
		return ""
	}
}

type fakeSyncer struct {
	mu     sync.Mutex
	calls  int
	dryRun bool
	out    *reconciler.Outcome
	err    error
}

func (f *fakeSyncer) Sync(ctx context.Context, opts reconciler.SyncOptions) (*reconciler.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.dryRun = opts.DryRun
	return f.out, f.err
}

func (f *fakeSyncer) snapshot() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.dryRun
}

var testAuth = utils.NewAuthFromConfig(models.CommandsConfig{Auth: models.CommandAuth{
	Developers:  []string{"dev-1"},
	AdminsRoles: []string{"role-admin"},
}})

func interaction(name, userID string, roles []string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles},
		Data:   discordgo.ApplicationCommandInteractionData{Name: name, Options: options},
	}}
}

func dryRunOption(v bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "dry_run",
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: v,
	}
}

func TestSyncRequiresAdmin(t *testing.T) {
	r := newFakeResponder()
	syncer := &fakeSyncer{}

	CommandDispatcher(r, interaction("sync", "user-1", []string{"role-member"}), testAuth, syncer)

	assert.Contains(t, r.lastContent(t), "permission")
	calls, _ := syncer.snapshot()
	assert.Zero(t, calls)
}

func TestSyncByAdminRole(t *testing.T) {
	u, _ := url.Parse("https://example.com/posts/x")
	r := newFakeResponder()
	syncer := &fakeSyncer{out: &reconciler.Outcome{
		Post:       models.Post{URL: u},
		Discussion: &models.CreatedDiscussion{Title: "/posts/x", URL: "https://github.com/octo/blog/discussions/3"},
	}}

	CommandDispatcher(r, interaction("sync", "user-1", []string{"role-admin"}), testAuth, syncer)

	assert.Contains(t, r.lastContent(t), "Working on it")
	assert.Equal(t, "Created discussion **/posts/x**: https://github.com/octo/blog/discussions/3", r.followup(t))
	calls, dryRun := syncer.snapshot()
	assert.Equal(t, 1, calls)
	assert.False(t, dryRun)
}

func TestSyncDryRunByDeveloper(t *testing.T) {
	r := newFakeResponder()
	syncer := &fakeSyncer{err: errors.New("feed unreachable")}

	CommandDispatcher(r, interaction("sync", "dev-1", nil, dryRunOption(true)), testAuth, syncer)

	assert.Equal(t, "Sync failed: feed unreachable", r.followup(t))
	_, dryRun := syncer.snapshot()
	assert.True(t, dryRun)
}

func TestPingIsOpenToGuests(t *testing.T) {
	r := newFakeResponder()

	CommandDispatcher(r, interaction("ping", "user-1", nil), testAuth, &fakeSyncer{})

	assert.Equal(t, "Pong!", r.lastContent(t))
}

func TestUnknownCommand(t *testing.T) {
	r := newFakeResponder()

	CommandDispatcher(r, interaction("scan", "dev-1", nil), testAuth, &fakeSyncer{})

	assert.Contains(t, r.lastContent(t), "unknown command")
}

func TestSyncMessage(t *testing.T) {
	u, _ := url.Parse("https://example.com/posts/x")
	post := models.Post{URL: u}

	cases := []struct {
		name string
		out  *reconciler.Outcome
		err  error
		want string
	}{
		{
			name: "duplicate",
			err:  &reconciler.DuplicateDiscussionError{PostURL: "https://example.com/posts/x", ExistingURL: "https://d/1"},
			want: "A discussion for https://example.com/posts/x already exists: https://d/1",
		},
		{
			name: "busy",
			err:  reconciler.ErrSyncInProgress,
			want: "A sync is already running, try again later.",
		},
		{
			name: "dry run",
			out: &reconciler.Outcome{Post: post, DryRun: true, Request: models.CreationRequest{
				Title: "/posts/x", CategoryID: "DIC_1",
			}},
			want: "Dry run for https://example.com/posts/x: would create **/posts/x** in category `DIC_1`.",
		},
		{
			name: "empty",
			out:  &reconciler.Outcome{Post: post},
			want: "Sync finished without a result.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, syncMessage(tc.out, tc.err))
		})
	}
}
