package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dropletd/internal/bot"
)

type fakeAPI struct {
	sent    []string
	sendErr error
	perms   int64
	permErr error
}

func (f *fakeAPI) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, channelID+": "+content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) UserChannelPermissions(_, _ string, _ ...discordgo.RequestOption) (int64, error) {
	return f.perms, f.permErr
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)

	s, err := New("token")
	require.NoError(t, err)
	assert.Equal(t, "Bot token", s.session.Token)
	assert.NotZero(t, s.session.Identify.Intents&discordgo.IntentsMessageContent)
}

func TestSend(t *testing.T) {
	t.Parallel()
	fake := &fakeAPI{}
	s := &Session{api: fake}

	require.NoError(t, s.Send(context.Background(), "chan-1", "hello"))
	assert.Equal(t, []string{"chan-1: hello"}, fake.sent)

	fake.sendErr = errors.New("missing access")
	err := s.Send(context.Background(), "chan-1", "again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access")
}

func TestCanManage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		perms int64
		want  bool
	}{
		{name: "no permissions", perms: 0, want: false},
		{name: "send messages only", perms: discordgo.PermissionSendMessages, want: false},
		{name: "manage server", perms: discordgo.PermissionManageServer | discordgo.PermissionSendMessages, want: true},
		{name: "administrator", perms: discordgo.PermissionAdministrator, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &Session{api: &fakeAPI{perms: tt.perms}}
			got, err := s.CanManage(context.Background(), bot.Message{AuthorID: "u", ChannelID: "c"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanManage_Error(t *testing.T) {
	t.Parallel()
	s := &Session{api: &fakeAPI{permErr: errors.New("unknown member")}}

	ok, err := s.CanManage(context.Background(), bot.Message{AuthorName: "dave"})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "dave")
}

func TestToMessage(t *testing.T) {
	t.Parallel()

	msg, ok := toMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c",
		GuildID:   "g",
		Content:   "!stream status",
		Author:    &discordgo.User{ID: "u", Username: "dave"},
	}})
	require.True(t, ok)
	assert.Equal(t, bot.Message{ChannelID: "c", GuildID: "g", AuthorID: "u", AuthorName: "dave", Content: "!stream status"}, msg)

	_, ok = toMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{ID: "b", Bot: true},
	}})
	assert.False(t, ok)

	_, ok = toMessage(&discordgo.MessageCreate{Message: &discordgo.Message{}})
	assert.False(t, ok)
}
