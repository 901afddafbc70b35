package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		user User
		want string
	}{
		{User{LastName: "Anderson", FirstName: "Alice", Username: "alice"}, "Anderson Alice"},
		{User{LastName: "Anderson", Username: "alice"}, "Anderson"},
		{User{FirstName: "Alice", Username: "alice"}, "Alice"},
		{User{Username: "alice"}, "alice"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, tc.user.DisplayName())
	}
}

func TestHasParticipant(t *testing.T) {
	chat := Chat{Participants: []ChatParticipant{{UserID: "AAA111"}, {UserID: "BBB222"}}}

	require.True(t, chat.HasParticipant("AAA111"))
	require.True(t, chat.HasParticipant("BBB222"))
	require.False(t, chat.HasParticipant("CCC333"))
}

func TestIsForward(t *testing.T) {
	require.False(t, (&Message{Text: "hi"}).IsForward())
	require.True(t, (&Message{ForwardedFrom: "Anderson"}).IsForward())
	require.True(t, (&Message{OriginalMessageID: "abc"}).IsForward())
}
