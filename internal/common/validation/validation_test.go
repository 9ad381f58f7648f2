package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_server/internal/common"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "valid", password: "World123!!", want: true},
		{name: "exactly 8", password: "Wor1d!ab", want: true},
		{name: "exactly 20", password: "Abcdefghij123456789$", want: true},
		{name: "no symbol", password: "World123", want: false},
		{name: "no digit", password: "World!!!", want: false},
		{name: "no upper", password: "world123!!", want: false},
		{name: "no lower", password: "WORLD123!!", want: false},
		{name: "under 8", password: "Wor1d!a", want: false},
		{name: "over 20", password: "Abcdefghij123456789$x", want: false},
		{name: "symbol outside the set", password: "World123##", want: false},
		{name: "empty", password: "", want: false},
		{name: "non-ascii letters and digits do not count", password: "ÀàÁá١٢٣٤$!", want: false},
		{name: "over 72 bytes", password: "𝐀𝐚𝟏" + strings.Repeat("𝐚", 16) + "$", want: false},
		{name: "ascii classes with multibyte filler", password: "Aa1$" + strings.Repeat("𝐚", 16), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Password(tt.password))
		})
	}
}

// longEmail builds a syntactically valid address of exactly n characters.
func longEmail(n int) string {
	local := strings.Repeat("a", 60) + "@"
	rest := n - len(local) - len(".com")
	var domain strings.Builder
	for rest > 50 {
		domain.WriteString(strings.Repeat("b", 49) + ".")
		rest -= 50
	}
	domain.WriteString(strings.Repeat("b", rest))
	return local + domain.String() + ".com"
}

func TestUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		errField string
	}{
		{name: "valid", username: "hello", email: "mymail@gmail.com", password: "World123!!"},
		{name: "username 20 chars", username: strings.Repeat("a", 20), email: "a@b.co", password: "World123!!"},
		{name: "username over 20", username: "hellohellohellohellohello", email: "a@b.co", password: "World123!!", errField: "username"},
		{name: "empty username", username: "", email: "a@b.co", password: "World123!!", errField: "username"},
		{name: "bad email", username: "hello", email: "not-an-email", password: "World123!!", errField: "email"},
		{name: "empty email", username: "hello", email: "", password: "World123!!", errField: "email"},
		{name: "email 254 chars", username: "hello", email: longEmail(254), password: "World123!!"},
		{name: "email over 254", username: "hello", email: longEmail(255), password: "World123!!", errField: "email"},
		{name: "weak password", username: "hello", email: "a@b.co", password: "world", errField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := User(tt.username, tt.email, tt.password)
			if tt.errField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Summary, tt.errField+":")
		})
	}
}

func TestLongEmail(t *testing.T) {
	assert.Len(t, longEmail(254), 254)
	assert.Len(t, longEmail(255), 255)
}

func TestUser_ReportsEveryField(t *testing.T) {
	err := User("", "nope", "x")

	var vErr *common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Summary, "username:")
	assert.Contains(t, vErr.Summary, "email:")
	assert.Contains(t, vErr.Summary, "password:")
}

func TestTodo(t *testing.T) {
	long := strings.Repeat("c", 256)
	maxContents := strings.Repeat("c", 255)
	empty := ""

	tests := []struct {
		name     string
		todoName string
		contents *string
		wantErr  bool
	}{
		{name: "name only", todoName: "buy milk"},
		{name: "with contents", todoName: "buy milk", contents: &maxContents},
		{name: "empty contents", todoName: "buy milk", contents: &empty},
		{name: "name 100 chars", todoName: strings.Repeat("n", 100)},
		{name: "multibyte name counts runes", todoName: strings.Repeat("가", 100)},
		{name: "empty name", todoName: "", wantErr: true},
		{name: "name over 100", todoName: strings.Repeat("n", 101), wantErr: true},
		{name: "contents over 255", todoName: "buy milk", contents: &long, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Todo(tt.todoName, tt.contents)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
