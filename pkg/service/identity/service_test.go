package identity

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

var reValidUsername = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)

func newTestService(t *testing.T) (Service, *ent.Repositories) {
	t.Helper()
	repos := ent.NewRepositories(testdb.Open(t))
	return NewService(repos.User, utility.NewMemoryCacheService()), repos
}

func TestNormalizeAndClampUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "john.doe", want: "john.doe"},
		{in: "John Doe!", want: "JohnDoe"},
		{in: "张伟", want: "zhangwei"},
		{in: "a", want: "a00"},
		{in: "!!!", want: "user"},
		{in: "", want: "user"},
		{in: strings.Repeat("x", 40), want: strings.Repeat("x", 30)},
		{in: "李_lee", want: "li_lee"},
	}
	for _, tt := range tests {
		got := ClampUsername(NormalizeUsername(tt.in))
		assert.Equal(t, tt.want, got, "输入 %q", tt.in)
		assert.Regexp(t, reValidUsername, got)
	}
}

func TestWithSuffixAlwaysValid(t *testing.T) {
	for _, base := range []string{"a", "user", strings.Repeat("y", 30), "zhang.wei_01"} {
		for i := 0; i < 50; i++ {
			got := withSuffix(base)
			assert.Regexp(t, reValidUsername, got)
		}
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", displayName("Ada", "Lovelace", "ada", "User"))
	assert.Equal(t, "Ada", displayName(" Ada ", "", "ada", "User"))
	assert.Equal(t, "ada", displayName("", "", "ada", "User"))
	assert.Equal(t, "User", displayName("", "", "", "User"))
}

func TestSync_CreatesOnceAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestService(t)

	id := Identity{Subject: "user_1", Email: "jane.doe+tag@example.com", FirstName: "Jane", LastName: "Doe"}
	first, err := svc.Sync(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "jane.doetag", first.Username)
	assert.Equal(t, "Jane Doe", first.Name)

	second, err := svc.Sync(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	users, err := repos.User.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSync_RequiresEmailForNewUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Sync(context.Background(), Identity{Subject: "user_no_mail"})
	assert.ErrorIs(t, err, constant.ErrInvalidIdentity)
}

func TestSync_ResolvesUsernameCollision(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.Sync(ctx, Identity{Subject: "s1", Email: "sam@a.com"})
	require.NoError(t, err)
	b, err := svc.Sync(ctx, Identity{Subject: "s2", Email: "sam@b.com"})
	require.NoError(t, err)

	assert.Equal(t, "sam", a.Username)
	assert.NotEqual(t, a.Username, b.Username)
	assert.True(t, strings.HasPrefix(b.Username, "sam"))
	assert.Regexp(t, reValidUsername, b.Username)
}

func TestSync_RefreshesChangedAttributes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Sync(ctx, Identity{Subject: "s1", Email: "old@example.com", FirstName: "Old"})
	require.NoError(t, err)

	// 先读一次让缓存生效，刷新后缓存必须失效
	_, err = svc.GetBySubject(ctx, "s1")
	require.NoError(t, err)

	avatar := "https://img.example.com/new.png"
	updated, err := svc.Sync(ctx, Identity{Subject: "s1", Email: "new@example.com", FirstName: "New", AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "New", updated.Name)

	got, err := svc.GetBySubject(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, avatar, *got.AvatarURL)
}

func TestCreateFromEvent_ExistingUserUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, created, err := svc.CreateFromEvent(ctx, Identity{Subject: "s1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	user, created, err := svc.CreateFromEvent(ctx, Identity{Subject: "s1", Email: "changed@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestUpdateAndDeleteFromEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.UpdateFromEvent(ctx, Identity{Subject: "ghost"})
	assert.ErrorIs(t, err, constant.ErrNotFound)

	_, err = svc.Sync(ctx, Identity{Subject: "s1", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Sync(ctx, Identity{Subject: "s2", Email: "taken@example.com"})
	require.NoError(t, err)

	updated, err := svc.UpdateFromEvent(ctx, Identity{Subject: "s1", Email: "b@example.com", Username: "taken", FirstName: "Bee"})
	require.NoError(t, err)
	assert.Equal(t, "a00", updated.Username, "用户名被占用时保留原值")
	assert.Equal(t, "b@example.com", updated.Email)
	assert.Equal(t, "Bee", updated.Name)

	deleted, err := svc.DeleteBySubject(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = svc.GetBySubject(ctx, "s1")
	assert.ErrorIs(t, err, constant.ErrNotFound)

	deleted, err = svc.DeleteBySubject(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
