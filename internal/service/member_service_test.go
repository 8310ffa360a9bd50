package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

// recordingMailer 记录投递内容，替代真实网关
type recordingMailer struct {
	mu           sync.Mutex
	codes        map[string]string
	tempPassword map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: map[string]string{}, tempPassword: map[string]string{}}
}

func (m *recordingMailer) SendCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *recordingMailer) SendTempPassword(_ context.Context, email, tempPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempPassword[email] = tempPassword
	return nil
}

type memberFixture struct {
	db        *gorm.DB
	rdb       *redis.Client
	mailer    *recordingMailer
	memberSvc *MemberService
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)
	mailer := newRecordingMailer()
	memberRepo := repository.NewMemberRepository(db)
	return &memberFixture{
		db:        db,
		rdb:       rdb,
		mailer:    mailer,
		memberSvc: NewMemberService(memberRepo, mailer, rdb),
	}
}

func signUpReq(name string) SignUpRequest {
	return SignUpRequest{
		Name:     name,
		Password: "password123",
		Nickname: "nick-" + name,
		Email:    name + "@example.com",
		Birth:    time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:   "FEMALE",
	}
}

func TestSignUpAndCheckCode(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	id, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var m model.Member
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, model.RoleGuest, m.Role)
	assert.NotEqual(t, "password123", m.Password, "密码必须散列存储")

	code := f.mailer.codes["alice@example.com"]
	require.NotEmpty(t, code)

	// 错误验证码被拒
	assert.ErrorIs(t, f.memberSvc.CheckCode(ctx, "alice@example.com", "wrong"), ErrInvalidCode)

	require.NoError(t, f.memberSvc.CheckCode(ctx, "alice@example.com", code))
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, model.RoleMember, m.Role)

	// 已验证的会员再次校验为冲突
	assert.ErrorIs(t, f.memberSvc.CheckCode(ctx, "alice@example.com", code), ErrAlreadyAuthenticated)
}

func TestSignUpDuplicates(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	_, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)

	_, err = f.memberSvc.SignUp(ctx, signUpReq("alice"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	req := signUpReq("bob")
	req.Nickname = "nick-alice"
	_, err = f.memberSvc.SignUp(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicateNickname)
}

func TestReSendCodeUnknownEmail(t *testing.T) {
	f := newMemberFixture(t)

	// 未注册邮箱静默成功，不暴露注册状态
	require.NoError(t, f.memberSvc.ReSendCode(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mailer.codes["ghost@example.com"])
}

func TestUpdateNicknameDuplicate(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	aliceID, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)
	_, err = f.memberSvc.SignUp(ctx, signUpReq("bob"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.memberSvc.UpdateNickname(ctx, aliceID, "nick-bob"), ErrDuplicateNickname)
	require.NoError(t, f.memberSvc.UpdateNickname(ctx, aliceID, "fresh-nick"))
}

func TestUpdatePrivacy(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	id, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)

	require.NoError(t, f.memberSvc.UpdatePrivacy(ctx, id, model.VisibilityFollowerOnly))
	var m model.Member
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, model.VisibilityFollowerOnly, m.Visibility)

	assert.ErrorIs(t, f.memberSvc.UpdatePrivacy(ctx, id, model.Visibility("SECRET")), ErrInvalidRequest)
}

func TestDeleteAndCancelDelete(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	id, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)

	require.NoError(t, f.memberSvc.DeleteMember(ctx, id))
	var m model.Member
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, model.ActivationWaitingDeleted, m.Activation)
	assert.NotNil(t, m.DeletedAt)

	req := CancelDeleteRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "password123",
		Birth:    time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	// 四项必须全部匹配
	bad := req
	bad.Birth = bad.Birth.AddDate(0, 0, 1)
	assert.ErrorIs(t, f.memberSvc.CancelDeleteMember(ctx, bad), ErrNotFoundMember)

	bad = req
	bad.Password = "wrong-password"
	assert.ErrorIs(t, f.memberSvc.CancelDeleteMember(ctx, bad), ErrInvalidCredentials)

	require.NoError(t, f.memberSvc.CancelDeleteMember(ctx, req))
	// 重新查询前清空结构体，避免 NULL 列扫描时残留旧指针值
	m = model.Member{}
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.Equal(t, model.ActivationActive, m.Activation)
	assert.Nil(t, m.DeletedAt)

	// 非注销中的会员不可取消注销
	assert.ErrorIs(t, f.memberSvc.CancelDeleteMember(ctx, req), ErrInvalidRequest)
}

func TestResetPassword(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	id, err := f.memberSvc.SignUp(ctx, signUpReq("alice"))
	require.NoError(t, err)

	req := PasswordResetRequest{
		Name:  "alice",
		Email: "alice@example.com",
		Birth: time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.memberSvc.ResetPassword(ctx, req))

	temp := f.mailer.tempPassword["alice@example.com"]
	require.NotEmpty(t, temp)

	var m model.Member
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(temp)))

	// 身份不匹配直接 404
	bad := req
	bad.Name = "mallory"
	assert.ErrorIs(t, f.memberSvc.ResetPassword(ctx, bad), ErrNotFoundMember)
}
