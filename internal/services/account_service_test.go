package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewdesk/internal/authz"
	"crewdesk/internal/models"
)

// fakeUserRepo mimics the postgres repository contract in memory, including
// the conditional clear-and-activate of VerifyOTP.
type fakeUserRepo struct {
	nextID int
	users  map[string]*models.User // keyed by lowercase email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[strings.ToLower(user.Email)] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByPhone(phone string) (*models.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	cp := *user
	r.users[strings.ToLower(user.Email)] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id int) error {
	for k, u := range r.users {
		if u.ID == id {
			delete(r.users, k)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) SetOTP(email, code string, expires time.Time) error {
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return errors.New("no such user")
	}
	u.OTPCode = &code
	u.OTPExpires = &expires
	return nil
}

func (r *fakeUserRepo) VerifyOTP(email, code string) (bool, error) {
	u, ok := r.users[strings.ToLower(email)]
	if !ok || u.OTPCode == nil || *u.OTPCode != code {
		return false, nil
	}
	if u.OTPExpires == nil || !u.OTPExpires.After(time.Now()) {
		return false, nil
	}
	u.OTPCode = nil
	u.OTPExpires = nil
	u.IsVerified = true
	return true, nil
}

type fakeMailer struct {
	sent     []string // codes in send order
	lastTo   string
	failNext bool
}

func (m *fakeMailer) SendOTPEmail(to, code string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp down")
	}
	m.lastTo = to
	m.sent = append(m.sent, code)
	return nil
}

func (m *fakeMailer) lastCode() string {
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

type accountFixture struct {
	svc    *AccountService
	repo   *fakeUserRepo
	mailer *fakeMailer
	clock  *fakeClock
}

func newAccountFixture(t *testing.T, requireVerified bool) *accountFixture {
	t.Helper()
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	auth := NewAuthService("test-secret", time.Hour)
	clock := &fakeClock{t: time.Now()}

	throttle := NewResendThrottle(NewMemoryAttemptStore(), time.Minute, 3)
	throttle.now = clock.Now

	svc := NewAccountService(repo, mailer, auth, throttle, 6, 30*time.Minute, requireVerified)
	svc.now = clock.Now

	return &accountFixture{svc: svc, repo: repo, mailer: mailer, clock: clock}
}

func signupAnn() *models.SignupRequest {
	return &models.SignupRequest{
		Name:     "Ann",
		Email:    "Ann@Example.com",
		Phone:    "+77010000001",
		Password: "s3cret-pass",
		Role:     "manager",
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "manager" // not in the closed set

	_, err := f.svc.Register(req)
	var invalid *authz.InvalidRoleError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, f.mailer.sent)
}

func TestRegisterRejectsMissingRole(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = nil

	_, err := f.svc.Register(req)
	assert.ErrorIs(t, err, authz.ErrRoleRequired)
}

func TestRegisterCreatesPendingUserAndSendsCode(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = []string{"project_manager"}

	summary, err := f.svc.Register(req)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "ann@example.com", summary.Email)
	assert.Equal(t, authz.RoleProjectManager, summary.Role)
	assert.False(t, summary.IsVerified)

	stored, err := f.repo.GetByEmail("ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.OTPCode)
	assert.Len(t, *stored.OTPCode, 6)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, *stored.OTPCode, f.mailer.lastCode())
	assert.Equal(t, "ann@example.com", f.mailer.lastTo)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "hr"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	again := signupAnn()
	again.Role = "hr"
	again.Email = "ANN@example.com" // same address, different case
	_, err = f.svc.Register(again)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterNotificationFailureKeepsRecord(t *testing.T) {
	f := newAccountFixture(t, false)
	f.mailer.failNext = true

	req := signupAnn()
	req.Role = "worker"

	summary, err := f.svc.Register(req)
	require.ErrorIs(t, err, ErrNotificationFailed)
	require.NotNil(t, summary, "the created identity is still reported")

	stored, _ := f.repo.GetByEmail("ann@example.com")
	require.NotNil(t, stored, "record survives the failed notification")
	require.NotNil(t, stored.OTPCode)

	// recovery path: resend works against the surviving record
	require.NoError(t, f.svc.ResendOTP("ann@example.com"))
	assert.Len(t, f.mailer.sent, 1)
}

func TestVerifyOTPHappyPath(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "accounting"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	summary, token, err := f.svc.VerifyOTP("ann@example.com", f.mailer.lastCode())
	require.NoError(t, err)
	assert.True(t, summary.IsVerified)
	require.NotEmpty(t, token)

	claims, err := f.svc.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, claims.UserID)
	assert.Equal(t, authz.RoleAccounting, claims.Role)

	stored, _ := f.repo.GetByEmail("ann@example.com")
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTPCode, "code is cleared on success")
}

func TestVerifyOTPFailureModes(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)
	code := f.mailer.lastCode()

	_, _, err = f.svc.VerifyOTP("nobody@example.com", code)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = f.svc.VerifyOTP("ann@example.com", "000000")
	if code == "000000" {
		t.Skip("generated code collides with the deliberately wrong one")
	}
	assert.ErrorIs(t, err, ErrCodeMismatch)

	// the pending code survives a failed attempt
	_, _, err = f.svc.VerifyOTP("ann@example.com", code)
	assert.NoError(t, err)
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)
	code := f.mailer.lastCode()

	_, _, err = f.svc.VerifyOTP("ann@example.com", code)
	require.NoError(t, err)

	_, _, err = f.svc.VerifyOTP("ann@example.com", code)
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)
	code := f.mailer.lastCode()

	// force the stored expiry into the past
	stored, _ := f.repo.GetByEmail("ann@example.com")
	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.repo.SetOTP(stored.Email, code, past))

	_, _, err = f.svc.VerifyOTP("ann@example.com", code)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendReplacesPendingCode(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)
	oldCode := f.mailer.lastCode()

	require.NoError(t, f.svc.ResendOTP("ann@example.com"))
	newCode := f.mailer.lastCode()

	if oldCode != newCode {
		_, _, err = f.svc.VerifyOTP("ann@example.com", oldCode)
		assert.ErrorIs(t, err, ErrCodeMismatch, "old code is dead once replaced")
	}
	_, _, err = f.svc.VerifyOTP("ann@example.com", newCode)
	assert.NoError(t, err)
}

func TestResendThrottling(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	// within the cooldown window
	require.NoError(t, f.svc.ResendOTP("ann@example.com"))
	err = f.svc.ResendOTP("ann@example.com")
	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.False(t, limited.MaxAttemptsReached)
	assert.Positive(t, limited.RetryAfter)

	// burn through the remaining budget with the cooldown respected
	f.clock.Advance(2 * time.Minute)
	require.NoError(t, f.svc.ResendOTP("ann@example.com"))
	f.clock.Advance(2 * time.Minute)
	require.NoError(t, f.svc.ResendOTP("ann@example.com"))

	f.clock.Advance(2 * time.Minute)
	err = f.svc.ResendOTP("ann@example.com")
	require.ErrorAs(t, err, &limited)
	assert.True(t, limited.MaxAttemptsReached)
}

func TestResendForVerifiedAccount(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	_, _, err = f.svc.VerifyOTP("ann@example.com", f.mailer.lastCode())
	require.NoError(t, err)

	err = f.svc.ResendOTP("ann@example.com")
	assert.ErrorIs(t, err, ErrNoPendingCode)
}

func TestResendUnknownUser(t *testing.T) {
	f := newAccountFixture(t, false)
	err := f.svc.ResendOTP("ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyResetsResendBudget(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	require.NoError(t, f.svc.ResendOTP("ann@example.com"))
	_, _, err = f.svc.VerifyOTP("ann@example.com", f.mailer.lastCode())
	require.NoError(t, err)

	// a hypothetical new pending state starts with a clean counter
	stored, _ := f.repo.GetByEmail("ann@example.com")
	stored.IsVerified = false
	require.NoError(t, f.repo.Update(stored))
	assert.NoError(t, f.svc.ResendOTP("ann@example.com"))
}

func TestLoginByEmailAndPhone(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	summary, token, err := f.svc.Login("ann@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ann", summary.Name)

	// phone fallback when the identifier is not a known email
	_, token, err = f.svc.Login("+77010000001", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginFailures(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	_, _, err = f.svc.Login("ann@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login("ghost@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnverifiedGate(t *testing.T) {
	// by default an unverified account may log in
	f := newAccountFixture(t, false)
	req := signupAnn()
	req.Role = "worker"
	_, err := f.svc.Register(req)
	require.NoError(t, err)

	_, _, err = f.svc.Login("ann@example.com", "s3cret-pass")
	assert.NoError(t, err)

	// with the gate enabled the same login is rejected
	g := newAccountFixture(t, true)
	req = signupAnn()
	req.Role = "worker"
	_, err = g.svc.Register(req)
	require.NoError(t, err)

	_, _, err = g.svc.Login("ann@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrNotVerified)

	_, _, err = g.svc.VerifyOTP("ann@example.com", g.mailer.lastCode())
	require.NoError(t, err)
	_, _, err = g.svc.Login("ann@example.com", "s3cret-pass")
	assert.NoError(t, err)
}

func TestUpdateProfilePatchesNonEmptyFields(t *testing.T) {
	f := newAccountFixture(t, false)

	req := signupAnn()
	req.Role = "worker"
	summary, err := f.svc.Register(req)
	require.NoError(t, err)

	name := "Ann Petrova"
	empty := ""
	updated, err := f.svc.UpdateProfile(summary.ID, &models.UpdateProfileRequest{Name: &name, Phone: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Ann Petrova", updated.Name)
	assert.Equal(t, "+77010000001", updated.Phone, "empty patch values are ignored")
}
