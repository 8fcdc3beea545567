package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"crewdesk/internal/authz"
	"crewdesk/internal/models"
	"crewdesk/internal/repositories"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoPendingCode      = errors.New("no pending verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("verification code mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	// the identity record survives a failed notification; callers recover via resend
	ErrNotificationFailed = errors.New("failed to send verification code")
)

// AccountService orchestrates the signup → OTP → verified-session lifecycle
// plus login and profile access.
type AccountService struct {
	users    repositories.UserRepository
	mailer   OTPNotifier
	auth     *AuthService
	throttle *ResendThrottle

	otpLength       int
	otpTTL          time.Duration
	requireVerified bool

	now func() time.Time
}

func NewAccountService(
	users repositories.UserRepository,
	mailer OTPNotifier,
	auth *AuthService,
	throttle *ResendThrottle,
	otpLength int,
	otpTTL time.Duration,
	requireVerifiedLogin bool,
) *AccountService {
	if otpLength <= 0 {
		otpLength = DefaultOTPLength
	}
	if otpTTL <= 0 {
		otpTTL = 30 * time.Minute
	}
	return &AccountService{
		users:           users,
		mailer:          mailer,
		auth:            auth,
		throttle:        throttle,
		otpLength:       otpLength,
		otpTTL:          otpTTL,
		requireVerified: requireVerifiedLogin,
		now:             time.Now,
	}
}

// Register creates exactly one unverified identity with a fresh pending code
// and attempts the OTP notification once. A notification failure is returned
// alongside the created summary: the record stays, verification can proceed
// via resend.
func (s *AccountService) Register(req *models.SignupRequest) (*models.UserSummary, error) {
	role, err := authz.ValidateInput(req.Role)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := GenerateOTP(s.otpLength)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.otpTTL)

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         role,
		IsVerified:   false,
		OTPCode:      &code,
		OTPExpires:   &expires,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	log.Printf("[account][register] created user_id=%d email=%q role=%s", user.ID, email, role)

	if err := s.mailer.SendOTPEmail(email, code); err != nil {
		log.Printf("[account][register] otp email failed for %q: %v", email, err)
		return user.Summary(), fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return user.Summary(), nil
}

// VerifyOTP transitions a pending identity to verified. Each failure mode is
// distinct; on success the code is cleared atomically, the resend counter is
// reset and a session token is issued.
func (s *AccountService) VerifyOTP(email, code string) (*models.UserSummary, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}
	if user.OTPCode == nil {
		return nil, "", ErrNoPendingCode
	}
	if IsOTPExpired(user.OTPExpires) {
		return nil, "", ErrCodeExpired
	}
	if *user.OTPCode != code {
		return nil, "", ErrCodeMismatch
	}

	ok, err := s.users.VerifyOTP(email, code)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		// lost a race against a concurrent verify or resend
		return nil, "", ErrCodeMismatch
	}

	s.throttle.Reset(email)

	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpires = nil

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[account][verify] OK user_id=%d email=%q", user.ID, email)
	return user.Summary(), token, nil
}

// ResendOTP throttles, then replaces the pending code with a fresh one.
// The previous code becomes unusable the moment the new one is stored.
func (s *AccountService) ResendOTP(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsVerified {
		return ErrNoPendingCode
	}

	if err := s.throttle.Allow(email); err != nil {
		return err
	}

	code, err := GenerateOTP(s.otpLength)
	if err != nil {
		return err
	}
	expires := s.now().Add(s.otpTTL)
	if err := s.users.SetOTP(email, code, expires); err != nil {
		return err
	}
	log.Printf("[account][resend] new code issued for email=%q", email)

	if err := s.mailer.SendOTPEmail(email, code); err != nil {
		log.Printf("[account][resend] otp email failed for %q: %v", email, err)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// Login resolves the identifier by email first, then by phone, and issues a
// session token on a successful bcrypt compare. Unknown identifier and wrong
// password are indistinguishable to the caller.
func (s *AccountService) Login(identifier, password string) (*models.UserSummary, string, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.users.GetByEmail(strings.ToLower(identifier))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user, err = s.users.GetByPhone(identifier)
		if err != nil {
			return nil, "", err
		}
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !s.auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if s.requireVerified && !user.IsVerified {
		return nil, "", ErrNotVerified
	}

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[account][login] OK user_id=%d role=%s", user.ID, user.Role)
	return user.Summary(), token, nil
}

func (s *AccountService) Profile(id int) (*models.UserSummary, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Summary(), nil
}

func (s *AccountService) UpdateProfile(id int, req *models.UpdateProfileRequest) (*models.UserSummary, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user.Summary(), nil
}
