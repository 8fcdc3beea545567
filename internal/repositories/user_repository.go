package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"crewdesk/internal/authz"
	"crewdesk/internal/models"
)

// UserRepository is the key-value-by-email persistence contract the account
// flows depend on. Lookups return (nil, nil) when no record exists.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int) error

	// OTP lifecycle
	SetOTP(email, code string, expires time.Time) error
	// VerifyOTP atomically clears the pending code and flips the verified
	// flag when email+code match an unexpired record. Reports whether the
	// update happened.
	VerifyOTP(email, code string) (bool, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, phone, password_hash, role, is_verified, otp_code, otp_expires, created_at, updated_at`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified, otp_code, otp_expires)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(q,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		string(user.Role),
		user.IsVerified,
		user.OTPCode,
		user.OTPExpires,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *userRepository) GetByPhone(phone string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE phone = $1 LIMIT 1`, phone)
}

func (r *userRepository) getOne(q string, arg any) (*models.User, error) {
	u := &models.User{}
	var (
		role       string
		otpCode    sql.NullString
		otpExpires sql.NullTime
	)
	err := r.DB.QueryRow(q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&u.IsVerified, &otpCode, &otpExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get: %w", err)
	}
	u.Role = authz.Role(role)
	if otpCode.Valid {
		s := otpCode.String
		u.OTPCode = &s
	}
	if otpExpires.Valid {
		t := otpExpires.Time
		u.OTPExpires = &t
	}
	return u, nil
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET name=$1, phone=$2, password_hash=$3, role=$4, is_verified=$5, updated_at=NOW()
		WHERE id=$6
	`
	_, err := r.DB.Exec(q, user.Name, user.Phone, user.PasswordHash, string(user.Role), user.IsVerified, user.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *userRepository) SetOTP(email, code string, expires time.Time) error {
	const q = `
		UPDATE users
		SET otp_code=$1, otp_expires=$2, updated_at=NOW()
		WHERE lower(email) = lower($3)
	`
	_, err := r.DB.Exec(q, code, expires, email)
	if err != nil {
		return fmt.Errorf("user set otp: %w", err)
	}
	return nil
}

func (r *userRepository) VerifyOTP(email, code string) (bool, error) {
	const q = `
		UPDATE users
		SET otp_code=NULL, otp_expires=NULL, is_verified=TRUE, updated_at=NOW()
		WHERE lower(email) = lower($1) AND otp_code = $2 AND otp_expires > NOW()
	`
	res, err := r.DB.Exec(q, email, code)
	if err != nil {
		return false, fmt.Errorf("user verify otp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
