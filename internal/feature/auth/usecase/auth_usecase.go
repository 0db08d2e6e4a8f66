package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"blog_backend/internal/feature/auth/domain/entity"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength はパスワードの最低文字数を定義します。
	MinPasswordLength = 6
)

// dummyHash is compared against when the email is unknown so that Login spends
// the same bcrypt time whether or not the user exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// passwordKey はパスワードをSHA-256でダイジェストし、base64化した44バイトを返します。
// bcryptは72バイトを超える入力を受け付けないため、長さに関係なくこの値をハッシュします。
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	key := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(key, sum[:])
	return key
}

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// TokenIssuer は署名済みアクセストークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// IssueToken は指定されたメールアドレスをsubjectとする署名済みトークンを生成します。
	IssueToken(email string) (string, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	issuer     TokenIssuer
	bcryptCost int
	validate   *validator.Validate
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// bcryptCostが有効範囲外の場合はbcrypt.DefaultCostを使用します。
func NewAuthUsecase(users UserRepository, issuer TokenIssuer, bcryptCost int) *authUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authUsecase{
		users:      users,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		validate:   validator.New(),
	}
}

// validateSignup はメール形式とパスワード長をチェックします。
func (u *authUsecase) validateSignup(email, password string) error {
	if err := u.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email must be a valid address", ErrInvalidInput)
	}
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、作成されたユーザーを返します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) (*entity.User, error) {
	if err := u.validateSignup(email, password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordKey(password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時に署名済みトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), passwordKey(password))
	if err != nil || compareErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := u.issuer.IssueToken(user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ResolveSubject は検証済みトークンのsubject（メールアドレス）を既存ユーザーに解決します。
// トークン発行後にユーザーが削除されている場合はErrUserNotFoundを返します。
func (u *authUsecase) ResolveSubject(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, email)
}
