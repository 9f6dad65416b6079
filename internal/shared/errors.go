package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("recurso não encontrado")
	// ErrInvalidCredentials covers both unknown email and wrong password so the
	// two cases are indistinguishable from outside.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrNotAuthenticated occurs when no bearer token accompanies the request.
	ErrNotAuthenticated = errors.New("token não fornecido")
	// ErrTokenExpired occurs when a well-formed access token is past its expiry.
	ErrTokenExpired = errors.New("token expirado")
	// ErrTokenInvalid occurs on malformed tokens, bad signatures and revoked tokens.
	ErrTokenInvalid = errors.New("token inválido")
	// ErrRefreshExpired occurs when the refresh token itself is past expiry.
	ErrRefreshExpired = errors.New("refresh token expirado")
	// ErrRefreshInvalid occurs when the refresh token fails verification or has
	// no matching persisted row.
	ErrRefreshInvalid = errors.New("refresh token inválido ou expirado")
	// ErrRefreshMissing occurs when the refresh gate receives no token at all.
	ErrRefreshMissing = errors.New("refresh token não fornecido")
	// ErrIdentityNotFound occurs when a verified token references a missing account.
	ErrIdentityNotFound = errors.New("usuário não encontrado")
	// ErrEmailNotVerified blocks unverified identities from gated routes and login.
	ErrEmailNotVerified = errors.New("email não verificado")
	// ErrEmailTaken indicates a registration with an already-used email.
	ErrEmailTaken = errors.New("email já cadastrado")
	// ErrOneTimeTokenInvalid covers consumed, unknown and expired verification or
	// reset tokens with a single outward message.
	ErrOneTimeTokenInvalid = errors.New("token inválido ou expirado")
	// ErrForbidden indicates the resolved identity may not perform the operation.
	ErrForbidden = errors.New("acesso não autorizado")
	// ErrInsufficientLevel indicates the identity's role maps below the required level.
	ErrInsufficientLevel = errors.New("nível de acesso insuficiente")
	// ErrInsufficientPermissions indicates a missing named permission.
	ErrInsufficientPermissions = errors.New("permissões insuficientes")
	// ErrUsageLimited indicates the per-identity daily cap was reached.
	ErrUsageLimited = errors.New("limite diário de operações atingido")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("dados inválidos")
	// ErrAlreadyFavorited indicates the listing is already on the user's list.
	ErrAlreadyFavorited = errors.New("imóvel já favoritado")
)
