package common

// TokenCookieName is the HTTP-only cookie that carries the session token on
// authenticated admin requests.
const TokenCookieName = "token"

// RoleAdmin is the only role allowed through the admin routes. Signup never
// grants it.
const RoleAdmin = "admin"
