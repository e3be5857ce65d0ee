package domain

type CtxKey string

const (
	KeyUserID       CtxKey = "UserID"
	KeyUserEmail    CtxKey = "Email"
	KeySessionToken CtxKey = "SessionToken"
	KeyClientIP     CtxKey = "ClientIP"
	KeyRequestID    CtxKey = "RequestID"
)
