package middlewares

import "context"

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxAdminSubject
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestID, rid)
}

// GetRequestID devuelve el request id inyectado por WithRequestID.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func setAdminSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxAdminSubject, sub)
}

// GetAdminSubject devuelve quién se autenticó como admin ("api_key" o el sub del JWT).
func GetAdminSubject(ctx context.Context) string {
	v, _ := ctx.Value(ctxAdminSubject).(string)
	return v
}
