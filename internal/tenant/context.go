package tenant

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	HeaderTenantID = "x-tenant-id"
	HeaderActorID  = "x-actor-id"
	HeaderRole     = "x-user-role"

	// legacy header still sent by older POS clients
	headerMerchantID = "x-merchant-id"
)

// Context identifies who is calling. It is resolved once at the transport
// boundary and passed explicitly into every use-case call.
type Context struct {
	TenantID string
	ActorID  string
	Role     string
}

type ctxKey struct{}

func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// FromMetadata reads the tenant headers from incoming gRPC metadata.
func FromMetadata(md metadata.MD) Context {
	tc := Context{
		TenantID: first(md, HeaderTenantID),
		ActorID:  first(md, HeaderActorID),
		Role:     first(md, HeaderRole),
	}
	if tc.TenantID == "" {
		tc.TenantID = first(md, headerMerchantID)
	}
	return tc
}

// FromHeaders reads the tenant headers with a header getter such as http.Header.Get.
func FromHeaders(get func(string) string) Context {
	tc := Context{
		TenantID: strings.TrimSpace(get(HeaderTenantID)),
		ActorID:  strings.TrimSpace(get(HeaderActorID)),
		Role:     strings.TrimSpace(get(HeaderRole)),
	}
	if tc.TenantID == "" {
		tc.TenantID = strings.TrimSpace(get(headerMerchantID))
	}
	return tc
}

func first(md metadata.MD, key string) string {
	if val := md.Get(key); len(val) > 0 {
		return strings.TrimSpace(val[0])
	}
	return ""
}
