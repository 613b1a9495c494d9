package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// PermissionKey is the cache key of a role's merged permission list
func PermissionKey(role string) string {
	return "role:" + role
}

// InvalidateRolePermissions drops the cached permission list of one role
func InvalidateRolePermissions(ctx context.Context, cm *CacheManager, role string) {
	SafeDelete(ctx, cm.Permission, PermissionKey(role))
}

// InvalidateAllPermissions drops every cached permission list
func InvalidateAllPermissions(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Permission, "role:*")
}
