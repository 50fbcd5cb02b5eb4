// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"

	appctx "milkbill/internal/core/context"
)

// EnrichCreatedByDirect sets CreatedBy and UpdatedBy from the authenticated
// user in context. Use in BeforeCreate hooks; no-op when no user is present.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect sets only UpdatedBy from the authenticated user in
// context. Use in BeforeUpdate hooks.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
