package dispatch_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"milkbill/internal/domain"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/infrastructure/storage/postgres"
)

const receiptTable = "milk_receipts"

// ReceiptRepo is the PostgreSQL repository for receipt documents.
type ReceiptRepo struct {
	*baseDocumentRepo[*dispatch.Receipt]
}

// Compile-time check.
var _ dispatch.ReceiptRepository = (*ReceiptRepo)(nil)

// NewReceiptRepo creates the receipt repository.
func NewReceiptRepo(txManager *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		baseDocumentRepo: newBaseDocumentRepo(
			txManager,
			receiptTable,
			postgres.ExtractDBColumns[dispatch.Receipt](),
			func() *dispatch.Receipt { return &dispatch.Receipt{} },
		),
	}
}

// List retrieves receipts with document-specific filtering. BranchID on a
// receipt is the receiving unit, so DestinationUnitID filters on it.
func (r *ReceiptRepo) List(ctx context.Context, filter dispatch.ListFilter) (domain.ListResult[*dispatch.Receipt], error) {
	result := domain.ListResult[*dispatch.Receipt]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.SourceUnitID != nil {
		q = q.Where(squirrel.Eq{"source_unit_id": *filter.SourceUnitID})
	}
	if filter.DestinationUnitID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.DestinationUnitID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list receipts: %w", err)
	}

	return result, nil
}
