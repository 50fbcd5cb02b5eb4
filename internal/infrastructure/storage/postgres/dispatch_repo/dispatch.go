package dispatch_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/domain"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/infrastructure/storage/postgres"
)

const dispatchTable = "milk_dispatches"

// DispatchRepo is the PostgreSQL repository for dispatch documents.
type DispatchRepo struct {
	*baseDocumentRepo[*dispatch.Dispatch]
}

// Compile-time check.
var _ dispatch.Repository = (*DispatchRepo)(nil)

// NewDispatchRepo creates the dispatch repository.
func NewDispatchRepo(txManager *postgres.TxManager) *DispatchRepo {
	return &DispatchRepo{
		baseDocumentRepo: newBaseDocumentRepo(
			txManager,
			dispatchTable,
			postgres.ExtractDBColumns[dispatch.Dispatch](),
			func() *dispatch.Dispatch { return &dispatch.Dispatch{} },
		),
	}
}

// CreateBatch inserts dispatches through the COPY protocol. Must run inside
// a transaction; the historical import wraps the whole file in one.
func (r *DispatchRepo) CreateBatch(ctx context.Context, docs []*dispatch.Dispatch) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(docs))
	for _, doc := range docs {
		data := postgres.StructToMap(doc)
		row := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			row[i] = data[col]
		}
		rows = append(rows, row)
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	inserted, err := inserter.CopyFromSlice(ctx, dispatchTable, r.selectCols, rows)
	if err != nil {
		return fmt.Errorf("copy dispatches: %w", err)
	}
	if inserted != int64(len(docs)) {
		return fmt.Errorf("copy dispatches: inserted %d of %d rows", inserted, len(docs))
	}
	return nil
}

// GetByDCNumber retrieves a dispatch by its delivery challan number.
func (r *DispatchRepo) GetByDCNumber(ctx context.Context, dc string) (*dispatch.Dispatch, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"dc_number": dc}), dc)
}

// List retrieves dispatches with document-specific filtering.
func (r *DispatchRepo) List(ctx context.Context, filter dispatch.ListFilter) (domain.ListResult[*dispatch.Dispatch], error) {
	result := domain.ListResult[*dispatch.Dispatch]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"dc_number": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.SourceUnitID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.SourceUnitID})
	}
	if filter.DestinationUnitID != nil {
		q = q.Where(squirrel.Eq{"destination_unit_id": *filter.DestinationUnitID})
	}
	if filter.InTransit != nil {
		q = q.Where(squirrel.Eq{"in_transit": *filter.InTransit})
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
		return result, fmt.Errorf("list dispatches: %w", err)
	}

	return result, nil
}

// FindPending returns the oldest in-transit dispatch for a unit pair.
func (r *DispatchRepo) FindPending(ctx context.Context, sourceUnitID, destinationUnitID id.ID) (*dispatch.Dispatch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{
			"branch_id":           sourceUnitID,
			"destination_unit_id": destinationUnitID,
			"in_transit":          true,
			"deletion_mark":       false,
		}).
		OrderBy("date ASC", "created_at ASC").
		Limit(1)

	doc, err := r.getOne(ctx, q, sourceUnitID.String())
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("pending dispatch", sourceUnitID.String()).
				WithDetail("destinationUnitId", destinationUnitID.String())
		}
		return nil, err
	}
	return doc, nil
}

// MaxSequence scans stored DC numbers for the highest sequence a unit was
// issued within a financial year. Only used to seed the sys_sequences
// counter at startup.
func (r *DispatchRepo) MaxSequence(ctx context.Context, unitCode, financialYear string) (int, error) {
	pattern := unitCode + "/%/" + financialYear

	var max int
	err := r.querier(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(split_part(dc_number, '/', 2)::int), 0)
		FROM `+dispatchTable+`
		WHERE dc_number LIKE $1
	`, pattern).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max dc sequence: %w", err)
	}
	return max, nil
}
