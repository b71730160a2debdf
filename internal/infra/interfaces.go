package infra

import "context"

type CatalogClientInterface interface {
	GetShoeByID(ctx context.Context, id uint64) (*ShoeInfo, error)
}

var _ CatalogClientInterface = (*CatalogClient)(nil)
