// internal/app/store/cosmosgruposets/container.go
package cosmosgruposetstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// container is the slice of the Cosmos container API the store needs.
// The container is partitioned on /IDSOCIEDAD; pk is that value.
type container interface {
	// query runs sql with params. A nil pk fans out across partitions.
	query(ctx context.Context, sql string, params []azcosmos.QueryParameter, pk *int) ([][]byte, error)
	read(ctx context.Context, pk int, id string) ([]byte, azcore.ETag, error)
	create(ctx context.Context, pk int, id string, item []byte) error
	replace(ctx context.Context, pk int, id string, item []byte, etag azcore.ETag) error
	delete(ctx context.Context, pk int, id string, etag azcore.ETag) error
	ping(ctx context.Context) error
}

// PartitionKeyPath is the partition key path the container must be
// provisioned with.
const PartitionKeyPath = "/" + models.FieldSociedad

func partitionKey(pk int) azcosmos.PartitionKey {
	return azcosmos.NewPartitionKeyNumber(float64(pk))
}

// sdkContainer adapts *azcosmos.ContainerClient.
type sdkContainer struct {
	c *azcosmos.ContainerClient
}

func (s sdkContainer) query(ctx context.Context, sql string, params []azcosmos.QueryParameter, pk *int) ([][]byte, error) {
	key := azcosmos.NewPartitionKey()
	if pk != nil {
		key = partitionKey(*pk)
	}
	pager := s.c.NewQueryItemsPager(sql, key, &azcosmos.QueryOptions{QueryParameters: params})

	items := [][]byte{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (s sdkContainer) read(ctx context.Context, pk int, id string) ([]byte, azcore.ETag, error) {
	resp, err := s.c.ReadItem(ctx, partitionKey(pk), id, nil)
	if err != nil {
		return nil, "", classify(err)
	}
	return resp.Value, resp.ETag, nil
}

func (s sdkContainer) create(ctx context.Context, pk int, id string, item []byte) error {
	_, err := s.c.CreateItem(ctx, partitionKey(pk), item, nil)
	return classify(err)
}

func (s sdkContainer) replace(ctx context.Context, pk int, id string, item []byte, etag azcore.ETag) error {
	_, err := s.c.ReplaceItem(ctx, partitionKey(pk), id, item,
		&azcosmos.ItemOptions{IfMatchEtag: &etag})
	return classify(err)
}

func (s sdkContainer) delete(ctx context.Context, pk int, id string, etag azcore.ETag) error {
	_, err := s.c.DeleteItem(ctx, partitionKey(pk), id,
		&azcosmos.ItemOptions{IfMatchEtag: &etag})
	return classify(err)
}

func (s sdkContainer) ping(ctx context.Context) error {
	_, err := s.c.Read(ctx, nil)
	return classify(err)
}

// classify maps Cosmos failures onto the store sentinels. The Azure
// error stays wrapped for logs.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var re *azcore.ResponseError
	if errors.As(err, &re) {
		switch re.StatusCode {
		case http.StatusConflict:
			return fmt.Errorf("%w: %v", models.ErrDuplicateKey, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", models.ErrNotFound, err)
		case http.StatusPreconditionFailed:
			return fmt.Errorf("%w: %v", models.ErrConcurrentUpdate, err)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("%w: %v", models.ErrDuplicateKey, err)
	}
	return err
}
