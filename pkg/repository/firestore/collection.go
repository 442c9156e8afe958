package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names
const (
	CollectionRisks       = "risks"
	CollectionRiskObjects = "risk_objects"
	CollectionDocuments   = "documents"
	CollectionPeople      = "people"
	CollectionContexts    = "contexts"
	collectionCounters    = "counters"
)

type collections struct {
	prefix string
}

func (c *collections) name(base string) string {
	return CollectionName(c.prefix, base)
}

// CollectionName returns the stored name of base under prefix
func CollectionName(prefix, base string) string {
	if prefix != "" {
		return prefix + "_" + base
	}
	return base
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// counter hands out auto-increment ids, one counter document per collection
type counter struct {
	client *firestore.Client
	cols   *collections
}

func (c *counter) next(ctx context.Context, collection string) (int64, error) {
	counterRef := c.client.Collection(c.cols.name(collectionCounters)).Doc(collection)

	var nextID int64
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if isNotFound(err) {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}
		current, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not an integer", goerr.V("value", currentValue))
		}

		nextID = current + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID", goerr.V("collection", collection))
	}

	return nextID, nil
}

// deleteWhere removes every document of query using a bulk writer
func deleteWhere(ctx context.Context, client *firestore.Client, query firestore.Query) error {
	iter := query.Documents(ctx)
	defer iter.Stop()

	bulkWriter := client.BulkWriter(ctx)
	defer bulkWriter.End()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate documents for deletion")
		}

		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete document", goerr.V("path", doc.Ref.Path))
		}
	}
}
