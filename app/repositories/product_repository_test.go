package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// The suite runs against mtest's mock deployment. Responses are primed per
// find and the command documents the driver actually sends are asserted:
// skip/limit/sort for pagination, regex options for search, range operators
// for filtering.

func productRepo(mt *mtest.T) *ProductRepository {
	return &ProductRepository{
		col:        mt.Coll,
		categories: mt.Coll.Database().Collection("categories"),
	}
}

func emptyFind(mt *mtest.T) bson.D {
	ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
}

func TestProductPageQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pages are fixed-size, newest-first, and disjoint", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt), emptyFind(mt))
		repo := productRepo(mt)

		_, err := repo.Page(context.Background(), 1)
		require.NoError(mt, err)
		_, err = repo.Page(context.Background(), 2)
		require.NoError(mt, err)

		first := mt.GetStartedEvent().Command
		second := mt.GetStartedEvent().Command

		assert.EqualValues(mt, 0, first.Lookup("skip").AsInt64())
		assert.EqualValues(mt, PageSize, first.Lookup("limit").AsInt64())
		assert.EqualValues(mt, PageSize, second.Lookup("skip").AsInt64())
		assert.EqualValues(mt, PageSize, second.Lookup("limit").AsInt64())

		// Page 2 starts exactly where page 1 ends.
		assert.Equal(mt,
			first.Lookup("skip").AsInt64()+first.Lookup("limit").AsInt64(),
			second.Lookup("skip").AsInt64())

		assert.EqualValues(mt, -1, first.Lookup("sort").Document().Lookup("createdAt").AsInt64())
		assert.EqualValues(mt, 0, first.Lookup("projection").Document().Lookup("image").AsInt64())
	})

	mt.Run("page below one clamps to the first page", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt))

		_, err := productRepo(mt).Page(context.Background(), 0)
		require.NoError(mt, err)

		assert.EqualValues(mt, 0, mt.GetStartedEvent().Command.Lookup("skip").AsInt64())
	})
}

func TestProductSearchQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matches name and description case-insensitively", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt))

		_, err := productRepo(mt).Search(context.Background(), "SaRee.")
		require.NoError(mt, err)

		or, err := mt.GetStartedEvent().Command.
			Lookup("filter").Document().
			Lookup("$or").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, or, 2)

		for i, field := range []string{"name", "description"} {
			pattern, opts := or[i].Document().Lookup(field).Regex()
			assert.Equal(mt, `SaRee\.`, pattern, "metacharacters must be quoted")
			assert.Equal(mt, "i", opts)
		}
	})
}

func TestProductFilterQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("price range is inclusive on both ends", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt))
		category := primitive.NewObjectID()

		_, err := productRepo(mt).Filter(context.Background(),
			[]primitive.ObjectID{category}, []float64{100, 500})
		require.NoError(mt, err)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()

		price := filter.Lookup("price").Document()
		assert.Equal(mt, float64(100), price.Lookup("$gte").Double())
		assert.Equal(mt, float64(500), price.Lookup("$lte").Double())

		in, err := filter.Lookup("category").Document().Lookup("$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, in, 1)
		assert.Equal(mt, category, in[0].ObjectID())
	})

	mt.Run("no predicates means an unfiltered find", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt))

		_, err := productRepo(mt).Filter(context.Background(), nil, nil)
		require.NoError(mt, err)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		_, priceErr := filter.LookupErr("price")
		_, categoryErr := filter.LookupErr("category")
		assert.Error(mt, priceErr)
		assert.Error(mt, categoryErr)
	})
}

func TestProductAllExpandsCategories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stitches category documents onto each product", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		catNS := mt.Coll.Database().Name() + ".categories"
		sarees := primitive.NewObjectID()
		dangling := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Banarasi"}, {Key: "category", Value: sarees}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Kanjivaram"}, {Key: "category", Value: sarees}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Orphan"}, {Key: "category", Value: dangling}},
			),
			mtest.CreateCursorResponse(0, catNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: sarees}, {Key: "name", Value: "Sarees"}, {Key: "slug", Value: "sarees"}},
			),
		)

		views, err := productRepo(mt).All(context.Background(), 12)
		require.NoError(mt, err)
		require.Len(mt, views, 3)

		require.NotNil(mt, views[0].Category)
		assert.Equal(mt, "sarees", views[0].Category.Slug)
		require.NotNil(mt, views[1].Category)
		assert.Nil(mt, views[2].Category, "dangling reference stays nil")

		// The lookup deduplicates category ids.
		_ = mt.GetStartedEvent() // products find
		in, err := mt.GetStartedEvent().Command.
			Lookup("filter").Document().
			Lookup("_id").Document().
			Lookup("$in").Array().Values()
		require.NoError(mt, err)
		assert.Len(mt, in, 2)
	})
}

func TestProductRelatedQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("excludes the product itself and caps results", func(mt *mtest.T) {
		mt.AddMockResponses(emptyFind(mt))
		id := primitive.NewObjectID()
		category := primitive.NewObjectID()

		_, err := productRepo(mt).Related(context.Background(), id, category, 3)
		require.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		filter := cmd.Lookup("filter").Document()
		assert.Equal(mt, id, filter.Lookup("_id").Document().Lookup("$ne").ObjectID())
		assert.Equal(mt, category, filter.Lookup("category").ObjectID())
		assert.EqualValues(mt, 3, cmd.Lookup("limit").AsInt64())
	})
}
