package storage

import (
	"context"
	"errors"
	"sort"
	"testing"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/dshills/pagecontext-mcp/internal/identity"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// fakeCollections implements the collection calls QdrantStore makes
type fakeCollections struct {
	qdrantclient.CollectionsClient
	sizes   map[string]uint64
	points  *fakePoints
	creates int
	deletes int
}

func (f *fakeCollections) List(ctx context.Context, in *qdrantclient.ListCollectionsRequest, opts ...grpc.CallOption) (*qdrantclient.ListCollectionsResponse, error) {
	resp := &qdrantclient.ListCollectionsResponse{}
	for name := range f.sizes {
		resp.Collections = append(resp.Collections, &qdrantclient.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (f *fakeCollections) Create(ctx context.Context, in *qdrantclient.CreateCollection, opts ...grpc.CallOption) (*qdrantclient.CollectionOperationResponse, error) {
	f.creates++
	f.sizes[in.GetCollectionName()] = in.GetVectorsConfig().GetParams().GetSize()
	return &qdrantclient.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(ctx context.Context, in *qdrantclient.DeleteCollection, opts ...grpc.CallOption) (*qdrantclient.CollectionOperationResponse, error) {
	f.deletes++
	delete(f.sizes, in.GetCollectionName())
	f.points.points = map[string]*qdrantclient.PointStruct{}
	return &qdrantclient.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Get(ctx context.Context, in *qdrantclient.GetCollectionInfoRequest, opts ...grpc.CallOption) (*qdrantclient.GetCollectionInfoResponse, error) {
	size, ok := f.sizes[in.GetCollectionName()]
	if !ok {
		return nil, errors.New("not found")
	}
	return &qdrantclient.GetCollectionInfoResponse{
		Result: &qdrantclient.CollectionInfo{
			Config: &qdrantclient.CollectionConfig{
				Params: &qdrantclient.CollectionParams{
					VectorsConfig: &qdrantclient.VectorsConfig{
						Config: &qdrantclient.VectorsConfig_Params{
							Params: &qdrantclient.VectorParams{Size: size, Distance: qdrantclient.Distance_Cosine},
						},
					},
				},
			},
		},
	}, nil
}

// fakePoints keeps points in memory and scores them by cosine similarity
type fakePoints struct {
	qdrantclient.PointsClient
	points  map[string]*qdrantclient.PointStruct
	upserts int
}

func (f *fakePoints) Upsert(ctx context.Context, in *qdrantclient.UpsertPoints, opts ...grpc.CallOption) (*qdrantclient.PointsOperationResponse, error) {
	f.upserts++
	for _, p := range in.GetPoints() {
		f.points[p.GetId().GetUuid()] = p
	}
	return &qdrantclient.PointsOperationResponse{}, nil
}

func (f *fakePoints) Search(ctx context.Context, in *qdrantclient.SearchPoints, opts ...grpc.CallOption) (*qdrantclient.SearchResponse, error) {
	scored := make([]*qdrantclient.ScoredPoint, 0, len(f.points))
	for _, p := range f.points {
		vec := p.GetVectors().GetVector().GetData()
		scored = append(scored, &qdrantclient.ScoredPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Score:   float32(cosineSimilarity(in.GetVector(), vec)),
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if uint64(len(scored)) > in.GetLimit() {
		scored = scored[:in.GetLimit()]
	}
	return &qdrantclient.SearchResponse{Result: scored}, nil
}

func (f *fakePoints) Count(ctx context.Context, in *qdrantclient.CountPoints, opts ...grpc.CallOption) (*qdrantclient.CountResponse, error) {
	return &qdrantclient.CountResponse{Result: &qdrantclient.CountResult{Count: uint64(len(f.points))}}, nil
}

func newFakeQdrant() (*fakeCollections, *fakePoints) {
	points := &fakePoints{points: map[string]*qdrantclient.PointStruct{}}
	return &fakeCollections{sizes: map[string]uint64{}, points: points}, points
}

func TestQdrantStore_CreatesCollection(t *testing.T) {
	ctx := context.Background()
	cols, pts := newFakeQdrant()

	store, err := newQdrantStore(ctx, cols, pts, QdrantConfig{Dimension: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, cols.creates)
	assert.Equal(t, uint64(3), cols.sizes[DefaultQdrantCollection])
	assert.Equal(t, BackendQdrant, store.Backend())
	assert.NoError(t, store.Close())

	// existing collection is reused
	_, err = newQdrantStore(ctx, cols, pts, QdrantConfig{Dimension: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, cols.creates)

	_, err = newQdrantStore(ctx, cols, pts, QdrantConfig{Dimension: 5})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestQdrantStore_UpsertQueryDelete(t *testing.T) {
	ctx := context.Background()
	cols, pts := newFakeQdrant()
	store, err := newQdrantStore(ctx, cols, pts, QdrantConfig{Collection: "pages", Dimension: 2})
	require.NoError(t, err)

	source := "https://example.com/"
	entries := []types.IndexEntry{
		testEntry(identity.Assign(source, 0), 0, "east", []float32{1, 0}),
		testEntry(identity.Assign(source, 1), 1, "north", []float32{0, 1}),
	}
	require.NoError(t, store.Upsert(ctx, entries))
	require.NoError(t, store.Upsert(ctx, entries))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "re-upserting the same ids does not duplicate points")

	matches, err := store.Query(ctx, []float32{1, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, entries[0].ID, matches[0].ID)
	assert.Equal(t, entries[0].Metadata, matches[0].Metadata)

	_, err = store.Query(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = store.Upsert(ctx, []types.IndexEntry{testEntry("x", 0, "bad", []float32{1, 2, 3})})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 2, pts.upserts)

	require.NoError(t, store.DeleteAll(ctx))
	assert.Equal(t, 1, cols.deletes)
	assert.Equal(t, uint64(2), cols.sizes["pages"], "collection recreated")

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEntryFromPayload_Missing(t *testing.T) {
	id, meta := entryFromPayload(map[string]*qdrantclient.Value{})
	assert.Empty(t, id)
	assert.Empty(t, meta.Text)
	assert.Zero(t, meta.ChunkIndex)
}
