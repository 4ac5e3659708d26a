package storage

import (
	"context"
	"fmt"
	"sort"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dshills/pagecontext-mcp/internal/identity"
	"github.com/dshills/pagecontext-mcp/pkg/types"
)

// Qdrant defaults
const (
	DefaultQdrantAddr       = "localhost:6334"
	DefaultQdrantCollection = "pagecontext"
)

// Payload keys
const (
	payloadEntryID     = "entry_id"
	payloadText        = "text"
	payloadChunkIndex  = "chunk_index"
	payloadSourceID    = "source_id"
	payloadTokenCount  = "token_count"
	payloadPath        = "path"
	payloadTagName     = "tag_name"
	payloadTagID       = "tag_id"
	payloadTagClass    = "tag_class"
	payloadHTMLSnippet = "html_snippet"
	payloadTitle       = "title"
)

// QdrantConfig configures a QdrantStore
type QdrantConfig struct {
	Addr       string // gRPC host:port
	Collection string
	Dimension  int
}

// QdrantStore implements VectorStore on a Qdrant collection over gRPC.
// Point ids are UUIDs derived from entry ids; the entry id itself is kept
// in the payload.
type QdrantStore struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	collection  string
	dimension   int
}

// NewQdrantStore connects to Qdrant and ensures the collection exists with
// the configured dimension and cosine distance.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultQdrantAddr
	}

	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant %s: %v", ErrStoreUnavailable, cfg.Addr, err)
	}

	s, err := newQdrantStore(ctx, qdrantclient.NewCollectionsClient(conn), qdrantclient.NewPointsClient(conn), cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

// newQdrantStore wires the store to existing clients
func newQdrantStore(ctx context.Context, collections qdrantclient.CollectionsClient, points qdrantclient.PointsClient, cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, cfg.Dimension)
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultQdrantCollection
	}

	s := &QdrantStore{
		collections: collections,
		points:      points,
		collection:  cfg.Collection,
		dimension:   cfg.Dimension,
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	resp, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("%w: list collections: %v", ErrStoreUnavailable, err)
	}

	for _, col := range resp.GetCollections() {
		if col.GetName() == s.collection {
			return s.verifyDimension(ctx)
		}
	}
	return s.createCollection(ctx)
}

func (s *QdrantStore) createCollection(ctx context.Context) error {
	_, err := s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(s.dimension),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection %s: %v", ErrStoreWrite, s.collection, err)
	}
	return nil
}

func (s *QdrantStore) verifyDimension(ctx context.Context) error {
	info, err := s.collections.Get(ctx, &qdrantclient.GetCollectionInfoRequest{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("%w: collection info: %v", ErrStoreUnavailable, err)
	}
	size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if int(size) != s.dimension {
		return fmt.Errorf("%w: collection %s has %d, configured %d", ErrDimensionMismatch, s.collection, size, s.dimension)
	}
	return nil
}

// Upsert implements VectorStore
func (s *QdrantStore) Upsert(ctx context.Context, entries []types.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateEntries(entries, s.dimension); err != nil {
		return err
	}

	points := make([]*qdrantclient.PointStruct, len(entries))
	for i := range entries {
		points[i] = pointFromEntry(&entries[i])
	}

	wait := true
	_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", ErrStoreWrite, len(points), err)
	}
	return nil
}

// Query implements VectorStore
func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) ([]types.Match, error) {
	if err := checkQueryVector(vector, s.dimension); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []types.Match{}, nil
	}

	resp, err := s.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQuery, err)
	}

	matches := make([]types.Match, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		id, meta := entryFromPayload(point.GetPayload())
		matches = append(matches, types.Match{
			ID:       id,
			Score:    float64(point.GetScore()),
			Metadata: meta,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// DeleteAll drops and recreates the collection
func (s *QdrantStore) DeleteAll(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("%w: delete collection %s: %v", ErrStoreWrite, s.collection, err)
	}
	return s.createCollection(ctx)
}

// Count implements VectorStore
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStoreQuery, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Dimension implements VectorStore
func (s *QdrantStore) Dimension() int {
	return s.dimension
}

// Backend implements VectorStore
func (s *QdrantStore) Backend() string {
	return BackendQdrant
}

// Close closes the gRPC connection
func (s *QdrantStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func pointFromEntry(e *types.IndexEntry) *qdrantclient.PointStruct {
	return &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: identity.PointUUID(e.ID)},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: e.Vector},
			},
		},
		Payload: payloadFromEntry(e),
	}
}

func payloadFromEntry(e *types.IndexEntry) map[string]*qdrantclient.Value {
	m := &e.Metadata
	return map[string]*qdrantclient.Value{
		payloadEntryID:     stringValue(e.ID),
		payloadText:        stringValue(m.Text),
		payloadChunkIndex:  intValue(m.ChunkIndex),
		payloadSourceID:    stringValue(m.SourceID),
		payloadTokenCount:  intValue(m.TokenCount),
		payloadPath:        stringValue(m.Path),
		payloadTagName:     stringValue(m.TagName),
		payloadTagID:       stringValue(m.TagID),
		payloadTagClass:    stringValue(m.TagClass),
		payloadHTMLSnippet: stringValue(m.HTMLSnippet),
		payloadTitle:       stringValue(m.Title),
	}
}

// entryFromPayload reads the entry id and metadata back. Missing keys
// decode to zero values, which the searcher treats as malformed.
func entryFromPayload(p map[string]*qdrantclient.Value) (string, types.EntryMetadata) {
	str := func(k string) string { return p[k].GetStringValue() }
	num := func(k string) int { return int(p[k].GetIntegerValue()) }

	return str(payloadEntryID), types.EntryMetadata{
		Text:        str(payloadText),
		ChunkIndex:  num(payloadChunkIndex),
		SourceID:    str(payloadSourceID),
		TokenCount:  num(payloadTokenCount),
		Path:        str(payloadPath),
		TagName:     str(payloadTagName),
		TagID:       str(payloadTagID),
		TagClass:    str(payloadTagClass),
		HTMLSnippet: str(payloadHTMLSnippet),
		Title:       str(payloadTitle),
	}
}

func stringValue(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func intValue(n int) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(n)}}
}
