package indicator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/threatgraph/graph"
)

func testBuilder() *Builder {
	return NewBuilder(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestBuilder_Build(t *testing.T) {
	src := NewSliceSource(
		NewIndicator("apt-41", "actor", "APT41").
			WithConfidence(90).
			WithLabel("apt").
			WithRelation("evil.example", "operates"),
		NewIndicator("evil.example", "infrastructure", "evil.example").
			WithSource("passive-dns"),
		NewIndicator("deadbeef", "malware", "deadbeef").
			WithRelation("evil.example", "communicates_with"),
	)

	g, report, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Indicators)
	assert.Equal(t, 3, report.Nodes)
	assert.Equal(t, 2, report.Edges)
	assert.Zero(t, report.SkippedRelations)

	actor := g.Node("apt-41")
	require.NotNil(t, actor)
	assert.Equal(t, graph.NodeTypeActor, actor.Type)
	assert.Equal(t, 90.0, actor.Properties["confidence"])
	assert.True(t, actor.HasLabel("apt"))

	infra := g.Node("evil.example")
	require.NotNil(t, infra)
	assert.Equal(t, graph.NodeTypeInfrastructure, infra.Type)
	assert.Equal(t, "passive-dns", infra.Properties["feed"])

	edges := g.EdgesBetween("apt-41", "evil.example")
	require.Len(t, edges, 1)
	assert.Equal(t, "operates", edges[0].Type)
	assert.NotEmpty(t, edges[0].ID)
}

func TestBuilder_Build_UnknownTypeFallsBack(t *testing.T) {
	src := NewSliceSource(NewIndicator("x", "mystery", "x"))

	g, _, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	require.NotNil(t, g.Node("x"))
	assert.Equal(t, graph.NodeTypeIndicator, g.Node("x").Type)
}

func TestBuilder_Build_DuplicateUpserts(t *testing.T) {
	src := NewSliceSource(
		NewIndicator("d1", "indicator", "1.2.3.4").WithProperty("asn", 64500),
		NewIndicator("d1", "indicator", "1.2.3.4").
			WithProperty("country", "NL").
			WithLabel("sinkholed"),
	)

	g, report, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Upserts)
	assert.Equal(t, 1, report.Nodes)

	n := g.Node("d1")
	require.NotNil(t, n)
	assert.Equal(t, 64500, n.Properties["asn"])
	assert.Equal(t, "NL", n.Properties["country"])
	assert.True(t, n.HasLabel("sinkholed"))
}

func TestBuilder_Build_SkipsUnresolvableRelations(t *testing.T) {
	src := NewSliceSource(
		NewIndicator("a", "actor", "A").WithRelation("ghost", "knows"),
	)

	g, report, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedRelations)
	assert.Zero(t, g.EdgeCount())
}

func TestBuilder_Build_GeneratesIDs(t *testing.T) {
	src := NewSliceSource(&Indicator{Type: "indicator", Value: "abc123"})

	g, report, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Nodes)
	require.Len(t, g.Nodes(), 1)
	assert.NotEmpty(t, g.Nodes()[0].ID)
}

func TestBuilder_Build_CountsInvalid(t *testing.T) {
	src := NewSliceSource(&Indicator{})

	_, report, err := testBuilder().Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Invalid)
	assert.Zero(t, report.Nodes)
}

func TestBuilder_Build_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := testBuilder().Build(ctx, NewSliceSource(NewIndicator("a", "actor", "A")))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSliceSource_Drains(t *testing.T) {
	src := NewSliceSource(NewIndicator("a", "actor", "A"))

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, ErrSourceDrained)
	assert.NoError(t, src.Close())
}
