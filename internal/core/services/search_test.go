package services

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpora-cli/internal/core/domain"
)

func searchFixture(t *testing.T) (domain.Layout, domain.Corpus, *memory.ArtifactStore, *SearchService) {
	t.Helper()
	layout, corpus := newFixtureCorpus(t, []fixtureDoc{
		{ID: 1, Text: "The border was closed. Troops moved to the border at dawn.", Meta: map[string]string{"country": "france"}},
		{ID: 2, Text: "Trade across the border resumed when the treaty was signed.", Meta: map[string]string{"country": "germany"}},
		{ID: 3, Text: "Nothing relevant here.", Meta: map[string]string{"country": "france"}},
	})

	spec := domain.NewTable("topic", "term")
	spec.AppendRow("security", "border")
	spec.AppendRow("diplomacy", "treaty")
	writeSpec(t, layout, corpus, domain.SpecSearchTerms, spec)

	store := memory.NewArtifactStore()
	svc := NewSearchService(layout, store, &stubWorkbookWriter{}, memory.NewRecorderSink())
	return layout, corpus, store, svc
}

func validParams() domain.SearchParams {
	return domain.SearchParams{CharacterBuffer: 20, CoOccurrenceLimit: 3}
}

func TestRunValidatesParams(t *testing.T) {
	_, _, _, svc := searchFixture(t)
	ctx := context.Background()

	err := svc.Run(ctx, fixtureSession(), domain.SearchParams{CharacterBuffer: 2, CoOccurrenceLimit: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.Run(ctx, fixtureSession(), domain.SearchParams{CharacterBuffer: 20, CoOccurrenceLimit: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunRequiresSpecFile(t *testing.T) {
	layout, _ := newFixtureCorpus(t, []fixtureDoc{{ID: 1, Text: "text"}})
	svc := NewSearchService(layout, memory.NewArtifactStore(), &stubWorkbookWriter{}, nil)

	err := svc.Run(context.Background(), fixtureSession(), validParams())
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
}

func TestRunWritesOccurrences(t *testing.T) {
	_, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))

	data, err := store.Read(ctx, corpus, domain.ArtifactOccurrences)
	require.NoError(t, err)
	occ, err := parseTable(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"text_id", "topic", "term", "context"}, occ.Columns)
	// "border" twice in doc 1, once in doc 2; "treaty" once in doc 2
	assert.Equal(t, 4, occ.Len())

	borders := occ.Select(func(i int) bool { return occ.Get(i, "term") == "border" })
	assert.Equal(t, 3, borders.Len())
}

func TestRunCountsPerGroupingColumn(t *testing.T) {
	_, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))

	data, err := store.Read(ctx, corpus, domain.ArtifactCountsBy("topic"))
	require.NoError(t, err)
	counts, err := parseTable(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"topic", "term", "count"}, counts.Columns)
	require.Equal(t, 2, counts.Len())
	assert.Equal(t, "3", counts.Get(0, "count"))
	assert.Equal(t, "1", counts.Get(1, "count"))
}

func TestRunAppliesExclusions(t *testing.T) {
	layout, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	// capture a real context, then exclude exactly that occurrence
	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))
	data, err := store.Read(ctx, corpus, domain.ArtifactOccurrences)
	require.NoError(t, err)
	occ, err := parseTable(data)
	require.NoError(t, err)
	before := occ.Len()

	exclude := domain.NewTable("term", "context")
	exclude.AppendRow(occ.Get(0, "term"), occ.Get(0, "context"))
	writeSpec(t, layout, corpus, domain.SpecExcludeOccurrences, exclude)

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))
	data, err = store.Read(ctx, corpus, domain.ArtifactOccurrences)
	require.NoError(t, err)
	occ, err = parseTable(data)
	require.NoError(t, err)
	assert.Equal(t, before-1, occ.Len())
}

func TestRunCoOccurrencesRespectLimit(t *testing.T) {
	_, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	params := validParams()
	params.CoOccurrenceLimit = 2
	require.NoError(t, svc.Run(ctx, fixtureSession(), params))

	data, err := store.Read(ctx, corpus, domain.ArtifactCoOccurrences)
	require.NoError(t, err)
	co, err := parseTable(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"topic", "term", "co_occurrence", "count"}, co.Columns)
	perRow := make(map[string]int)
	for i := 0; i < co.Len(); i++ {
		key := co.Get(i, "topic") + "/" + co.Get(i, "term")
		perRow[key]++
		// a term never co-occurs with itself
		assert.NotEqual(t, co.Get(i, "term"), co.Get(i, "co_occurrence"))
	}
	for key, n := range perRow {
		assert.LessOrEqual(t, n, 2, "row %s", key)
	}
}

func TestRunSecondLevelContainment(t *testing.T) {
	layout, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	spec2 := domain.NewTable("topic", "term", "second")
	spec2.AppendRow("security", "border", "closed|sealed")
	spec2.AppendRow("security", "border", "zeppelin")
	writeSpec(t, layout, corpus, domain.SpecSecondLevelSearchTerms, spec2)

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))

	data, err := store.Read(ctx, corpus, domain.ArtifactSecondLevelCounts)
	require.NoError(t, err)
	second, err := parseTable(data)
	require.NoError(t, err)

	require.Equal(t, 2, second.Len())

	// "closed" appears inside a border context; "zeppelin" never does
	closed, err := strconv.Atoi(second.Get(0, "count"))
	require.NoError(t, err)
	assert.Positive(t, closed)
	assert.Equal(t, "0", second.Get(1, "count"))

	// a second-level count can never exceed its group's occurrences
	assert.LessOrEqual(t, closed, 3)
}

func TestRunFailsOnBrokenSecondLevelSpec(t *testing.T) {
	layout, corpus, _, svc := searchFixture(t)

	// present but empty: not a spec table, and not the same as absent
	path := layout.SpecFile(corpus, domain.SpecSecondLevelSearchTerms)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	err := svc.Run(context.Background(), fixtureSession(), validParams())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunEmitsPhaseLines(t *testing.T) {
	layout, _, _, _ := searchFixture(t)

	sink := memory.NewRecorderSink()
	svc := NewSearchService(layout, memory.NewArtifactStore(), &stubWorkbookWriter{}, sink)
	require.NoError(t, svc.Run(context.Background(), fixtureSession(), validParams()))

	lines := sink.Recorded()
	assert.Contains(t, lines, "processing search terms for group 0/2")
	assert.Contains(t, lines, "co-occurrence search for group 2/2")
	assert.Positive(t, sink.Resets)
}

func TestWorkbookNeedsPriorRun(t *testing.T) {
	_, _, _, svc := searchFixture(t)

	err := svc.Workbook(context.Background(), fixtureSession(), "topic", "country")
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
}

func TestWorkbookBuildsCoverageSheets(t *testing.T) {
	layout, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	spec2 := domain.NewTable("topic", "term", "second")
	spec2.AppendRow("security", "border", "closed")
	spec2.AppendRow("security", "border", "resumed")
	writeSpec(t, layout, corpus, domain.SpecSecondLevelSearchTerms, spec2)

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))

	writer := &stubWorkbookWriter{}
	svc2 := NewSearchService(layout, store, writer, nil)
	require.NoError(t, svc2.Workbook(ctx, fixtureSession(), "topic", "country"))

	require.Len(t, writer.sheets, 1)
	sheet := writer.sheets[0]
	assert.Equal(t, "secur", sheet.Name)
	assert.Equal(t, []string{"second", "france", "germany"}, sheet.Table.Columns)
	require.Equal(t, 2, sheet.Table.Len())

	// "closed" covers doc 1 only: half of france (docs 1 and 3), none of germany
	assert.Equal(t, "0.500", sheet.Table.Get(0, "france"))
	assert.Equal(t, "0.000", sheet.Table.Get(0, "germany"))
	// "resumed" covers doc 2 only
	assert.Equal(t, "0.000", sheet.Table.Get(1, "france"))
	assert.Equal(t, "1.000", sheet.Table.Get(1, "germany"))
}

func TestWorkbookEmptyGroupErrors(t *testing.T) {
	layout, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	spec2 := domain.NewTable("topic", "term", "second")
	spec2.AppendRow("security", "border", "closed")
	writeSpec(t, layout, corpus, domain.SpecSecondLevelSearchTerms, spec2)

	require.NoError(t, svc.Run(ctx, fixtureSession(), validParams()))

	// a group value whose only row has an unparseable id holds no documents
	meta := domain.NewTable("text_id", "country")
	meta.AppendRow("1", "france")
	meta.AppendRow("2", "germany")
	meta.AppendRow("bad", "spain")
	require.NoError(t, writeTableFile(layout.CleanMetadata(corpus), meta))

	svc2 := NewSearchService(layout, store, &stubWorkbookWriter{}, nil)
	err := svc2.Workbook(ctx, fixtureSession(), "topic", "country")
	assert.ErrorIs(t, err, domain.ErrEmptyGroup)
}

func TestIndividualPerDocumentAndGrouped(t *testing.T) {
	_, corpus, store, svc := searchFixture(t)
	ctx := context.Background()

	perDoc, err := svc.Individual(ctx, fixtureSession(), "border", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"text_id", "count"}, perDoc.Columns)
	assert.Equal(t, "2", perDoc.Get(0, "count"))
	assert.Equal(t, "1", perDoc.Get(1, "count"))
	assert.Equal(t, "0", perDoc.Get(2, "count"))

	grouped, err := svc.Individual(ctx, fixtureSession(), "border", "country")
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "count"}, grouped.Columns)
	assert.Equal(t, "2", grouped.Get(0, "count")) // france: docs 1 and 3
	assert.Equal(t, "1", grouped.Get(1, "count")) // germany: doc 2

	assert.True(t, store.Exists(ctx, corpus, domain.ArtifactIndividualSearch))
}

func TestIndividualRejectsEmptyTerm(t *testing.T) {
	_, _, _, svc := searchFixture(t)

	_, err := svc.Individual(context.Background(), fixtureSession(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
