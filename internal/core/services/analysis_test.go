package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/nlp"
	"github.com/custodia-labs/corpora-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
)

func newAnalysisService(t *testing.T, docs []fixtureDoc) (*AnalysisService, *memory.ArtifactStore, domain.Corpus) {
	t.Helper()
	layout, corpus := newFixtureCorpus(t, docs)
	store := memory.NewArtifactStore()
	lexicon := nlp.NewTableLexicon()
	svc := NewAnalysisService(
		layout,
		store,
		nlp.NewSplitter(),
		nlp.NewValenceScorer(),
		nlp.NewCapitalisedExtractor(lexicon),
		lexicon,
		nlp.NewTFIDFScorer(),
		memory.NewRecorderSink(),
	)
	return svc, store, corpus
}

func TestTopWordsCountsAndLimit(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "alpha alpha beta"},
		{ID: 2, Text: "beta gamma"},
	})

	top, err := svc.TopWords(context.Background(), fixtureSession(), driving.TopOptions{N: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"word", "count"}, top.Columns)
	require.Equal(t, 2, top.Len())
	// alpha and beta tie at 2; ties break lexicographically
	assert.Equal(t, "alpha", top.Get(0, "word"))
	assert.Equal(t, "2", top.Get(0, "count"))
	assert.Equal(t, "beta", top.Get(1, "word"))
}

func TestTopWordsServedFromCache(t *testing.T) {
	svc, store, corpus := newAnalysisService(t, []fixtureDoc{{ID: 1, Text: "alpha beta"}})
	ctx := context.Background()

	first, err := svc.TopWords(ctx, fixtureSession(), driving.TopOptions{N: 5})
	require.NoError(t, err)
	second, err := svc.TopWords(ctx, fixtureSession(), driving.TopOptions{N: 5})
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 1, store.WriteCount(corpus, domain.ArtifactTopWords))

	// force bypasses the cached result
	_, err = svc.TopWords(ctx, fixtureSession(), driving.TopOptions{
		RunOptions: driving.RunOptions{Force: true}, N: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.WriteCount(corpus, domain.ArtifactTopWords))
}

func TestTopWordsGroupedTagsAndConcatenates(t *testing.T) {
	svc, store, corpus := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "alpha alpha beta", Meta: map[string]string{"country": "france"}},
		{ID: 2, Text: "beta gamma", Meta: map[string]string{"country": "germany"}},
	})
	ctx := context.Background()

	top, err := svc.TopWords(ctx, fixtureSession(), driving.TopOptions{
		RunOptions: driving.RunOptions{GroupBy: "country"}, N: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "word", "count"}, top.Columns)
	require.Equal(t, 4, top.Len())
	assert.Equal(t, []string{"france", "alpha", "2"}, top.Rows[0])
	assert.Equal(t, []string{"france", "beta", "1"}, top.Rows[1])
	assert.Equal(t, []string{"germany", "beta", "1"}, top.Rows[2])
	assert.Equal(t, []string{"germany", "gamma", "1"}, top.Rows[3])

	// only the concatenation is cached
	assert.Equal(t, 1, store.WriteCount(corpus, domain.ArtifactTopWords))
}

func TestTopWordsRejectsUnknownGroupColumn(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{{ID: 1, Text: "alpha"}})

	_, err := svc.TopWords(context.Background(), fixtureSession(), driving.TopOptions{
		RunOptions: driving.RunOptions{GroupBy: "planet"}, N: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTopEntitiesMultiWordRuns(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "Alice Wright met Bob in Paris. Alice Wright smiled."},
	})

	top, err := svc.TopEntities(context.Background(), fixtureSession(), driving.TopOptions{N: 1})
	require.NoError(t, err)

	require.Equal(t, 1, top.Len())
	assert.Equal(t, "Alice Wright", top.Get(0, "entity"))
	assert.Equal(t, "2", top.Get(0, "count"))
}

func TestSentimentAggregates(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "The war was a disaster. The treaty brought peace."},
		{ID: 2, Text: "Nothing notable happened."},
	})

	table, err := svc.Sentiment(context.Background(), fixtureSession(), driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"text_id",
		"avg_sentiment_w_neutral", "avg_sentiment_wo_neutral", "neutral_proportion"}, table.Columns)
	require.Equal(t, 2, table.Len())

	// doc 1: sentences score -3.0 and 2.5, none neutral
	assert.Equal(t, "-0.2500", table.Get(0, "avg_sentiment_w_neutral"))
	assert.Equal(t, "-0.2500", table.Get(0, "avg_sentiment_wo_neutral"))
	assert.Equal(t, "0.0000", table.Get(0, "neutral_proportion"))

	// doc 2: a single neutral sentence
	assert.Equal(t, "0.0000", table.Get(1, "avg_sentiment_w_neutral"))
	assert.Equal(t, "1.0000", table.Get(1, "neutral_proportion"))
}

func TestSentimentReportByTextID(t *testing.T) {
	svc, store, corpus := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "The war was a disaster. The treaty brought peace."},
	})
	ctx := context.Background()

	report, err := svc.SentimentReport(ctx, fixtureSession(), "1")
	require.NoError(t, err)

	assert.Equal(t, []string{"sentence", "sentiment"}, report.Columns)
	require.Equal(t, 2, report.Len())
	assert.Equal(t, "-3.0000", report.Get(0, "sentiment"))
	assert.Equal(t, "2.5000", report.Get(1, "sentiment"))

	assert.True(t, store.Exists(ctx, corpus, domain.ArtifactSentimentReport))
}

func TestSentimentReportUnknownIDAndRawText(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{{ID: 1, Text: "some text"}})
	ctx := context.Background()

	_, err := svc.SentimentReport(ctx, fixtureSession(), "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// input that does not parse as an id is scored directly
	report, err := svc.SentimentReport(ctx, fixtureSession(), "pure joy")
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, "2.8000", report.Get(0, "sentiment"))
}

func TestSummaryStats(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "Aaa bb aaa.\fNew page."},
	})

	stats, err := svc.SummaryStats(context.Background(), fixtureSession(), driving.RunOptions{})
	require.NoError(t, err)

	require.Equal(t, 1, stats.Len())
	assert.Equal(t, "5", stats.Get(0, "n_words"))
	assert.Equal(t, "4", stats.Get(0, "n_unique_words"))
	assert.Equal(t, "2", stats.Get(0, "n_sentences"))
	// form feeds delimit pages
	assert.Equal(t, "2", stats.Get(0, "n_pages"))
	assert.Equal(t, "0", stats.Get(0, "num_chars_numeric"))
	assert.Equal(t, "15", stats.Get(0, "num_chars_alpha"))
	assert.Equal(t, "0.0000", stats.Get(0, "numeric_proportion"))
}

func TestSimilarityMatrixLabelled(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "apple banana", Meta: map[string]string{"country": "france"}},
		{ID: 2, Text: "carrot date", Meta: map[string]string{"country": "germany"}},
	})

	matrix, err := svc.Similarity(context.Background(), fixtureSession(), "country", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "france", "germany"}, matrix.Columns)
	require.Equal(t, 2, matrix.Len())
	// identical documents score 1, disjoint vocabularies 0
	assert.Equal(t, "1.000", matrix.Get(0, "france"))
	assert.Equal(t, "0.000", matrix.Get(0, "germany"))
	assert.Equal(t, "0.000", matrix.Get(1, "france"))
	assert.Equal(t, "1.000", matrix.Get(1, "germany"))
}

func TestSimilarityDefaultsToTextIDLabels(t *testing.T) {
	svc, _, _ := newAnalysisService(t, []fixtureDoc{
		{ID: 1, Text: "apple banana"},
		{ID: 2, Text: "apple banana"},
	})

	matrix, err := svc.Similarity(context.Background(), fixtureSession(), "", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"text_id", "1", "2"}, matrix.Columns)
	// identical texts are maximally similar in both directions
	assert.Equal(t, "1.000", matrix.Get(0, "2"))
	assert.Equal(t, "1.000", matrix.Get(1, "1"))
}
