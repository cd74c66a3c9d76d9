package cli

import (
	"bytes"
	"context"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		userFlag = ""
		corpusFlag = ""
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// setupTestServices wires mock services and returns a cleanup restoring the
// previous wiring.
func setupTestServices() func() {
	oldIngestion := ingestionService
	oldCorpus := corpusService
	oldSearch := searchService
	oldAnalysis := analysisService
	oldTransform := transformService
	oldConfig := configStore

	ingestionService = &mockIngestionService{}
	corpusService = &mockCorpusService{}
	searchService = &mockSearchService{}
	analysisService = &mockAnalysisService{}
	transformService = &mockTransformService{}
	configStore = nil

	return func() {
		ingestionService = oldIngestion
		corpusService = oldCorpus
		searchService = oldSearch
		analysisService = oldAnalysis
		transformService = oldTransform
		configStore = oldConfig
	}
}

type mockIngestionService struct {
	uploadPath string
	usable     bool
	set        bool
}

func (m *mockIngestionService) Ingest(_ context.Context, session domain.Session, uploadPath string) (*driving.IngestReport, error) {
	m.uploadPath = uploadPath
	usable := true
	if m.set {
		usable = m.usable
	}
	return &driving.IngestReport{Corpus: session.Scoped(), TextCount: 3, UsableText: usable}, nil
}

type mockCorpusService struct {
	deleted string
}

func (m *mockCorpusService) List(_ context.Context, owner string) ([]string, error) {
	return []string{"letters", "novels"}, nil
}

func (m *mockCorpusService) Metadata(_ context.Context, _ domain.Session) (*domain.Table, error) {
	t := domain.NewTable("text_id", "author")
	t.AppendRow("1", "woolf")
	return t, nil
}

func (m *mockCorpusService) Delete(_ context.Context, session domain.Session) error {
	m.deleted = session.Scoped().DirName()
	return nil
}

func (m *mockCorpusService) GCSweep(_ context.Context) (*driving.GCReport, error) {
	return &driving.GCReport{OrphansRemoved: 2, InvalidRemoved: 1}, nil
}

func (m *mockCorpusService) Valid(_ context.Context, _ domain.Session) bool {
	return true
}

type mockSearchService struct {
	params  domain.SearchParams
	tabCol  string
	metaCol string
	term    string
	groupBy string
}

func (m *mockSearchService) Run(_ context.Context, _ domain.Session, params domain.SearchParams) error {
	m.params = params
	return nil
}

func (m *mockSearchService) Workbook(_ context.Context, _ domain.Session, tabColumn, metadataColumn string) error {
	m.tabCol = tabColumn
	m.metaCol = metadataColumn
	return nil
}

func (m *mockSearchService) Individual(_ context.Context, _ domain.Session, term, groupBy string) (*domain.Table, error) {
	m.term = term
	m.groupBy = groupBy
	t := domain.NewTable("text_id", "count")
	t.AppendRow("1", "2")
	return t, nil
}

type mockAnalysisService struct {
	topOpts driving.TopOptions
	runOpts driving.RunOptions
	input   string
	label   string
}

func (m *mockAnalysisService) TopWords(_ context.Context, _ domain.Session, opts driving.TopOptions) (*domain.Table, error) {
	m.topOpts = opts
	t := domain.NewTable("word", "count")
	t.AppendRow("border", "7")
	return t, nil
}

func (m *mockAnalysisService) TopEntities(_ context.Context, _ domain.Session, opts driving.TopOptions) (*domain.Table, error) {
	m.topOpts = opts
	t := domain.NewTable("entity", "count")
	t.AppendRow("League of Nations", "4")
	return t, nil
}

func (m *mockAnalysisService) Sentiment(_ context.Context, _ domain.Session, opts driving.RunOptions) (*domain.Table, error) {
	m.runOpts = opts
	t := domain.NewTable("text_id", "avg_sentiment_w_neutral", "avg_sentiment_wo_neutral", "neutral_proportion")
	t.AppendRow("1", "0.5000", "1.0000", "0.5000")
	return t, nil
}

func (m *mockAnalysisService) SentimentReport(_ context.Context, _ domain.Session, input string) (*domain.Table, error) {
	m.input = input
	t := domain.NewTable("sentence", "sentiment")
	t.AppendRow("A fine day.", "0.8000")
	return t, nil
}

func (m *mockAnalysisService) SummaryStats(_ context.Context, _ domain.Session, opts driving.RunOptions) (*domain.Table, error) {
	m.runOpts = opts
	t := domain.NewTable("text_id", "n_words")
	t.AppendRow("1", "120")
	return t, nil
}

func (m *mockAnalysisService) Similarity(_ context.Context, _ domain.Session, labelColumn string, opts driving.RunOptions) (*domain.Table, error) {
	m.label = labelColumn
	m.runOpts = opts
	t := domain.NewTable("text_id", "1")
	t.AppendRow("1", "1.000")
	return t, nil
}

type mockTransformService struct {
	opts domain.TransformOptions
}

func (m *mockTransformService) Transform(_ context.Context, _ domain.Session, opts domain.TransformOptions) error {
	m.opts = opts
	return nil
}

// mockConfigStore is a map-backed config store for gate tests.
type mockConfigStore struct {
	values map[string]any
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}
