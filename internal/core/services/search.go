package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/corpora-cli/internal/core/domain"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs the hierarchical search-term engine. Terms come from
// caller-supplied spec files inside the corpus directory; every output is a
// cached artifact.
type SearchService struct {
	layout    domain.Layout
	artifacts driven.ArtifactStore
	workbook  driven.WorkbookWriter
	sink      driven.ProgressSink
}

// NewSearchService creates a search service.
func NewSearchService(
	layout domain.Layout,
	artifacts driven.ArtifactStore,
	workbook driven.WorkbookWriter,
	sink driven.ProgressSink,
) *SearchService {
	if sink == nil {
		sink = driven.NopSink{}
	}
	return &SearchService{layout: layout, artifacts: artifacts, workbook: workbook, sink: sink}
}

// Run executes the full engine: occurrence extraction, exclusion filtering,
// per-grouping-column counts, co-occurrence collection and, when a
// second-level spec exists, second-level counting. Run always recomputes.
func (s *SearchService) Run(ctx context.Context, session domain.Session, params domain.SearchParams) error {
	if params.CharacterBuffer < 3 {
		return fmt.Errorf("%w: character buffer must be at least 3", domain.ErrInvalidInput)
	}
	if params.CoOccurrenceLimit < 1 {
		return fmt.Errorf("%w: co-occurrence limit must be at least 1", domain.ErrInvalidInput)
	}

	corpus := session.Scoped()
	defer s.sink.Reset()

	spec, err := s.loadSpec(corpus, domain.SpecSearchTerms)
	if err != nil {
		return err
	}
	exclusions := s.loadExclusions(corpus)

	docs, err := loadTexts(s.layout, corpus, nil)
	if err != nil {
		return err
	}
	logger.Section("search " + corpus.DirName())
	logger.Debug("%d spec rows, %d documents, %d exclusion rules",
		spec.Table.Len(), len(docs), len(exclusions))

	occurrences, err := s.extract(ctx, spec, docs, params.CharacterBuffer, exclusions)
	if err != nil {
		return err
	}

	if err := s.writeOccurrences(ctx, corpus, spec, occurrences); err != nil {
		return err
	}
	if err := s.writeCounts(ctx, corpus, spec, occurrences); err != nil {
		return err
	}
	if err := s.writeCoOccurrences(ctx, corpus, spec, occurrences, params.CoOccurrenceLimit); err != nil {
		return err
	}

	// a missing second-level spec skips the step; a broken one is an error
	spec2, err := s.loadSpec(corpus, domain.SpecSecondLevelSearchTerms)
	switch {
	case err == nil:
		if err := s.writeSecondLevel(ctx, corpus, spec, spec2, occurrences); err != nil {
			return err
		}
	case !errors.Is(err, domain.ErrMissingArtifact):
		return err
	}
	return nil
}

// loadSpec reads a term spec file. A missing spec is a caller precondition.
func (s *SearchService) loadSpec(corpus domain.Corpus, name string) (domain.TermSpec, error) {
	t, err := readTableFile(s.layout.SpecFile(corpus, name))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.TermSpec{}, fmt.Errorf("%s: %w", name, domain.ErrMissingArtifact)
		}
		return domain.TermSpec{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return domain.TermSpec{Table: t}, nil
}

// loadExclusions reads the optional (term, context) exclusion rules.
func (s *SearchService) loadExclusions(corpus domain.Corpus) []domain.ExclusionRule {
	t, err := readTableFile(s.layout.SpecFile(corpus, domain.SpecExcludeOccurrences))
	if err != nil {
		return nil
	}
	var rules []domain.ExclusionRule
	for i := 0; i < t.Len(); i++ {
		rules = append(rules, domain.ExclusionRule{
			Term:    t.Get(i, "term"),
			Context: t.Get(i, "context"),
		})
	}
	return rules
}

// extract finds every whole-token occurrence of every spec row's terminal
// term, dropping exact (term, context) exclusions.
func (s *SearchService) extract(
	ctx context.Context,
	spec domain.TermSpec,
	docs []docText,
	buffer int,
	exclusions []domain.ExclusionRule,
) ([]domain.Occurrence, error) {
	spans := make([][]tokenSpan, len(docs))
	for i, doc := range docs {
		spans[i] = tokenSpans(doc.Text)
	}

	var occurrences []domain.Occurrence
	rows := spec.Table.Len()
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.sink.Emit(fmt.Sprintf("processing search terms for group %d/%d", r, rows))

		term := spec.Term(r)
		groups := append([]string(nil), spec.Table.Rows[r]...)

		for d, doc := range docs {
			for _, context := range findOccurrences(doc.Text, spans[d], term, buffer) {
				occ := domain.Occurrence{TextID: doc.ID, Groups: groups, Term: term, Context: context}
				if excluded(occ, exclusions) {
					continue
				}
				occurrences = append(occurrences, occ)
			}
		}
	}
	s.sink.Emit(fmt.Sprintf("processing search terms for group %d/%d", rows, rows))
	return occurrences, nil
}

func excluded(o domain.Occurrence, rules []domain.ExclusionRule) bool {
	for _, r := range rules {
		if r.Matches(o) {
			return true
		}
	}
	return false
}

// writeOccurrences persists the flat occurrence table.
func (s *SearchService) writeOccurrences(ctx context.Context, corpus domain.Corpus, spec domain.TermSpec, occurrences []domain.Occurrence) error {
	cols := append([]string{domain.ColTextID}, spec.Table.Columns...)
	t := domain.NewTable(append(cols, "context")...)
	for _, o := range occurrences {
		row := append([]string{strconv.Itoa(o.TextID)}, o.Groups...)
		t.AppendRow(append(row, o.Context)...)
	}
	return s.writeArtifact(ctx, corpus, domain.ArtifactOccurrences, t)
}

// writeCounts persists one count table per grouping column.
func (s *SearchService) writeCounts(ctx context.Context, corpus domain.Corpus, spec domain.TermSpec, occurrences []domain.Occurrence) error {
	for gi, col := range spec.GroupingColumns() {
		counts := make(map[string]int)
		var order []string
		for _, o := range occurrences {
			key := o.Groups[gi] + "\x00" + o.Term
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}

		t := domain.NewTable(col, spec.TerminalColumn(), "count")
		for _, key := range order {
			value, term, _ := cutNul(key)
			t.AppendRow(value, term, strconv.Itoa(counts[key]))
		}
		if err := s.writeArtifact(ctx, corpus, domain.ArtifactCountsBy(col), t); err != nil {
			return err
		}
	}
	return nil
}

func cutNul(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}

// writeCoOccurrences persists the top-n tokens co-occurring inside each
// spec row's contexts. The term's own tokens are not their own neighbours.
func (s *SearchService) writeCoOccurrences(ctx context.Context, corpus domain.Corpus, spec domain.TermSpec, occurrences []domain.Occurrence, limit int) error {
	t := domain.NewTable(append(append([]string(nil), spec.Table.Columns...), "co_occurrence", "count")...)

	rows := spec.Table.Len()
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sink.Emit(fmt.Sprintf("co-occurrence search for group %d/%d", r, rows))

		term := spec.Term(r)
		own := make(map[string]bool)
		for _, tok := range termTokens(term) {
			own[tok] = true
		}

		counts := make(map[string]int)
		for _, o := range occurrences {
			if !sameGroups(o.Groups, spec.Table.Rows[r]) {
				continue
			}
			for _, span := range tokenSpans(o.Context) {
				if !own[span.text] {
					counts[span.text]++
				}
			}
		}

		for _, kc := range topCounts(counts, limit) {
			row := append([]string(nil), spec.Table.Rows[r]...)
			t.AppendRow(append(row, kc.Key, strconv.Itoa(kc.Count))...)
		}
	}
	s.sink.Emit(fmt.Sprintf("co-occurrence search for group %d/%d", rows, rows))

	return s.writeArtifact(ctx, corpus, domain.ArtifactCoOccurrences, t)
}

// writeSecondLevel counts second-level terms strictly within the contexts
// captured for their base group. A second-level count can never exceed its
// group's occurrence count.
func (s *SearchService) writeSecondLevel(ctx context.Context, corpus domain.Corpus, spec, spec2 domain.TermSpec, occurrences []domain.Occurrence) error {
	base := len(spec.Table.Columns)
	if len(spec2.Table.Columns) != base+1 {
		return fmt.Errorf("%w: second-level spec must extend the search spec by one column",
			domain.ErrInvalidInput)
	}

	t := domain.NewTable(append(append([]string(nil), spec2.Table.Columns...), "count")...)

	rows := spec2.Table.Len()
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sink.Emit(fmt.Sprintf("second-level search for group %d/%d", r, rows))

		prefix := spec2.Table.Rows[r][:base]
		term := spec2.Term(r)

		count := 0
		for _, o := range occurrences {
			if sameGroups(o.Groups, prefix) && containsToken(o.Context, term) {
				count++
			}
		}

		row := append([]string(nil), spec2.Table.Rows[r]...)
		t.AppendRow(append(row, strconv.Itoa(count))...)
	}
	s.sink.Emit(fmt.Sprintf("second-level search for group %d/%d", rows, rows))

	return s.writeArtifact(ctx, corpus, domain.ArtifactSecondLevelCounts, t)
}

func sameGroups(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Workbook builds the grouped binary document-coverage workbook: one sheet
// per tab-partition value, one row per second-level term, one ratio column
// per metadata group.
func (s *SearchService) Workbook(ctx context.Context, session domain.Session, tabColumn, metadataColumn string) error {
	corpus := session.Scoped()

	occTable, err := s.readArtifactTable(ctx, corpus, domain.ArtifactOccurrences)
	if err != nil {
		return fmt.Errorf("workbook needs a completed search run: %w", err)
	}

	spec, err := s.loadSpec(corpus, domain.SpecSearchTerms)
	if err != nil {
		return err
	}
	spec2, err := s.loadSpec(corpus, domain.SpecSecondLevelSearchTerms)
	if err != nil {
		return err
	}
	if !spec2.Table.HasColumn(tabColumn) {
		return fmt.Errorf("%w: tab column %q not in second-level spec", domain.ErrInvalidInput, tabColumn)
	}

	meta, err := loadCleanMetadata(s.layout, corpus)
	if err != nil {
		return err
	}
	if !meta.HasColumn(metadataColumn) {
		return fmt.Errorf("%w: metadata column %q not found", domain.ErrInvalidInput, metadataColumn)
	}

	// metadata group -> document ids
	groupDocs := make(map[string]map[int]bool)
	groupValues := meta.DistinctValues(metadataColumn)
	for _, v := range groupValues {
		groupDocs[v] = make(map[int]bool)
	}
	for i := 0; i < meta.Len(); i++ {
		if id, err := strconv.Atoi(meta.Get(i, domain.ColTextID)); err == nil {
			groupDocs[meta.Get(i, metadataColumn)][id] = true
		}
	}
	for _, v := range groupValues {
		if len(groupDocs[v]) == 0 {
			return fmt.Errorf("group %q: %w", v, domain.ErrEmptyGroup)
		}
	}

	base := len(spec.Table.Columns)
	var sheets []driven.Sheet
	for _, tabValue := range spec2.Table.DistinctValues(tabColumn) {
		sheet := domain.NewTable(append([]string{spec2.TerminalColumn()}, groupValues...)...)

		for r := 0; r < spec2.Table.Len(); r++ {
			if spec2.Table.Get(r, tabColumn) != tabValue {
				continue
			}
			prefix := spec2.Table.Rows[r][:base]
			term := spec2.Term(r)

			covered := coveredDocs(occTable, spec, prefix, term)

			row := []string{term}
			for _, v := range groupValues {
				hits := 0
				for id := range groupDocs[v] {
					if covered[id] {
						hits++
					}
				}
				ratio := float64(hits) / float64(len(groupDocs[v]))
				row = append(row, strconv.FormatFloat(ratio, 'f', 3, 64))
			}
			sheet.AppendRow(row...)
		}
		sheets = append(sheets, driven.Sheet{Name: domain.SheetName(tabValue), Table: sheet})
	}

	path := s.artifacts.Path(corpus, domain.ArtifactWorkbook)
	if err := s.workbook.Write(path, sheets); err != nil {
		return err
	}
	logger.Info("workbook written to %s", path)
	return nil
}

// coveredDocs returns the documents with at least one occurrence of the
// base group whose context contains the second-level term.
func coveredDocs(occTable *domain.Table, spec domain.TermSpec, prefix []string, term string) map[int]bool {
	covered := make(map[int]bool)
	for i := 0; i < occTable.Len(); i++ {
		match := true
		for j, col := range spec.Table.Columns {
			if j >= len(prefix) {
				break
			}
			if occTable.Get(i, col) != prefix[j] {
				match = false
				break
			}
		}
		if !match || !containsToken(occTable.Get(i, "context"), term) {
			continue
		}
		if id, err := strconv.Atoi(occTable.Get(i, domain.ColTextID)); err == nil {
			covered[id] = true
		}
	}
	return covered
}

// Individual counts standalone occurrences of one term per document,
// optionally summed over a metadata column.
func (s *SearchService) Individual(ctx context.Context, session domain.Session, term, groupBy string) (*domain.Table, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", domain.ErrInvalidInput)
	}
	corpus := session.Scoped()

	docs, err := loadTexts(s.layout, corpus, nil)
	if err != nil {
		return nil, err
	}

	perDoc := make(map[int]int, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		perDoc[doc.ID] = countToken(doc.Text, term)
	}

	var result *domain.Table
	if groupBy == "" {
		result = domain.NewTable(domain.ColTextID, "count")
		for _, doc := range docs {
			result.AppendRow(strconv.Itoa(doc.ID), strconv.Itoa(perDoc[doc.ID]))
		}
	} else {
		meta, err := loadCleanMetadata(s.layout, corpus)
		if err != nil {
			return nil, err
		}
		if !meta.HasColumn(groupBy) {
			return nil, fmt.Errorf("%w: metadata column %q not found", domain.ErrInvalidInput, groupBy)
		}

		sums := make(map[string]int)
		order := meta.DistinctValues(groupBy)
		for i := 0; i < meta.Len(); i++ {
			if id, err := strconv.Atoi(meta.Get(i, domain.ColTextID)); err == nil {
				sums[meta.Get(i, groupBy)] += perDoc[id]
			}
		}

		result = domain.NewTable(groupBy, "count")
		for _, v := range order {
			result.AppendRow(v, strconv.Itoa(sums[v]))
		}
	}

	if err := s.writeArtifact(ctx, corpus, domain.ArtifactIndividualSearch, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SearchService) writeArtifact(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind, t *domain.Table) error {
	data, err := tableBytes(t)
	if err != nil {
		return err
	}
	return s.artifacts.Write(ctx, corpus, kind, data)
}

func (s *SearchService) readArtifactTable(ctx context.Context, corpus domain.Corpus, kind domain.ArtifactKind) (*domain.Table, error) {
	data, err := s.artifacts.Read(ctx, corpus, kind)
	if err != nil {
		return nil, err
	}
	return parseTable(data)
}
