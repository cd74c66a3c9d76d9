package domain

// ArtifactKind names a cached computation result. The kind doubles as the
// file name inside the corpus's csv_outputs directory; presence of that file
// is the sole cache-hit signal.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactTopWords          ArtifactKind = "top_words.csv"
	ArtifactTopEntities       ArtifactKind = "top_entities.csv"
	ArtifactSentiments        ArtifactKind = "transformed_sentiments.csv"
	ArtifactSentimentReport   ArtifactKind = "sentiment_report.csv"
	ArtifactSummaryStats      ArtifactKind = "transformed_summary_stats.csv"
	ArtifactSimilarity        ArtifactKind = "text_similarity.csv"
	ArtifactOccurrences       ArtifactKind = "search_terms_all_occurrences.csv"
	ArtifactCoOccurrences     ArtifactKind = "search_terms_all_co_occurrences.csv"
	ArtifactSecondLevelCounts ArtifactKind = "search_terms_all_second_level_counts.csv"
	ArtifactIndividualSearch  ArtifactKind = "individual_search_results.csv"
	ArtifactWorkbook          ArtifactKind = "excel_output.xlsx"
)

// ArtifactCountsBy returns the per-grouping-column search count artifact.
func ArtifactCountsBy(column string) ArtifactKind {
	return ArtifactKind("search_terms_all_counts_by_" + column + ".csv")
}

// Filename returns the artifact's file name.
func (k ArtifactKind) Filename() string {
	return string(k)
}

// AnalysisArtifacts lists every analysis result invalidated when the
// corpus text is re-transformed.
func AnalysisArtifacts(searchColumns []string) []ArtifactKind {
	kinds := []ArtifactKind{
		ArtifactTopWords,
		ArtifactTopEntities,
		ArtifactSentiments,
		ArtifactSentimentReport,
		ArtifactSummaryStats,
		ArtifactSimilarity,
		ArtifactOccurrences,
		ArtifactCoOccurrences,
		ArtifactSecondLevelCounts,
		ArtifactIndividualSearch,
		ArtifactWorkbook,
	}
	for _, col := range searchColumns {
		kinds = append(kinds, ArtifactCountsBy(col))
	}
	return kinds
}
