package receipts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// SearchDocument is the searchable projection of a stored receipt.
type SearchDocument struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
	Date     string `json:"date"`
	Items    string `json:"items"`    // Item names joined for full-text search
	RawText  string `json:"raw_text"` // Original OCR text
	Source   string `json:"source"`
}

// SearchResult is a search hit with its relevance score.
type SearchResult struct {
	Document SearchDocument
	Score    float64
	ID       uuid.UUID
}

// SearchIndex provides full-text search over stored receipts using Bleve.
// It supports fuzzy matching and relevance scoring.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
	path    string // Path to index storage (empty for in-memory)
}

// NewSearchIndex creates a new search index.
// If path is empty, creates an in-memory index.
// If path is provided, creates/opens a persistent index.
func NewSearchIndex(path string) (*SearchIndex, error) {
	si := &SearchIndex{path: path}

	var index bleve.Index
	var err error

	indexMapping := buildIndexMapping()

	if path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
			}
			index, err = bleve.New(path, indexMapping)
		} else {
			index, err = bleve.Open(path)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	si.index = index
	return si, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("merchant", textFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("items", textFieldMapping)
	docMapping.AddFieldMappingsAt("raw_text", textFieldMapping)
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// documentFor projects a stored receipt into its searchable form.
func documentFor(sr *StoredReceipt) SearchDocument {
	names := make([]string, 0, len(sr.Receipt.Items))
	for _, item := range sr.Receipt.Items {
		names = append(names, item.Name)
	}
	return SearchDocument{
		ID:       sr.ID.String(),
		Merchant: sr.Receipt.Merchant,
		Date:     sr.Receipt.Date,
		Items:    strings.Join(names, " "),
		RawText:  sr.RawText,
		Source:   string(sr.Source),
	}
}

// IndexReceipt adds or updates a receipt in the index.
func (si *SearchIndex) IndexReceipt(sr *StoredReceipt) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	doc := documentFor(sr)
	if err := si.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to index receipt %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteReceipt removes a receipt from the index.
func (si *SearchIndex) DeleteReceipt(id uuid.UUID) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	return si.index.Delete(id.String())
}

// Search performs a full-text search across merchants, item names and
// raw OCR text.
func (si *SearchIndex) Search(query string, limit int) ([]SearchResult, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1) // Allow 1 edit distance for typo tolerance

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return si.convertResults(searchResults)
}

// SearchWithPrefix performs a prefix search (autocomplete style).
func (si *SearchIndex) SearchWithPrefix(prefix string, limit int) ([]SearchResult, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(prefix))

	searchRequest := bleve.NewSearchRequest(prefixQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("prefix search failed: %w", err)
	}

	return si.convertResults(searchResults)
}

func (si *SearchIndex) convertResults(searchResults *bleve.SearchResult) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(searchResults.Hits))

	for _, hit := range searchResults.Hits {
		doc := SearchDocument{
			ID: hit.ID,
		}

		if merchant, ok := hit.Fields["merchant"].(string); ok {
			doc.Merchant = merchant
		}
		if date, ok := hit.Fields["date"].(string); ok {
			doc.Date = date
		}
		if items, ok := hit.Fields["items"].(string); ok {
			doc.Items = items
		}
		if rawText, ok := hit.Fields["raw_text"].(string); ok {
			doc.RawText = rawText
		}
		if source, ok := hit.Fields["source"].(string); ok {
			doc.Source = source
		}

		result := SearchResult{
			Document: doc,
			Score:    hit.Score,
		}
		if id, err := uuid.Parse(hit.ID); err == nil {
			result.ID = id
		}

		results = append(results, result)
	}

	return results, nil
}

// DocumentCount returns the number of receipts in the index.
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	return si.index.DocCount()
}

// Close closes the index.
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
