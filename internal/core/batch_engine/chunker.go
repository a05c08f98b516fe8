package batch_engine

import (
	"strings"

	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/models"
)

// applyChunking regroups an ordered document sequence into size-bounded
// chunks per the selected strategy. Group boundaries prefer structural breaks
// (titles for by_title, pages for by_page); within a group the joined text is
// window-split so every chunk is at most max_chunk_size characters and
// consecutive chunks share chunk_overlap characters of trailing context.
func applyChunking(docs []models.Document, cfg *models.ProcessingConfig) []models.Document {
	if len(docs) == 0 {
		return docs
	}

	var groups [][]models.Document
	switch cfg.ChunkingStrategy {
	case models.ChunkByTitle:
		groups = groupByTitle(docs)
	case models.ChunkByPage:
		groups = groupByPage(docs)
	default:
		groups = [][]models.Document{docs}
	}

	var out []models.Document
	chunkIdx := 0
	for _, group := range groups {
		texts := make([]string, 0, len(group))
		for _, d := range group {
			texts = append(texts, d.PageContent)
		}
		joined := strings.Join(texts, "\n\n")

		for _, window := range splitWindows(joined, cfg.MaxChunkSize, cfg.ChunkOverlap) {
			meta := cloneMetadata(group[0].Metadata)
			meta["chunk_index"] = chunkIdx
			out = append(out, models.Document{PageContent: window, Metadata: meta})
			chunkIdx++
		}
	}
	return out
}

// groupByTitle starts a new group at every title element; the title itself
// leads the group it opens.
func groupByTitle(docs []models.Document) [][]models.Document {
	var groups [][]models.Document
	var cur []models.Document
	for _, d := range docs {
		if et, _ := d.Metadata["element_type"].(string); et == core.ElementTitle && len(cur) > 0 {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, d)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func groupByPage(docs []models.Document) [][]models.Document {
	var groups [][]models.Document
	var cur []models.Document
	curPage := -1
	for _, d := range docs {
		page, _ := d.Metadata["page_number"].(int)
		if page != curPage && len(cur) > 0 {
			groups = append(groups, cur)
			cur = nil
		}
		curPage = page
		cur = append(cur, d)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// splitWindows slices text into rune windows of at most max characters,
// stepping by max-overlap so each window repeats the previous window's tail.
func splitWindows(text string, max, overlap int) []string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return []string{text}
	}

	step := max - overlap
	if step <= 0 {
		step = max
	}

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + max
		if end >= len(runes) {
			windows = append(windows, string(runes[start:]))
			break
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}

func cloneMetadata(meta map[string]any) map[string]any {
	clone := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		clone[k] = v
	}
	return clone
}
