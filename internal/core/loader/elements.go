package loader

import (
	"strings"
	"unicode"

	"github.com/markdave123-py/uloader/internal/core"
)

// elementize splits extracted text into typed elements. Form feeds mark page
// boundaries (pdftotext convention); blank lines separate paragraphs within
// a page. Lines repeating at the top or bottom of several pages are tagged
// as headers/footers so downstream filtering can drop them.
func elementize(body string) []core.RawElement {
	pages := strings.Split(body, "\f")

	headers, footers := repeatedEdges(pages)

	var elems []core.RawElement
	for pi, page := range pages {
		pageNum := pi + 1
		if len(pages) == 1 {
			pageNum = 0 // unpaginated source
		}
		for _, para := range splitParagraphs(page) {
			et := classify(para)
			if headers[para] {
				et = core.ElementHeader
			} else if footers[para] {
				et = core.ElementFooter
			}
			elems = append(elems, core.RawElement{
				Text:        para,
				ElementType: et,
				Page:        pageNum,
			})
		}
	}
	return elems
}

// splitParagraphs groups consecutive non-blank lines into paragraphs,
// preserving order.
func splitParagraphs(page string) []string {
	var paras []string
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			paras = append(paras, strings.Join(buf, "\n"))
			buf = buf[:0]
		}
	}

	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return paras
}

// classify tags a paragraph as a title or narrative text. Short single-line
// paragraphs without terminal punctuation read as headings.
func classify(para string) string {
	if strings.Contains(para, "\n") || len(para) > 120 {
		return core.ElementNarrativeText
	}
	trimmed := strings.TrimSpace(para)
	if trimmed == "" {
		return core.ElementNarrativeText
	}
	last := rune(trimmed[len(trimmed)-1])
	if strings.ContainsRune(".!?;:,", last) {
		return core.ElementNarrativeText
	}
	first := []rune(trimmed)[0]
	if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return core.ElementNarrativeText
	}
	return core.ElementTitle
}

// repeatedEdges finds paragraphs that open or close more than one page; page
// headers and footers repeat that way while real content does not.
func repeatedEdges(pages []string) (headers, footers map[string]bool) {
	headers = map[string]bool{}
	footers = map[string]bool{}
	if len(pages) < 2 {
		return headers, footers
	}

	firstCount := map[string]int{}
	lastCount := map[string]int{}
	for _, page := range pages {
		paras := splitParagraphs(page)
		if len(paras) == 0 {
			continue
		}
		firstCount[paras[0]]++
		lastCount[paras[len(paras)-1]]++
	}
	for text, n := range firstCount {
		if n >= 2 {
			headers[text] = true
		}
	}
	for text, n := range lastCount {
		if n >= 2 {
			footers[text] = true
		}
	}
	return headers, footers
}
