package ledger

import "sort"

// =============================================================================
// DOCUMENT GROUPING
// =============================================================================

// Document is the set of rows sharing one document-number value.
type Document struct {
	// Number is the value of the grouping column for this document.
	Number string

	// Rows are the document's lines, ordered by original Index.
	Rows []*Row
}

// Anchors returns the rows of the document booked on the given account.
func (d Document) Anchors(accountColumn, account string) []*Row {
	var out []*Row
	for _, r := range d.Rows {
		if r.Get(accountColumn) == account {
			out = append(out, r)
		}
	}
	return out
}

// Group partitions rows into documents by the value of column.
//
// GROUPING LOGIC:
//   Documents are returned in order of first appearance of their number in
//   the input, not sorted. Inside a document, rows are ordered by Index, so
//   an input that interleaves documents still yields stable documents.
func Group(rows []*Row, column string) []Document {
	groups := make(map[string][]*Row)
	groupOrder := []string{} // Maintain order of first occurrence

	for _, row := range rows {
		key := row.Get(column)
		if _, exists := groups[key]; !exists {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], row)
	}

	docs := make([]Document, len(groupOrder))
	for i, key := range groupOrder {
		members := groups[key]
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Index < members[b].Index
		})
		docs[i] = Document{Number: key, Rows: members}
	}

	return docs
}
